package repository

import (
	"commons/internal/model"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RoundRepo interface {
	// Create inserts a round. ErrDuplicate means the ID, number or previous round is taken.
	Create(ctx context.Context, round *model.Round) error
	GetByID(ctx context.Context, id string) (*model.Round, error)
	// GetByPrevious returns the round chained after previousID, or nil
	GetByPrevious(ctx context.Context, previousID string) (*model.Round, error)
	// Close records the result on an open round; false if it was already closed
	Close(ctx context.Context, id string, result *model.RoundResult) (bool, error)
	ListBySession(ctx context.Context, sessionID string) ([]*model.Round, error)
}

type roundRepo struct {
	collection *mongo.Collection
}

func NewRoundRepo(db *mongo.Database) RoundRepo {
	return &roundRepo{
		collection: db.Collection(roundsCollection),
	}
}

func (r *roundRepo) Create(ctx context.Context, round *model.Round) error {
	if round.CreatedAt.IsZero() {
		round.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, round)
	if _, dup := duplicateIndex(err); dup {
		return ErrDuplicate
	}
	return err
}

func (r *roundRepo) GetByID(ctx context.Context, id string) (*model.Round, error) {
	var round model.Round
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&round)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &round, nil
}

func (r *roundRepo) GetByPrevious(ctx context.Context, previousID string) (*model.Round, error) {
	var round model.Round
	err := r.collection.FindOne(ctx, bson.M{"previousRoundId": previousID}).Decode(&round)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &round, nil
}

func (r *roundRepo) Close(ctx context.Context, id string, result *model.RoundResult) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.RoundStatusOpen},
		bson.M{"$set": bson.M{"status": model.RoundStatusClosed, "result": result}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *roundRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Round, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rounds := []*model.Round{}
	if err = cursor.All(ctx, &rounds); err != nil {
		return nil, err
	}
	return rounds, nil
}
