package repository

import (
	"commons/internal/model"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MoveRepo interface {
	// Create records a move. ErrDuplicate means the player already moved in that round.
	Create(ctx context.Context, move *model.Move) error
	ListByRound(ctx context.Context, roundID string) ([]*model.Move, error)
	ListBySession(ctx context.Context, sessionID string) ([]*model.Move, error)
}

type moveRepo struct {
	collection *mongo.Collection
}

func NewMoveRepo(db *mongo.Database) MoveRepo {
	return &moveRepo{
		collection: db.Collection(movesCollection),
	}
}

func (r *moveRepo) Create(ctx context.Context, move *model.Move) error {
	if move.ID == "" {
		move.ID = primitive.NewObjectID().Hex()
	}
	if move.CreatedAt.IsZero() {
		move.CreatedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, move)
	if _, dup := duplicateIndex(err); dup {
		return ErrDuplicate
	}
	return err
}

func (r *moveRepo) ListByRound(ctx context.Context, roundID string) ([]*model.Move, error) {
	return r.find(ctx, bson.M{"roundId": roundID})
}

func (r *moveRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Move, error) {
	return r.find(ctx, bson.M{"sessionId": sessionID})
}

func (r *moveRepo) find(ctx context.Context, filter bson.M) ([]*model.Move, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	moves := []*model.Move{}
	if err = cursor.All(ctx, &moves); err != nil {
		return nil, err
	}
	return moves, nil
}
