package repository

import (
	"commons/internal/model"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepo interface {
	// Create inserts a session. ErrDuplicate means another live session holds the code.
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	GetLiveByCode(ctx context.Context, code string) (*model.Session, error)
	// Activate moves a pending session to active
	Activate(ctx context.Context, id string) error
	// AdvanceRound moves the current round pointer only if it still points at from
	AdvanceRound(ctx context.Context, id, from, to string) (bool, error)
	// Finish records the end of a session; false if it was already finished
	Finish(ctx context.Context, id string, finish *model.SessionFinish) (bool, error)
	ListByOwner(ctx context.Context, playerID string) ([]*model.Session, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*model.Session, error)
}

type sessionRepo struct {
	collection *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{
		collection: db.Collection(sessionsCollection),
	}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.collection.InsertOne(ctx, session)
	if _, dup := duplicateIndex(err); dup {
		return ErrDuplicate
	}
	return err
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *sessionRepo) GetLiveByCode(ctx context.Context, code string) (*model.Session, error) {
	return r.findOne(ctx, bson.M{"activeCode": code})
}

func (r *sessionRepo) Activate(ctx context.Context, id string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.SessionPending},
		bson.M{"$set": bson.M{"status": model.SessionActive}},
	)
	return err
}

func (r *sessionRepo) AdvanceRound(ctx context.Context, id, from, to string) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "currentRoundId": from, "status": bson.M{"$ne": model.SessionFinished}},
		bson.M{"$set": bson.M{"currentRoundId": to}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *sessionRepo) Finish(ctx context.Context, id string, finish *model.SessionFinish) (bool, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$ne": model.SessionFinished}},
		bson.M{
			"$set": bson.M{
				"status":         model.SessionFinished,
				"outcome":        finish.Outcome,
				"lastRoundId":    finish.LastRoundID,
				"currentRoundId": finish.LastRoundID,
				"scores":         finish.Scores,
				"finishedAt":     finish.FinishedAt,
			},
			"$unset": bson.M{"activeCode": ""},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *sessionRepo) ListByOwner(ctx context.Context, playerID string) ([]*model.Session, error) {
	return r.find(ctx, bson.M{"ownerId": playerID})
}

func (r *sessionRepo) ListByPlayer(ctx context.Context, playerID string) ([]*model.Session, error) {
	return r.find(ctx, bson.M{"playerIds": playerID})
}

func (r *sessionRepo) findOne(ctx context.Context, filter bson.M) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) find(ctx context.Context, filter bson.M) ([]*model.Session, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []*model.Session{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
