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

type PlayerRepo interface {
	Create(ctx context.Context, profile *model.PlayerProfile) error
	ListByCode(ctx context.Context, code string) ([]*model.PlayerProfile, error)
}

type playerRepo struct {
	collection *mongo.Collection
}

func NewPlayerRepo(db *mongo.Database) PlayerRepo {
	return &playerRepo{
		collection: db.Collection(playersCollection),
	}
}

// Create inserts a roster candidate. It fails with ErrNicknameTaken or
// ErrAlreadyJoined when a unique index rejects the profile.
func (r *playerRepo) Create(ctx context.Context, profile *model.PlayerProfile) error {
	if profile.ID == "" {
		profile.ID = primitive.NewObjectID().Hex()
	}
	if profile.JoinedAt.IsZero() {
		profile.JoinedAt = time.Now().UTC()
	}

	_, err := r.collection.InsertOne(ctx, profile)
	if index, dup := duplicateIndex(err); dup {
		switch index {
		case indexCodePlayer:
			return ErrAlreadyJoined
		case indexCodeNickname:
			return ErrNicknameTaken
		}
		return ErrDuplicate
	}
	return err
}

func (r *playerRepo) ListByCode(ctx context.Context, code string) ([]*model.PlayerProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"code": code}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	players := []*model.PlayerProfile{}
	if err = cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}
