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

type CodeRepo interface {
	// Ensure returns the anchor for code, creating it on first use
	Ensure(ctx context.Context, code, createdBy string) (*model.GameCode, error)
	GetByCode(ctx context.Context, code string) (*model.GameCode, error)
}

type codeRepo struct {
	collection *mongo.Collection
}

func NewCodeRepo(db *mongo.Database) CodeRepo {
	return &codeRepo{
		collection: db.Collection(codesCollection),
	}
}

func (r *codeRepo) Ensure(ctx context.Context, code, createdBy string) (*model.GameCode, error) {
	update := bson.M{"$setOnInsert": bson.M{
		"_id":       primitive.NewObjectID().Hex(),
		"code":      code,
		"createdBy": createdBy,
		"createdAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var anchor model.GameCode
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"code": code}, update, opts).Decode(&anchor)
	if err != nil {
		// Two concurrent upserts can both miss; the loser trips the unique
		// index and the winner's document is the anchor.
		if _, dup := duplicateIndex(err); dup {
			return r.GetByCode(ctx, code)
		}
		return nil, err
	}
	return &anchor, nil
}

func (r *codeRepo) GetByCode(ctx context.Context, code string) (*model.GameCode, error) {
	var anchor model.GameCode
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&anchor)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &anchor, nil
}
