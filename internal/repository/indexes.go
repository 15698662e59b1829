package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	codesCollection    = "game_codes"
	playersCollection  = "player_profiles"
	sessionsCollection = "game_sessions"
	roundsCollection   = "game_rounds"
	movesCollection    = "game_moves"

	indexCodeNickname = "uniq_code_nickname"
	indexCodePlayer   = "uniq_code_player"
)

type indexSpec struct {
	collection string
	name       string
	keys       bson.D
	unique     bool
	partial    bson.M
}

// The unique indexes below carry the invariants the services rely on:
// one anchor per code, one nickname and one profile per player per code,
// one live session per code, one move per round and player, and a
// non-forking previous-round chain.
var indexSpecs = []indexSpec{
	{collection: codesCollection, name: "uniq_code", keys: bson.D{{Key: "code", Value: 1}}, unique: true},
	{collection: playersCollection, name: indexCodeNickname, keys: bson.D{{Key: "code", Value: 1}, {Key: "nickname", Value: 1}}, unique: true},
	{collection: playersCollection, name: indexCodePlayer, keys: bson.D{{Key: "code", Value: 1}, {Key: "playerId", Value: 1}}, unique: true},
	{collection: playersCollection, name: "code_joined", keys: bson.D{{Key: "code", Value: 1}, {Key: "joinedAt", Value: 1}}},
	{
		collection: sessionsCollection,
		name:       "uniq_active_code",
		keys:       bson.D{{Key: "activeCode", Value: 1}},
		unique:     true,
		partial:    bson.M{"activeCode": bson.M{"$exists": true}},
	},
	{collection: sessionsCollection, name: "owner_created", keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	{collection: sessionsCollection, name: "players_created", keys: bson.D{{Key: "playerIds", Value: 1}, {Key: "createdAt", Value: -1}}},
	{collection: roundsCollection, name: "session_number", keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "number", Value: 1}}, unique: true},
	{
		collection: roundsCollection,
		name:       "uniq_previous_round",
		keys:       bson.D{{Key: "previousRoundId", Value: 1}},
		unique:     true,
		partial:    bson.M{"previousRoundId": bson.M{"$exists": true}},
	},
	{collection: movesCollection, name: "uniq_round_player", keys: bson.D{{Key: "roundId", Value: 1}, {Key: "playerId", Value: 1}}, unique: true},
	{collection: movesCollection, name: "session_moves", keys: bson.D{{Key: "sessionId", Value: 1}}},
}

// EnsureIndexes creates every index the repositories depend on
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, ix := range indexSpecs {
		opts := options.Index().SetName(ix.name).SetUnique(ix.unique)
		if ix.partial != nil {
			opts.SetPartialFilterExpression(ix.partial)
		}
		_, err := db.Collection(ix.collection).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: ix.keys, Options: opts})
		if err != nil {
			return fmt.Errorf("create index %s on %s: %w", ix.name, ix.collection, err)
		}
	}
	return nil
}
