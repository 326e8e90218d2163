package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusmatch/config"
)

// Sentinel errors returned by all stores. Services translate these into
// user-facing API errors.
var (
	ErrNotFound  = errors.New("store: document not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// Collection names
const (
	colUsers         = "users"
	colCrushes       = "crushes"
	colProposes      = "proposes"
	colDislikes      = "dislikes"
	colMatches       = "matches"
	colAdmins        = "admins"
	colTempRegisters = "temp_registers"
)

// Connect opens the Mongo client and verifies connectivity.
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(cfg.MongoDB), nil
}

// EnsureIndexes creates the indexes the application relies on. Uniqueness at
// the storage layer is the real duplicate-prevention backstop; the
// application-level existence checks are an optimization on top of it.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	type spec struct {
		col  string
		idx  mongo.IndexModel
	}
	specs := []spec{
		{colUsers, mongo.IndexModel{Keys: bson.D{{Key: "public_id", Value: 1}}, Options: unique}},
		{colUsers, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique}},
		{colUsers, mongo.IndexModel{Keys: bson.D{{Key: "contact", Value: 1}}, Options: unique}},
		{colUsers, mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}}},
		{colCrushes, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}, {Key: "target", Value: 1}}, Options: unique}},
		{colCrushes, mongo.IndexModel{Keys: bson.D{{Key: "target", Value: 1}}}},
		{colDislikes, mongo.IndexModel{Keys: bson.D{{Key: "user", Value: 1}, {Key: "target", Value: 1}}, Options: unique}},
		{colProposes, mongo.IndexModel{Keys: bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}}, Options: unique}},
		{colProposes, mongo.IndexModel{Keys: bson.D{{Key: "to", Value: 1}, {Key: "status", Value: 1}}}},
		{colMatches, mongo.IndexModel{Keys: bson.D{{Key: "pair_key", Value: 1}}, Options: unique}},
		{colMatches, mongo.IndexModel{Keys: bson.D{{Key: "users", Value: 1}}}},
		{colAdmins, mongo.IndexModel{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique}},
		{colTempRegisters, mongo.IndexModel{Keys: bson.D{{Key: "registration_id", Value: 1}}, Options: unique}},
		// abandoned registration sessions expire after 24h
		{colTempRegisters, mongo.IndexModel{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32((24 * time.Hour).Seconds())),
		}},
	}

	for _, s := range specs {
		if _, err := db.Collection(s.col).Indexes().CreateOne(ctx, s.idx); err != nil {
			return fmt.Errorf("create index on %s: %w", s.col, err)
		}
	}
	return nil
}

// mapWriteErr converts driver errors to store sentinels.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func mapReadErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
