package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusmatch/models"
)

// DislikeStore provides data access for the dislikes ledger.
type DislikeStore struct {
	col *mongo.Collection
}

func NewDislikeStore(db *mongo.Database) *DislikeStore {
	return &DislikeStore{col: db.Collection(colDislikes)}
}

func (s *DislikeStore) Insert(ctx context.Context, d *models.Dislike) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	res, err := s.col.InsertOne(ctx, d)
	if err != nil {
		return mapWriteErr(err)
	}
	if oid, ok := res.InsertedID.(interface{ Hex() string }); ok {
		d.ID = oid.Hex()
	}
	return nil
}

func (s *DislikeStore) Find(ctx context.Context, user, target string) (*models.Dislike, error) {
	var d models.Dislike
	if err := s.col.FindOne(ctx, bson.M{"user": user, "target": target}).Decode(&d); err != nil {
		return nil, mapReadErr(err)
	}
	return &d, nil
}

func (s *DislikeStore) Delete(ctx context.Context, user, target string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"user": user, "target": target})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTargets returns the public IDs of everyone the user has disliked,
// used to filter feed candidates.
func (s *DislikeStore) ListTargets(ctx context.Context, user string) ([]string, error) {
	cur, err := s.col.Find(ctx, bson.M{"user": user},
		options.Find().SetProjection(bson.M{"target": 1}))
	if err != nil {
		return nil, err
	}
	var dislikes []models.Dislike
	if err := cur.All(ctx, &dislikes); err != nil {
		return nil, err
	}
	targets := make([]string, 0, len(dislikes))
	for _, d := range dislikes {
		targets = append(targets, d.Target)
	}
	return targets, nil
}

func (s *DislikeStore) ListByUserSince(ctx context.Context, user string, since time.Time) ([]models.Dislike, error) {
	cur, err := s.col.Find(ctx, bson.M{"user": user, "created_at": bson.M{"$gte": since}})
	if err != nil {
		return nil, err
	}
	var dislikes []models.Dislike
	if err := cur.All(ctx, &dislikes); err != nil {
		return nil, err
	}
	return dislikes, nil
}
