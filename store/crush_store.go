package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusmatch/models"
)

// CrushStore provides data access for the crushes ledger. The unique index
// on (user, target) is the duplicate-prevention backstop.
type CrushStore struct {
	col *mongo.Collection
}

func NewCrushStore(db *mongo.Database) *CrushStore {
	return &CrushStore{col: db.Collection(colCrushes)}
}

func (s *CrushStore) Insert(ctx context.Context, c *models.Crush) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	res, err := s.col.InsertOne(ctx, c)
	if err != nil {
		return mapWriteErr(err)
	}
	if oid, ok := res.InsertedID.(interface{ Hex() string }); ok {
		c.ID = oid.Hex()
	}
	return nil
}

func (s *CrushStore) Find(ctx context.Context, user, target string) (*models.Crush, error) {
	var c models.Crush
	if err := s.col.FindOne(ctx, bson.M{"user": user, "target": target}).Decode(&c); err != nil {
		return nil, mapReadErr(err)
	}
	return &c, nil
}

func (s *CrushStore) Delete(ctx context.Context, user, target string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"user": user, "target": target})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CrushStore) ListByUser(ctx context.Context, user string) ([]models.Crush, error) {
	cur, err := s.col.Find(ctx, bson.M{"user": user})
	if err != nil {
		return nil, err
	}
	var crushes []models.Crush
	if err := cur.All(ctx, &crushes); err != nil {
		return nil, err
	}
	return crushes, nil
}

func (s *CrushStore) CountByTarget(ctx context.Context, target string) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{"target": target})
}

func (s *CrushStore) ListAll(ctx context.Context) ([]models.Crush, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	var crushes []models.Crush
	if err := cur.All(ctx, &crushes); err != nil {
		return nil, err
	}
	return crushes, nil
}

func (s *CrushStore) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}
