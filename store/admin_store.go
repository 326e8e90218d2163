package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"campusmatch/models"
)

type AdminStore struct {
	col *mongo.Collection
}

func NewAdminStore(db *mongo.Database) *AdminStore {
	return &AdminStore{col: db.Collection(colAdmins)}
}

func (s *AdminStore) Insert(ctx context.Context, a *models.Admin) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.col.InsertOne(ctx, a)
	return mapWriteErr(err)
}

func (s *AdminStore) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var a models.Admin
	if err := s.col.FindOne(ctx, bson.M{"username": username}).Decode(&a); err != nil {
		return nil, mapReadErr(err)
	}
	return &a, nil
}

func (s *AdminStore) FindByPublicID(ctx context.Context, publicID string) (*models.Admin, error) {
	var a models.Admin
	if err := s.col.FindOne(ctx, bson.M{"public_id": publicID}).Decode(&a); err != nil {
		return nil, mapReadErr(err)
	}
	return &a, nil
}
