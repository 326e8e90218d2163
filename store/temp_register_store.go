package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"campusmatch/models"
)

// TempRegisterStore persists in-progress signup sessions. Expiry is handled
// by the TTL index on created_at.
type TempRegisterStore struct {
	col *mongo.Collection
}

func NewTempRegisterStore(db *mongo.Database) *TempRegisterStore {
	return &TempRegisterStore{col: db.Collection(colTempRegisters)}
}

func (s *TempRegisterStore) Insert(ctx context.Context, t *models.TempRegistration) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	_, err := s.col.InsertOne(ctx, t)
	return mapWriteErr(err)
}

func (s *TempRegisterStore) Find(ctx context.Context, registrationID string) (*models.TempRegistration, error) {
	var t models.TempRegistration
	if err := s.col.FindOne(ctx, bson.M{"registration_id": registrationID}).Decode(&t); err != nil {
		return nil, mapReadErr(err)
	}
	return &t, nil
}

// Save persists the merged step data and current step.
func (s *TempRegisterStore) Save(ctx context.Context, t *models.TempRegistration) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"registration_id": t.RegistrationID}, bson.M{
		"$set": bson.M{
			"current_step": t.CurrentStep,
			"data":         t.Data,
			"updated_at":   time.Now(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *TempRegisterStore) Delete(ctx context.Context, registrationID string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"registration_id": registrationID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
