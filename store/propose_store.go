package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusmatch/models"
)

// ProposeStore provides data access for the proposals ledger.
type ProposeStore struct {
	col *mongo.Collection
}

func NewProposeStore(db *mongo.Database) *ProposeStore {
	return &ProposeStore{col: db.Collection(colProposes)}
}

func (s *ProposeStore) Insert(ctx context.Context, p *models.Propose) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	res, err := s.col.InsertOne(ctx, p)
	if err != nil {
		return mapWriteErr(err)
	}
	if oid, ok := res.InsertedID.(interface{ Hex() string }); ok {
		p.ID = oid.Hex()
	}
	return nil
}

func (s *ProposeStore) FindByID(ctx context.Context, id string) (*models.Propose, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var p models.Propose
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, mapReadErr(err)
	}
	return &p, nil
}

func (s *ProposeStore) FindByPair(ctx context.Context, from, to string) (*models.Propose, error) {
	var p models.Propose
	if err := s.col.FindOne(ctx, bson.M{"from": from, "to": to}).Decode(&p); err != nil {
		return nil, mapReadErr(err)
	}
	return &p, nil
}

// ExistsDenied reports whether any proposal between the two users was ever
// denied, in either direction. A denial permanently blocks the pair.
func (s *ProposeStore) ExistsDenied(ctx context.Context, a, b string) (bool, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"from": a, "to": b, "status": models.ProposeStatusDenied},
		bson.M{"from": b, "to": a, "status": models.ProposeStatusDenied},
	}}
	count, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateStatusIfPending performs the single-fire pending -> accepted/denied
// transition. Returns false when the proposal was not pending anymore.
func (s *ProposeStore) UpdateStatusIfPending(ctx context.Context, id, newStatus string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, ErrNotFound
	}
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": models.ProposeStatusPending},
		bson.M{"$set": bson.M{"status": newStatus}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *ProposeStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProposeStore) ListSent(ctx context.Context, from string, statuses []string) ([]models.Propose, error) {
	cur, err := s.col.Find(ctx,
		bson.M{"from": from, "status": bson.M{"$in": statuses}},
		options.Find().SetSort(bson.M{"created_at": -1}),
	)
	if err != nil {
		return nil, err
	}
	var proposes []models.Propose
	if err := cur.All(ctx, &proposes); err != nil {
		return nil, err
	}
	return proposes, nil
}

func (s *ProposeStore) ListReceivedPending(ctx context.Context, to string) ([]models.Propose, error) {
	cur, err := s.col.Find(ctx,
		bson.M{"to": to, "status": models.ProposeStatusPending},
		options.Find().SetSort(bson.M{"created_at": -1}),
	)
	if err != nil {
		return nil, err
	}
	var proposes []models.Propose
	if err := cur.All(ctx, &proposes); err != nil {
		return nil, err
	}
	return proposes, nil
}

func (s *ProposeStore) ListAll(ctx context.Context) ([]models.Propose, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	var proposes []models.Propose
	if err := cur.All(ctx, &proposes); err != nil {
		return nil, err
	}
	return proposes, nil
}

func (s *ProposeStore) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}
