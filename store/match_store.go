package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusmatch/models"
)

// MatchStore provides data access for matches. The unique index on pair_key
// guarantees at most one match per unordered user pair even when two trigger
// paths race.
type MatchStore struct {
	col *mongo.Collection
}

func NewMatchStore(db *mongo.Database) *MatchStore {
	return &MatchStore{col: db.Collection(colMatches)}
}

// CreateIfAbsent inserts a match for the pair unless one already exists.
// Returns the match and whether this call created it. Losing an insert race
// is not an error: the existing document is fetched and returned.
func (s *MatchStore) CreateIfAbsent(ctx context.Context, a, b string) (*models.Match, bool, error) {
	lo, hi := models.SortPair(a, b)
	m := &models.Match{
		PairKey:   models.PairKey(a, b),
		Users:     []string{lo, hi},
		CreatedAt: time.Now(),
	}
	res, err := s.col.InsertOne(ctx, m)
	if err == nil {
		if oid, ok := res.InsertedID.(interface{ Hex() string }); ok {
			m.ID = oid.Hex()
		}
		return m, true, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return nil, false, err
	}
	existing, ferr := s.FindByPair(ctx, a, b)
	if ferr != nil {
		return nil, false, ferr
	}
	return existing, false, nil
}

// FindByPair looks up the match for an unordered pair.
func (s *MatchStore) FindByPair(ctx context.Context, a, b string) (*models.Match, error) {
	var m models.Match
	if err := s.col.FindOne(ctx, bson.M{"pair_key": models.PairKey(a, b)}).Decode(&m); err != nil {
		return nil, mapReadErr(err)
	}
	return &m, nil
}

func (s *MatchStore) ListByUser(ctx context.Context, userID string) ([]models.Match, error) {
	cur, err := s.col.Find(ctx, bson.M{"users": userID},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	var matches []models.Match
	if err := cur.All(ctx, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *MatchStore) ListAll(ctx context.Context) ([]models.Match, error) {
	cur, err := s.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	var matches []models.Match
	if err := cur.All(ctx, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *MatchStore) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}
