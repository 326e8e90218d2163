package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"campusmatch/models"
)

// UserStore provides data access for the users collection. All foreign
// references between documents use the user's public ID.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection(colUsers)}
}

func (s *UserStore) Insert(ctx context.Context, u *models.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	res, err := s.col.InsertOne(ctx, u)
	if err != nil {
		return mapWriteErr(err)
	}
	if oid, ok := res.InsertedID.(interface{ Hex() string }); ok {
		u.ID = oid.Hex()
	}
	return nil
}

func (s *UserStore) FindByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	var u models.User
	if err := s.col.FindOne(ctx, bson.M{"public_id": publicID}).Decode(&u); err != nil {
		return nil, mapReadErr(err)
	}
	return &u, nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.col.FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		return nil, mapReadErr(err)
	}
	return &u, nil
}

func (s *UserStore) FindByPublicIDs(ctx context.Context, publicIDs []string) ([]models.User, error) {
	cur, err := s.col.Find(ctx, bson.M{"public_id": bson.M{"$in": publicIDs}})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindApprovedCandidates returns approved users matching any of the allowed
// genders, excluding the given public IDs (requester + disliked targets).
func (s *UserStore) FindApprovedCandidates(ctx context.Context, excludeIDs, genders []string) ([]models.User, error) {
	filter := bson.M{
		"public_id": bson.M{"$nin": excludeIDs},
		"gender":    bson.M{"$in": genders},
		"status":    models.StatusApproved,
	}
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UserFilter narrows admin listings.
type UserFilter struct {
	Status  string
	Batch   string
	Program string
}

func (s *UserStore) List(ctx context.Context, f UserFilter) ([]models.User, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Batch != "" {
		filter["batch"] = f.Batch
	}
	if f.Program != "" {
		filter["program"] = f.Program
	}
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, publicID string, upd models.ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now()}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.Nickname != nil {
		set["nickname"] = *upd.Nickname
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.Hobbies != nil {
		set["hobbies"] = *upd.Hobbies
	}
	if upd.HeightFt != nil {
		set["height_ft"] = *upd.HeightFt
	}
	if upd.HeightIn != nil {
		set["height_in"] = *upd.HeightIn
	}
	if upd.Zodiac != nil {
		set["zodiac"] = *upd.Zodiac
	}
	if upd.MBTI != nil {
		set["mbti"] = *upd.MBTI
	}
	if upd.Photos != nil {
		set["photos"] = *upd.Photos
	}
	if upd.Contact != nil {
		set["contact"] = *upd.Contact
	}
	if upd.NicknameChangedAt != nil {
		set["nickname_changed_at"] = *upd.NicknameChangedAt
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"public_id": publicID}, bson.M{"$set": set})
	if err != nil {
		return mapWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetQuota persists a counter and its reset timestamp for one action.
func (s *UserStore) SetQuota(ctx context.Context, publicID string, action models.QuotaAction, count int, lastReset time.Time) error {
	countField, resetField := quotaFields(action)
	res, err := s.col.UpdateOne(ctx, bson.M{"public_id": publicID}, bson.M{
		"$set": bson.M{countField: count, resetField: lastReset},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncCrushCount adjusts the denormalized inbound-crush counter. Decrements
// are guarded so the counter never drops below zero.
func (s *UserStore) IncCrushCount(ctx context.Context, publicID string, delta int) error {
	filter := bson.M{"public_id": publicID}
	if delta < 0 {
		filter["crush_count"] = bson.M{"$gt": 0}
	}
	_, err := s.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"crush_count": delta}})
	return err
}

func (s *UserStore) SetShownProfiles(ctx context.Context, publicID string, shown []string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"public_id": publicID}, bson.M{
		"$set": bson.M{"shown_profiles": shown},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus applies the admin decision and discards the verification photo
// reference in the same update.
func (s *UserStore) SetStatus(ctx context.Context, publicID, status, approvedBy string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"public_id": publicID}, bson.M{
		"$set":   bson.M{"status": status, "approved_by": approvedBy, "updated_at": time.Now()},
		"$unset": bson.M{"student_id_photo": 1},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) SetPassword(ctx context.Context, publicID, hash string, changedAt time.Time) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"public_id": publicID}, bson.M{
		"$set": bson.M{"password_hash": hash, "password_changed_at": changedAt, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete deactivates the account; documents are never hard-removed.
func (s *UserStore) SoftDelete(ctx context.Context, publicID string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"public_id": publicID}, bson.M{
		"$set": bson.M{"status": models.StatusDeleted, "active": false, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) CountByStatus(ctx context.Context) (map[string]int64, error) {
	cur, err := s.col.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Count
	}
	return out, nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{})
}

func quotaFields(action models.QuotaAction) (countField, resetField string) {
	switch action {
	case models.ActionDislike:
		return "dislikes_used_today", "last_dislike_reset"
	case models.ActionPropose:
		return "daily_propose_count", "last_propose_reset"
	default:
		return "daily_crush_count", "last_crush_reset"
	}
}
