package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"campusmatch/cache"
	"campusmatch/logger"
	"campusmatch/models"
	"campusmatch/store"
	apierrors "campusmatch/utils/errors"
)

// crushCancelWindow is how long a crush must stand before it can be taken
// back.
const crushCancelWindow = 24 * time.Hour

// CrushService records one-way crushes and forms a match when both sides
// crush on each other.
type CrushService struct {
	crushes CrushStore
	matches MatchStore
	users   UserStore
	quota   *QuotaTracker
	cache   *cache.RedisCache
	now     func() time.Time
}

func NewCrushService(crushes CrushStore, matches MatchStore, users UserStore, quota *QuotaTracker, rc *cache.RedisCache) *CrushService {
	return &CrushService{crushes: crushes, matches: matches, users: users, quota: quota, cache: rc, now: time.Now}
}

// CrushResult reports what happened when a crush was recorded.
type CrushResult struct {
	Crush        *models.Crush `json:"crush"`
	Match        *models.Match `json:"match,omitempty"`
	MatchCreated bool          `json:"match_created"`
}

// Add records a crush from user to target. If the target already has a
// crush on the user, a match is created atomically on the pair key.
func (s *CrushService) Add(ctx context.Context, userID, targetID string) (*CrushResult, error) {
	if userID == targetID {
		return nil, apierrors.ErrSelfAction
	}

	user, err := s.users.FindByPublicID(ctx, userID)
	if err != nil {
		return nil, mapUserLookup(err)
	}
	if _, err := s.users.FindByPublicID(ctx, targetID); err != nil {
		return nil, mapUserLookup(err)
	}

	if _, err := s.crushes.Find(ctx, userID, targetID); err == nil {
		return nil, apierrors.ErrDuplicateAction
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to check existing crush", http.StatusInternalServerError)
	}

	if err := s.quota.Consume(ctx, user, models.ActionCrush); err != nil {
		return nil, err
	}

	crush := &models.Crush{User: userID, Target: targetID, CreatedAt: s.now()}
	if err := s.crushes.Insert(ctx, crush); err != nil {
		if refundErr := s.quota.Refund(ctx, user, models.ActionCrush); refundErr != nil {
			logger.Warn("failed to refund crush quota", "user", userID, "err", refundErr)
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apierrors.ErrDuplicateAction
		}
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to record crush", http.StatusInternalServerError)
	}

	if err := s.users.IncCrushCount(ctx, targetID, 1); err != nil {
		logger.Warn("failed to bump crush count", "target", targetID, "err", err)
	}
	if err := s.cache.BumpCrushCount(ctx, targetID, 1); err != nil {
		logger.Warn("failed to bump cached crush count", "target", targetID, "err", err)
	}

	result := &CrushResult{Crush: crush}

	// reciprocal crush forms a match
	if _, err := s.crushes.Find(ctx, targetID, userID); err == nil {
		match, created, err := s.matches.CreateIfAbsent(ctx, userID, targetID)
		if err != nil {
			return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to create match", http.StatusInternalServerError)
		}
		result.Match = match
		result.MatchCreated = created
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to check reciprocal crush", http.StatusInternalServerError)
	}

	return result, nil
}

// Cancel removes a crush placed at least 24 hours ago and refunds the
// day's quota unit.
func (s *CrushService) Cancel(ctx context.Context, userID, targetID string) error {
	crush, err := s.crushes.Find(ctx, userID, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.ErrNotFound
		}
		return apierrors.Wrap(err, "DB_ERROR", "Failed to look up crush", http.StatusInternalServerError)
	}
	if s.now().Sub(crush.CreatedAt) < crushCancelWindow {
		return apierrors.ErrCooldownActive
	}

	if err := s.crushes.Delete(ctx, userID, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.ErrNotFound
		}
		return apierrors.Wrap(err, "DB_ERROR", "Failed to remove crush", http.StatusInternalServerError)
	}

	user, err := s.users.FindByPublicID(ctx, userID)
	if err == nil {
		if err := s.quota.Refund(ctx, user, models.ActionCrush); err != nil {
			logger.Warn("failed to refund crush quota", "user", userID, "err", err)
		}
	}
	if err := s.users.IncCrushCount(ctx, targetID, -1); err != nil {
		logger.Warn("failed to decrement crush count", "target", targetID, "err", err)
	}
	if err := s.cache.BumpCrushCount(ctx, targetID, -1); err != nil {
		logger.Warn("failed to decrement cached crush count", "target", targetID, "err", err)
	}
	return nil
}

// MyCrushes lists the profiles the user has crushed on.
func (s *CrushService) MyCrushes(ctx context.Context, userID string) ([]models.Profile, error) {
	crushes, err := s.crushes.ListByUser(ctx, userID)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to list crushes", http.StatusInternalServerError)
	}
	ids := make([]string, 0, len(crushes))
	for _, c := range crushes {
		ids = append(ids, c.Target)
	}
	return s.profilesFor(ctx, ids)
}

// InboundCount returns how many people currently have a crush on the user,
// served from the Redis counter when warm.
func (s *CrushService) InboundCount(ctx context.Context, userID string) (int64, error) {
	if n, found, err := s.cache.GetCrushCount(ctx, userID); err == nil && found {
		return n, nil
	}
	n, err := s.crushes.CountByTarget(ctx, userID)
	if err != nil {
		return 0, apierrors.Wrap(err, "DB_ERROR", "Failed to count crushes", http.StatusInternalServerError)
	}
	if err := s.cache.SetCrushCount(ctx, userID, n); err != nil {
		logger.Warn("failed to cache crush count", "user", userID, "err", err)
	}
	return n, nil
}

// ListAll is the admin view of every recorded crush.
func (s *CrushService) ListAll(ctx context.Context) ([]models.Crush, error) {
	crushes, err := s.crushes.ListAll(ctx)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to list crushes", http.StatusInternalServerError)
	}
	return crushes, nil
}

func (s *CrushService) Count(ctx context.Context) (int64, error) {
	n, err := s.crushes.Count(ctx)
	if err != nil {
		return 0, apierrors.Wrap(err, "DB_ERROR", "Failed to count crushes", http.StatusInternalServerError)
	}
	return n, nil
}

func (s *CrushService) profilesFor(ctx context.Context, ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	users, err := s.users.FindByPublicIDs(ctx, ids)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to load profiles", http.StatusInternalServerError)
	}
	profiles := make([]models.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].PublicProfile())
	}
	return profiles, nil
}

// mapUserLookup converts store lookup failures into API errors.
func mapUserLookup(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apierrors.ErrNotFound
	}
	return apierrors.Wrap(err, "DB_ERROR", "Failed to load user", http.StatusInternalServerError)
}
