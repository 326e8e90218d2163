package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"campusmatch/logger"
	"campusmatch/models"
	"campusmatch/store"
	apierrors "campusmatch/utils/errors"
)

// dislikeRemoveWindow is how long a dislike must stand before the actor
// can undo it.
const dislikeRemoveWindow = 24 * time.Hour

// DislikeService records dislikes, which suppress targets from the actor's
// feed until removed.
type DislikeService struct {
	dislikes DislikeStore
	users    UserStore
	quota    *QuotaTracker
	now      func() time.Time
}

func NewDislikeService(dislikes DislikeStore, users UserStore, quota *QuotaTracker) *DislikeService {
	return &DislikeService{dislikes: dislikes, users: users, quota: quota, now: time.Now}
}

// Add records a dislike from user to target.
func (s *DislikeService) Add(ctx context.Context, userID, targetID string) (*models.Dislike, error) {
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

	if _, err := s.dislikes.Find(ctx, userID, targetID); err == nil {
		return nil, apierrors.ErrDuplicateAction
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to check existing dislike", http.StatusInternalServerError)
	}

	if err := s.quota.Consume(ctx, user, models.ActionDislike); err != nil {
		return nil, err
	}

	dislike := &models.Dislike{User: userID, Target: targetID, CreatedAt: s.now()}
	if err := s.dislikes.Insert(ctx, dislike); err != nil {
		if refundErr := s.quota.Refund(ctx, user, models.ActionDislike); refundErr != nil {
			logger.Warn("failed to refund dislike quota", "user", userID, "err", refundErr)
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apierrors.ErrDuplicateAction
		}
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to record dislike", http.StatusInternalServerError)
	}
	return dislike, nil
}

// Remove undoes a dislike placed at least 24 hours ago and refunds the
// day's quota unit.
func (s *DislikeService) Remove(ctx context.Context, userID, targetID string) error {
	dislike, err := s.dislikes.Find(ctx, userID, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.ErrNotFound
		}
		return apierrors.Wrap(err, "DB_ERROR", "Failed to look up dislike", http.StatusInternalServerError)
	}
	if s.now().Sub(dislike.CreatedAt) < dislikeRemoveWindow {
		return apierrors.ErrCooldownActive
	}

	if err := s.dislikes.Delete(ctx, userID, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.ErrNotFound
		}
		return apierrors.Wrap(err, "DB_ERROR", "Failed to remove dislike", http.StatusInternalServerError)
	}

	user, err := s.users.FindByPublicID(ctx, userID)
	if err == nil {
		if err := s.quota.Refund(ctx, user, models.ActionDislike); err != nil {
			logger.Warn("failed to refund dislike quota", "user", userID, "err", err)
		}
	}
	return nil
}

// MyRecent lists profiles the user disliked in the last 24 hours, the
// window in which the dislike still cannot be undone.
func (s *DislikeService) MyRecent(ctx context.Context, userID string) ([]models.Profile, error) {
	since := s.now().Add(-dislikeRemoveWindow)
	dislikes, err := s.dislikes.ListByUserSince(ctx, userID, since)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to list dislikes", http.StatusInternalServerError)
	}
	if len(dislikes) == 0 {
		return []models.Profile{}, nil
	}
	ids := make([]string, 0, len(dislikes))
	for _, d := range dislikes {
		ids = append(ids, d.Target)
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
