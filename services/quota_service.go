package services

import (
	"context"
	"time"

	"campusmatch/models"
	apierrors "campusmatch/utils/errors"
)

// DailyLimits are the per-action daily allowances. Policy constants, not
// per-user configuration.
var DailyLimits = map[models.QuotaAction]int{
	models.ActionDislike: 10,
	models.ActionPropose: 2,
	models.ActionCrush:   3,
}

// QuotaTracker decides whether a user may perform a rate-limited action
// "today", where today is bounded by midnight in one fixed timezone for all
// actions. Counters live on the user document; the tracker owns the
// reset/consume/refund logic.
type QuotaTracker struct {
	users UserStore
	loc   *time.Location
	now   func() time.Time
}

func NewQuotaTracker(users UserStore, loc *time.Location) *QuotaTracker {
	return &QuotaTracker{users: users, loc: loc, now: time.Now}
}

// midnight truncates a timestamp to the start of its day in the reset zone.
func (t *QuotaTracker) midnight(ts time.Time) time.Time {
	l := ts.In(t.loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, t.loc)
}

// CheckAndReset zeroes the action counter if the calendar day has advanced
// since the last reset. Calling it twice within the same day is a no-op.
// The user struct is updated in place alongside the persisted document.
func (t *QuotaTracker) CheckAndReset(ctx context.Context, u *models.User, action models.QuotaAction) error {
	_, lastReset := counterFor(u, action)
	today := t.midnight(t.now())
	if !today.After(t.midnight(lastReset)) {
		return nil
	}
	setCounter(u, action, 0, today)
	if err := t.users.SetQuota(ctx, u.PublicID, action, 0, today); err != nil {
		return apierrors.Wrap(err, "DB_ERROR", "Failed to reset daily counter", 500)
	}
	return nil
}

// Consume spends one unit of today's allowance, resetting first if needed.
func (t *QuotaTracker) Consume(ctx context.Context, u *models.User, action models.QuotaAction) error {
	if err := t.CheckAndReset(ctx, u, action); err != nil {
		return err
	}
	count, lastReset := counterFor(u, action)
	limit := DailyLimits[action]
	if count >= limit {
		return apierrors.QuotaExceeded(string(action), limit)
	}
	setCounter(u, action, count+1, lastReset)
	if err := t.users.SetQuota(ctx, u.PublicID, action, count+1, lastReset); err != nil {
		return apierrors.Wrap(err, "DB_ERROR", "Failed to update daily counter", 500)
	}
	return nil
}

// Refund returns one unit after a cancellation. Never drives the counter
// below zero.
func (t *QuotaTracker) Refund(ctx context.Context, u *models.User, action models.QuotaAction) error {
	count, lastReset := counterFor(u, action)
	if count <= 0 {
		return nil
	}
	setCounter(u, action, count-1, lastReset)
	if err := t.users.SetQuota(ctx, u.PublicID, action, count-1, lastReset); err != nil {
		return apierrors.Wrap(err, "DB_ERROR", "Failed to update daily counter", 500)
	}
	return nil
}

func counterFor(u *models.User, action models.QuotaAction) (int, time.Time) {
	switch action {
	case models.ActionDislike:
		return u.DislikesUsedToday, u.LastDislikeReset
	case models.ActionPropose:
		return u.DailyProposeCount, u.LastProposeReset
	default:
		return u.DailyCrushCount, u.LastCrushReset
	}
}

func setCounter(u *models.User, action models.QuotaAction, count int, lastReset time.Time) {
	switch action {
	case models.ActionDislike:
		u.DislikesUsedToday = count
		u.LastDislikeReset = lastReset
	case models.ActionPropose:
		u.DailyProposeCount = count
		u.LastProposeReset = lastReset
	default:
		u.DailyCrushCount = count
		u.LastCrushReset = lastReset
	}
}
