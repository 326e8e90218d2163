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

// proposeCancelWindow is how long a pending proposal must stand before the
// sender may withdraw it.
const proposeCancelWindow = 24 * time.Hour

// ProposeService handles direct match proposals: create, respond, cancel.
// A denied proposal permanently blocks further proposals between the pair,
// in either direction.
type ProposeService struct {
	proposes ProposeStore
	matches  MatchStore
	users    UserStore
	quota    *QuotaTracker
	now      func() time.Time
}

func NewProposeService(proposes ProposeStore, matches MatchStore, users UserStore, quota *QuotaTracker) *ProposeService {
	return &ProposeService{proposes: proposes, matches: matches, users: users, quota: quota, now: time.Now}
}

// Create sends a proposal from one approved user to another.
func (s *ProposeService) Create(ctx context.Context, fromID, toID string) (*models.Propose, error) {
	if fromID == toID {
		return nil, apierrors.ErrSelfAction
	}

	from, err := s.users.FindByPublicID(ctx, fromID)
	if err != nil {
		return nil, mapUserLookup(err)
	}
	to, err := s.users.FindByPublicID(ctx, toID)
	if err != nil {
		return nil, mapUserLookup(err)
	}
	if from.Status != models.StatusApproved || to.Status != models.StatusApproved {
		return nil, apierrors.ErrBothMustApprove
	}

	blocked, err := s.proposes.ExistsDenied(ctx, fromID, toID)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to check proposal history", http.StatusInternalServerError)
	}
	if blocked {
		return nil, apierrors.ErrPermanentlyBlocked
	}

	if _, err := s.proposes.FindByPair(ctx, fromID, toID); err == nil {
		return nil, apierrors.ErrDuplicateAction
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to check existing proposal", http.StatusInternalServerError)
	}

	if err := s.quota.Consume(ctx, from, models.ActionPropose); err != nil {
		return nil, err
	}

	propose := &models.Propose{
		From:      fromID,
		To:        toID,
		Status:    models.ProposeStatusPending,
		CreatedAt: s.now(),
	}
	if err := s.proposes.Insert(ctx, propose); err != nil {
		if refundErr := s.quota.Refund(ctx, from, models.ActionPropose); refundErr != nil {
			logger.Warn("failed to refund propose quota", "user", fromID, "err", refundErr)
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apierrors.ErrDuplicateAction
		}
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to create proposal", http.StatusInternalServerError)
	}
	return propose, nil
}

// RespondResult reports the outcome of an accept/deny.
type RespondResult struct {
	Propose *models.Propose `json:"propose"`
	Match   *models.Match   `json:"match,omitempty"`
}

// Respond lets the recipient accept or deny a pending proposal. Accepting
// forms a match; denying blocks the pair for good.
func (s *ProposeService) Respond(ctx context.Context, userID, proposeID, action string) (*RespondResult, error) {
	var newStatus string
	switch action {
	case "accept":
		newStatus = models.ProposeStatusAccepted
	case "deny":
		newStatus = models.ProposeStatusDenied
	default:
		return nil, apierrors.ErrInvalidAction
	}

	propose, err := s.proposes.FindByID(ctx, proposeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.ErrNotFound
		}
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to load proposal", http.StatusInternalServerError)
	}
	if propose.To != userID {
		return nil, apierrors.ErrForbidden
	}

	updated, err := s.proposes.UpdateStatusIfPending(ctx, proposeID, newStatus)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to update proposal", http.StatusInternalServerError)
	}
	if !updated {
		return nil, apierrors.ErrAlreadyResponded
	}
	propose.Status = newStatus

	result := &RespondResult{Propose: propose}
	if newStatus == models.ProposeStatusAccepted {
		match, _, err := s.matches.CreateIfAbsent(ctx, propose.From, propose.To)
		if err != nil {
			return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to create match", http.StatusInternalServerError)
		}
		result.Match = match
	}
	return result, nil
}

// Cancel withdraws a pending proposal the caller sent at least 24 hours
// ago. Accepted proposals are matches and denied ones are permanent
// records; neither can be withdrawn.
func (s *ProposeService) Cancel(ctx context.Context, userID, proposeID string) error {
	propose, err := s.proposes.FindByID(ctx, proposeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.ErrNotFound
		}
		return apierrors.Wrap(err, "DB_ERROR", "Failed to load proposal", http.StatusInternalServerError)
	}
	if propose.From != userID {
		return apierrors.ErrForbidden
	}
	if propose.Status != models.ProposeStatusPending {
		return apierrors.ErrImmutableState
	}
	if s.now().Sub(propose.CreatedAt) < proposeCancelWindow {
		return apierrors.ErrCooldownActive
	}

	if err := s.proposes.Delete(ctx, propose.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.ErrNotFound
		}
		return apierrors.Wrap(err, "DB_ERROR", "Failed to cancel proposal", http.StatusInternalServerError)
	}
	return nil
}

// ListSent returns the caller's outgoing proposals that still matter to
// them: pending ones and the denials that block the pair.
func (s *ProposeService) ListSent(ctx context.Context, userID string) ([]models.Propose, error) {
	proposes, err := s.proposes.ListSent(ctx, userID, []string{models.ProposeStatusPending, models.ProposeStatusDenied})
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to list proposals", http.StatusInternalServerError)
	}
	return proposes, nil
}

// ListReceived returns pending proposals awaiting the caller's answer.
func (s *ProposeService) ListReceived(ctx context.Context, userID string) ([]models.Propose, error) {
	proposes, err := s.proposes.ListReceivedPending(ctx, userID)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to list proposals", http.StatusInternalServerError)
	}
	return proposes, nil
}

// ListAll is the admin view of every proposal.
func (s *ProposeService) ListAll(ctx context.Context) ([]models.Propose, error) {
	proposes, err := s.proposes.ListAll(ctx)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to list proposals", http.StatusInternalServerError)
	}
	return proposes, nil
}

func (s *ProposeService) Count(ctx context.Context) (int64, error) {
	n, err := s.proposes.Count(ctx)
	if err != nil {
		return 0, apierrors.Wrap(err, "DB_ERROR", "Failed to count proposals", http.StatusInternalServerError)
	}
	return n, nil
}
