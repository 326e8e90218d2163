package services

import (
	"context"
	"net/http"

	"campusmatch/models"
	apierrors "campusmatch/utils/errors"
)

// MatchService exposes read access to formed matches. Creation happens
// inside the crush and propose flows; matches are never deleted.
type MatchService struct {
	matches MatchStore
	users   UserStore
}

func NewMatchService(matches MatchStore, users UserStore) *MatchService {
	return &MatchService{matches: matches, users: users}
}

// MatchSummary pairs a match with the counterpart's public profile.
type MatchSummary struct {
	Match   models.Match   `json:"match"`
	Partner models.Profile `json:"partner"`
}

// MyMatches lists the caller's matches with partner profiles attached.
func (s *MatchService) MyMatches(ctx context.Context, userID string) ([]MatchSummary, error) {
	matches, err := s.matches.ListByUser(ctx, userID)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to list matches", http.StatusInternalServerError)
	}
	if len(matches) == 0 {
		return []MatchSummary{}, nil
	}

	partnerIDs := make([]string, 0, len(matches))
	for i := range matches {
		if other, ok := matches[i].OtherUser(userID); ok {
			partnerIDs = append(partnerIDs, other)
		}
	}
	partners, err := s.users.FindByPublicIDs(ctx, partnerIDs)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to load partners", http.StatusInternalServerError)
	}
	byID := make(map[string]*models.User, len(partners))
	for i := range partners {
		byID[partners[i].PublicID] = &partners[i]
	}

	out := make([]MatchSummary, 0, len(matches))
	for i := range matches {
		other, ok := matches[i].OtherUser(userID)
		if !ok {
			continue
		}
		partner, ok := byID[other]
		if !ok {
			// partner soft-deleted since the match formed
			continue
		}
		out = append(out, MatchSummary{Match: matches[i], Partner: partner.PublicProfile()})
	}
	return out, nil
}

// ListAll is the admin view of every match.
func (s *MatchService) ListAll(ctx context.Context) ([]models.Match, error) {
	matches, err := s.matches.ListAll(ctx)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to list matches", http.StatusInternalServerError)
	}
	return matches, nil
}

func (s *MatchService) Count(ctx context.Context) (int64, error) {
	n, err := s.matches.Count(ctx)
	if err != nil {
		return 0, apierrors.Wrap(err, "DB_ERROR", "Failed to count matches", http.StatusInternalServerError)
	}
	return n, nil
}
