package services

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"campusmatch/models"
	apierrors "campusmatch/utils/errors"
)

// feedChunkSize is how many profiles a single feed request returns at most.
const feedChunkSize = 5

// FeedService serves rotating chunks of candidate profiles. Rotation state
// (shown_profiles) lives on the requesting user's document.
type FeedService struct {
	users    UserStore
	dislikes DislikeStore
	shuffle  func(n int, swap func(i, j int))
}

func NewFeedService(users UserStore, dislikes DislikeStore) *FeedService {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &FeedService{users: users, dislikes: dislikes, shuffle: rng.Shuffle}
}

// AllowedGenders maps a sexuality preference onto the gender pools it may
// be shown.
func AllowedGenders(sexuality string) []string {
	switch sexuality {
	case models.SexualityMale:
		return []string{models.GenderMale}
	case models.SexualityFemale:
		return []string{models.GenderFemale}
	case models.SexualityBoth:
		return []string{models.GenderMale, models.GenderFemale, models.GenderLGBT}
	default:
		return nil
	}
}

// GetChunk returns up to five unseen profiles for the user. When the unseen
// pool runs low it evicts the oldest half of the rotation history; if the
// pool is exhausted entirely, the full eligible set becomes unseen again.
//
// Two concurrent requests for the same user can interleave the
// shown_profiles write; the later write wins and a profile may repeat once.
func (s *FeedService) GetChunk(ctx context.Context, userID string) ([]models.Profile, error) {
	user, err := s.users.FindByPublicID(ctx, userID)
	if err != nil {
		return nil, mapUserLookup(err)
	}
	if user.Status != models.StatusApproved {
		return nil, apierrors.ErrForbidden
	}

	dislikedTargets, err := s.dislikes.ListTargets(ctx, userID)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to load dislikes", http.StatusInternalServerError)
	}
	exclude := append([]string{userID}, dislikedTargets...)

	eligible, err := s.users.FindApprovedCandidates(ctx, exclude, AllowedGenders(user.Sexuality))
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to load candidates", http.StatusInternalServerError)
	}
	if len(eligible) == 0 {
		return []models.Profile{}, nil
	}

	byID := make(map[string]*models.User, len(eligible))
	for i := range eligible {
		byID[eligible[i].PublicID] = &eligible[i]
	}

	shown := user.ShownProfiles
	unseen := unseenOf(byID, shown)

	if len(unseen) < feedChunkSize && len(shown) > 0 {
		// drop the oldest half of the rotation history
		shown = shown[len(shown)/2:]
		unseen = unseenOf(byID, shown)
	}
	if len(unseen) < feedChunkSize {
		// pool exhausted: everyone eligible rotates back in, while
		// the surviving history stays in place
		unseen = unseen[:0]
		for id := range byID {
			unseen = append(unseen, id)
		}
	}

	s.shuffle(len(unseen), func(i, j int) {
		unseen[i], unseen[j] = unseen[j], unseen[i]
	})
	if len(unseen) > feedChunkSize {
		unseen = unseen[:feedChunkSize]
	}

	newShown := append(append([]string{}, shown...), unseen...)
	if err := s.users.SetShownProfiles(ctx, userID, newShown); err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to save feed state", http.StatusInternalServerError)
	}

	profiles := make([]models.Profile, 0, len(unseen))
	for _, id := range unseen {
		profiles = append(profiles, byID[id].PublicProfile())
	}
	return profiles, nil
}

// unseenOf returns eligible IDs absent from the rotation history, in the
// candidate set's iteration order (shuffled afterwards anyway).
func unseenOf(byID map[string]*models.User, shown []string) []string {
	seen := make(map[string]bool, len(shown))
	for _, id := range shown {
		seen[id] = true
	}
	unseen := make([]string, 0, len(byID))
	for id := range byID {
		if !seen[id] {
			unseen = append(unseen, id)
		}
	}
	return unseen
}
