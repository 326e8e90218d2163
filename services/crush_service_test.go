package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmatch/models"
	apierrors "campusmatch/utils/errors"
)

func newCrushFixture(t *testing.T) (*CrushService, *fakeUserStore, *fakeCrushStore, *fakeMatchStore) {
	t.Helper()
	users := newFakeUserStore()
	crushes := &fakeCrushStore{}
	matches := newFakeMatchStore()
	svc := NewCrushService(crushes, matches, users, utcTracker(users), newTestCache(t))
	return svc, users, crushes, matches
}

func TestCrushOnSelfRejected(t *testing.T) {
	svc, users, _, _ := newCrushFixture(t)
	seedUsers(t, users, approvedUser("a", models.GenderMale, models.SexualityFemale))

	_, err := svc.Add(context.Background(), "a", "a")
	assert.Equal(t, apierrors.ErrSelfAction, err)
}

func TestCrushOnUnknownTargetRejected(t *testing.T) {
	svc, users, _, _ := newCrushFixture(t)
	seedUsers(t, users, approvedUser("a", models.GenderMale, models.SexualityFemale))

	_, err := svc.Add(context.Background(), "a", "ghost")
	assert.Equal(t, apierrors.ErrNotFound, err)
}

func TestCrushDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newCrushFixture(t)
	seedUsers(t, users,
		approvedUser("a", models.GenderMale, models.SexualityFemale),
		approvedUser("b", models.GenderFemale, models.SexualityMale),
	)

	_, err := svc.Add(ctx, "a", "b")
	require.NoError(t, err)

	_, err = svc.Add(ctx, "a", "b")
	assert.Equal(t, apierrors.ErrDuplicateAction, err)

	// the duplicate attempt must not burn quota
	a, err := users.FindByPublicID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, a.DailyCrushCount)
}

func TestMutualCrushFormsExactlyOneMatch(t *testing.T) {
	ctx := context.Background()
	svc, users, _, matches := newCrushFixture(t)
	seedUsers(t, users,
		approvedUser("a", models.GenderMale, models.SexualityFemale),
		approvedUser("b", models.GenderFemale, models.SexualityMale),
	)

	first, err := svc.Add(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, first.MatchCreated)
	assert.Nil(t, first.Match)

	second, err := svc.Add(ctx, "b", "a")
	require.NoError(t, err)
	assert.True(t, second.MatchCreated)
	require.NotNil(t, second.Match)
	assert.Equal(t, []string{"a", "b"}, second.Match.Users)

	n, err := matches.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCrushBumpsInboundCount(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newCrushFixture(t)
	seedUsers(t, users,
		approvedUser("a", models.GenderMale, models.SexualityFemale),
		approvedUser("b", models.GenderFemale, models.SexualityMale),
		approvedUser("c", models.GenderFemale, models.SexualityMale),
	)

	_, err := svc.Add(ctx, "a", "b")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "c", "b")
	require.NoError(t, err)

	b, err := users.FindByPublicID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 2, b.CrushCount)

	n, err := svc.InboundCount(ctx, "b")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestInboundCountFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	svc, users, crushes, _ := newCrushFixture(t)
	seedUsers(t, users, approvedUser("b", models.GenderFemale, models.SexualityMale))

	// counter never cached: count comes from the ledger
	crushes.items = append(crushes.items,
		models.Crush{User: "x", Target: "b", CreatedAt: time.Now()},
		models.Crush{User: "y", Target: "b", CreatedAt: time.Now()},
		models.Crush{User: "z", Target: "b", CreatedAt: time.Now()},
	)

	n, err := svc.InboundCount(ctx, "b")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	// second read is served by the cache seeded above
	n, err = svc.InboundCount(ctx, "b")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestCrushCancelWithinCooldownRejected(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newCrushFixture(t)
	seedUsers(t, users,
		approvedUser("a", models.GenderMale, models.SexualityFemale),
		approvedUser("b", models.GenderFemale, models.SexualityMale),
	)

	_, err := svc.Add(ctx, "a", "b")
	require.NoError(t, err)

	err = svc.Cancel(ctx, "a", "b")
	assert.Equal(t, apierrors.ErrCooldownActive, err)
}

func TestCrushCancelAfterCooldown(t *testing.T) {
	ctx := context.Background()
	svc, users, crushes, _ := newCrushFixture(t)
	seedUsers(t, users,
		approvedUser("a", models.GenderMale, models.SexualityFemale),
		approvedUser("b", models.GenderFemale, models.SexualityMale),
	)

	_, err := svc.Add(ctx, "a", "b")
	require.NoError(t, err)
	crushes.backdate("a", "b", time.Now().Add(-25*time.Hour))

	require.NoError(t, svc.Cancel(ctx, "a", "b"))

	a, err := users.FindByPublicID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 0, a.DailyCrushCount, "cancel refunds the quota unit")

	b, err := users.FindByPublicID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, 0, b.CrushCount)

	// the pair can crush again
	_, err = svc.Add(ctx, "a", "b")
	require.NoError(t, err)
}

func TestCrushCancelCooldownBoundary(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newCrushFixture(t)
	seedUsers(t, users,
		approvedUser("a", models.GenderMale, models.SexualityFemale),
		approvedUser("b", models.GenderFemale, models.SexualityMale),
	)

	placed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return placed }
	_, err := svc.Add(ctx, "a", "b")
	require.NoError(t, err)

	svc.now = func() time.Time { return placed.Add(crushCancelWindow - time.Minute) }
	assert.Equal(t, apierrors.ErrCooldownActive, svc.Cancel(ctx, "a", "b"))

	// exactly 24 hours elapsed is enough
	svc.now = func() time.Time { return placed.Add(crushCancelWindow) }
	require.NoError(t, svc.Cancel(ctx, "a", "b"))
}

func TestInboundCountColdCacheStaysHonest(t *testing.T) {
	ctx := context.Background()
	svc, users, crushes, _ := newCrushFixture(t)
	seedUsers(t, users,
		approvedUser("a", models.GenderMale, models.SexualityFemale),
		approvedUser("b", models.GenderFemale, models.SexualityMale),
	)
	crushes.items = append(crushes.items,
		models.Crush{User: "x", Target: "b", CreatedAt: time.Now()},
		models.Crush{User: "y", Target: "b", CreatedAt: time.Now()},
		models.Crush{User: "z", Target: "b", CreatedAt: time.Now()},
	)

	// the counter was never cached, so this bump must not seed it at 1
	_, err := svc.Add(ctx, "a", "b")
	require.NoError(t, err)

	n, err := svc.InboundCount(ctx, "b")
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestCrushQuotaLimit(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newCrushFixture(t)
	seedUsers(t, users,
		approvedUser("a", models.GenderMale, models.SexualityFemale),
		approvedUser("b", models.GenderFemale, models.SexualityMale),
		approvedUser("c", models.GenderFemale, models.SexualityMale),
		approvedUser("d", models.GenderFemale, models.SexualityMale),
		approvedUser("e", models.GenderFemale, models.SexualityMale),
	)

	for _, target := range []string{"b", "c", "d"} {
		_, err := svc.Add(ctx, "a", target)
		require.NoError(t, err)
	}

	_, err := svc.Add(ctx, "a", "e")
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, "QUOTA_EXCEEDED", apiErr.Code)
}

func TestMyCrushesReturnsProfiles(t *testing.T) {
	ctx := context.Background()
	svc, users, _, _ := newCrushFixture(t)
	seedUsers(t, users,
		approvedUser("a", models.GenderMale, models.SexualityFemale),
		approvedUser("b", models.GenderFemale, models.SexualityMale),
	)

	_, err := svc.Add(ctx, "a", "b")
	require.NoError(t, err)

	profiles, err := svc.MyCrushes(ctx, "a")
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "b", profiles[0].ID)
	assert.Equal(t, "nick-b", profiles[0].Nickname)
}
