package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmatch/models"
	apierrors "campusmatch/utils/errors"
)

const testJWTSecret = "test-secret"

func newUserFixture(t *testing.T) (*UserService, *fakeUserStore) {
	t.Helper()
	users := newFakeUserStore()
	svc := NewUserService(users, newTestCache(t), testJWTSecret, time.Hour)
	return svc, users
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Nickname:  "Moon",
		DOB:       time.Date(2003, 7, 21, 0, 0, 0, 0, time.UTC),
		Gender:    models.GenderFemale,
		Sexuality: models.SexualityMale,
		Bio:       "coffee and late night walks",
		Hobbies:   []string{"Reading", "reading ", "Music"},
		Name:      "Moe Moe",
		Program:   "CST",
		Batch:     "2023",
		Contact:   "0912345678",
		Photos: []models.Photo{
			{FileID: "p1", URL: "https://img/1"},
			{FileID: "p2", URL: "https://img/2"},
			{FileID: "p3", URL: "https://img/3"},
		},
		StudentID: &models.Photo{FileID: "sid", URL: "https://img/sid"},
		Username:  "moe.moe_21",
		Password:  "supersecret",
	}
}

func TestRegisterInputValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"empty nickname", func(in *RegisterInput) { in.Nickname = " " }},
		{"missing dob", func(in *RegisterInput) { in.DOB = time.Time{} }},
		{"missing student id", func(in *RegisterInput) { in.StudentID = nil }},
		{"short username", func(in *RegisterInput) { in.Username = "ab" }},
		{"bad username charset", func(in *RegisterInput) { in.Username = "Bad Name!" }},
		{"short password", func(in *RegisterInput) { in.Password = "short" }},
		{"too few photos", func(in *RegisterInput) { in.Photos = in.Photos[:2] }},
		{"bad gender", func(in *RegisterInput) { in.Gender = "other" }},
		{"bad sexuality", func(in *RegisterInput) { in.Sexuality = "any" }},
		{"too many hobbies", func(in *RegisterInput) {
			in.Hobbies = []string{"a", "b", "c", "d", "e", "f"}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validRegisterInput()
			tc.mutate(&in)
			err := in.Validate()
			require.Error(t, err)
			apiErr, ok := err.(*apierrors.APIError)
			require.True(t, ok)
			assert.Equal(t, 400, apiErr.Status)
		})
	}
}

func TestRegisterNormalizesHobbiesAndUsername(t *testing.T) {
	in := validRegisterInput()
	in.Username = "  Moe.Moe_21 "
	require.NoError(t, in.Validate())
	assert.Equal(t, "moe.moe_21", in.Username)
	assert.Equal(t, []string{"reading", "music"}, in.Hobbies)
}

func TestRegisterCreatesPendingUser(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserFixture(t)

	user, token, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, user.Status)
	assert.NotEmpty(t, user.PublicID)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	stored, err := users.FindByPublicID(ctx, user.PublicID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestRegisterDuplicateUsernameConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserFixture(t)

	_, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	in := validRegisterInput()
	in.Contact = "0999999999"
	_, _, err = svc.Register(ctx, in)
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, 409, apiErr.Status)
}

func TestLoginDeniesPendingAndRejected(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserFixture(t)

	user, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "moe.moe_21", "supersecret")
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, "ACCOUNT_PENDING", apiErr.Code)

	require.NoError(t, users.SetStatus(ctx, user.PublicID, models.StatusRejected, "admin-1"))
	_, _, err = svc.Login(ctx, "moe.moe_21", "supersecret")
	require.Error(t, err)
	apiErr, ok = err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, "ACCOUNT_REJECTED", apiErr.Code)
}

func TestLoginApprovedUserGetsUserRoleToken(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserFixture(t)

	user, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	require.NoError(t, users.SetStatus(ctx, user.PublicID, models.StatusApproved, "admin-1"))

	token, loggedIn, err := svc.Login(ctx, "moe.moe_21", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, user.PublicID, loggedIn.PublicID)

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (any, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, user.PublicID, claims["userID"])
	assert.Equal(t, "user", claims["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserFixture(t)

	user, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	require.NoError(t, users.SetStatus(ctx, user.PublicID, models.StatusApproved, "admin-1"))

	_, _, err = svc.Login(ctx, "moe.moe_21", "wrong-password")
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.Status)
}

func TestGetUserServesFromCache(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserFixture(t)

	user, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	// warm the cache
	_, err = svc.GetUser(ctx, user.PublicID)
	require.NoError(t, err)

	// gone from the store, still served from cache
	delete(users.users, user.PublicID)
	cached, err := svc.GetUser(ctx, user.PublicID)
	require.NoError(t, err)
	assert.Equal(t, user.PublicID, cached.PublicID)
}

func TestNicknameChangeRateLimited(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserFixture(t)

	user, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	newNick := "Star"
	updated, err := svc.UpdateMe(ctx, user.PublicID, UpdateInput{Nickname: &newNick})
	require.NoError(t, err)
	assert.Equal(t, "Star", updated.Nickname)
	require.NotNil(t, updated.NicknameChangedAt)

	another := "Sky"
	_, err = svc.UpdateMe(ctx, user.PublicID, UpdateInput{Nickname: &another})
	require.Error(t, err)
	apiErr, ok := err.(*apierrors.APIError)
	require.True(t, ok)
	assert.Equal(t, "NICKNAME_RATE_LIMITED", apiErr.Code)

	// 31 days later the change goes through
	old := time.Now().Add(-31 * 24 * time.Hour)
	users.users[user.PublicID].NicknameChangedAt = &old
	updated, err = svc.UpdateMe(ctx, user.PublicID, UpdateInput{Nickname: &another})
	require.NoError(t, err)
	assert.Equal(t, "Sky", updated.Nickname)
}

func TestUpdateMeSameNicknameSkipsRateLimit(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserFixture(t)

	user, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	recent := time.Now().Add(-time.Hour)
	users.users[user.PublicID].NicknameChangedAt = &recent

	same := "Moon"
	bio := "updated bio"
	updated, err := svc.UpdateMe(ctx, user.PublicID, UpdateInput{Nickname: &same, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "updated bio", updated.Bio)
}

func TestUpdatePasswordReissuesToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserFixture(t)

	user, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)

	_, err = svc.UpdatePassword(ctx, user.PublicID, "wrong", "newpassword123")
	require.Error(t, err)

	token, err := svc.UpdatePassword(ctx, user.PublicID, "supersecret", "newpassword123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestDeleteSoftDeletes(t *testing.T) {
	ctx := context.Background()
	svc, users := newUserFixture(t)

	user, _, err := svc.Register(ctx, validRegisterInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, user.PublicID))

	stored, err := users.FindByPublicID(ctx, user.PublicID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, stored.Status)
	assert.False(t, stored.Active)
}
