package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"campusmatch/cache"
	"campusmatch/logger"
	"campusmatch/models"
	"campusmatch/store"
	apierrors "campusmatch/utils/errors"
)

// nicknameChangeInterval limits how often the display name may change.
const nicknameChangeInterval = 30 * 24 * time.Hour

var usernameRe = regexp.MustCompile(`^[a-z0-9._]+$`)

// UserService handles registration, authentication and profile management.
type UserService struct {
	users     UserStore
	cache     *cache.RedisCache
	jwtSecret string
	jwtTTL    time.Duration
}

func NewUserService(users UserStore, rc *cache.RedisCache, jwtSecret string, jwtTTL time.Duration) *UserService {
	return &UserService{users: users, cache: rc, jwtSecret: jwtSecret, jwtTTL: jwtTTL}
}

// RegisterInput is the full signup payload.
type RegisterInput struct {
	Nickname  string         `json:"nickname"`
	DOB       time.Time      `json:"dob"`
	Gender    string         `json:"gender"`
	Sexuality string         `json:"sexuality"`
	Bio       string         `json:"bio"`
	Hobbies   []string       `json:"hobbies"`
	HeightFt  int            `json:"height_ft"`
	HeightIn  int            `json:"height_in"`
	Zodiac    string         `json:"zodiac"`
	MBTI      string         `json:"mbti"`
	Name      string         `json:"name"`
	Program   string         `json:"program"`
	Batch     string         `json:"batch"`
	Contact   string         `json:"contact"`
	Photos    []models.Photo `json:"photos"`
	StudentID *models.Photo  `json:"student_id_photo"`
	Username  string         `json:"username"`
	Password  string         `json:"password"`
}

// Validate checks the payload and normalizes username and hobbies in place.
func (in *RegisterInput) Validate() error {
	bad := func(msg string) error {
		return apierrors.NewAPIError("INVALID_INPUT", msg, http.StatusBadRequest)
	}
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Nickname = strings.TrimSpace(in.Nickname)

	switch {
	case in.Nickname == "":
		return bad("Please enter your nickname")
	case len(in.Nickname) > 40:
		return bad("Your nickname cannot be more than 40 characters")
	case in.DOB.IsZero():
		return bad("Please enter your date of birth")
	case in.Name == "":
		return bad("Please enter your full name")
	case in.Program == "":
		return bad("Please enter your program")
	case in.Batch == "":
		return bad("Please enter your batch")
	case in.Contact == "":
		return bad("Please enter your contact number")
	case in.StudentID == nil:
		return bad("Please upload your student ID photo")
	case len(in.Username) < 3 || len(in.Username) > 30:
		return bad("Username should be between 3 and 30 characters")
	case !usernameRe.MatchString(in.Username):
		return bad("Username may contain lowercase letters, numbers, dot and underscore only")
	case len(in.Password) < 8:
		return bad("Password should be at least 8 characters long")
	case len(in.Bio) > 500:
		return bad("Your bio cannot be longer than 500 characters")
	case len(in.Photos) < 3 || len(in.Photos) > 5:
		return bad("Please upload between 3 and 5 photos")
	}

	switch in.Gender {
	case models.GenderMale, models.GenderFemale, models.GenderLGBT:
	default:
		return bad("That gender option is not available")
	}
	switch in.Sexuality {
	case models.SexualityMale, models.SexualityFemale, models.SexualityBoth:
	default:
		return bad("That sexuality option is not available")
	}

	in.Hobbies = normalizeHobbies(in.Hobbies)
	if len(in.Hobbies) > 5 {
		return bad("Hobbies cannot be more than 5")
	}
	return nil
}

// normalizeHobbies lowercases, trims and dedupes while keeping order.
func normalizeHobbies(hobbies []string) []string {
	seen := make(map[string]bool, len(hobbies))
	out := make([]string, 0, len(hobbies))
	for _, h := range hobbies {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	return out
}

// Create validates the payload and inserts a new pending user.
func (s *UserService) Create(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierrors.Wrap(err, "HASH_ERROR", "Failed to hash password", http.StatusInternalServerError)
	}

	user := &models.User{
		PublicID:       uuid.New().String(),
		Nickname:       in.Nickname,
		DOB:            in.DOB,
		Gender:         in.Gender,
		Sexuality:      in.Sexuality,
		Bio:            in.Bio,
		Hobbies:        in.Hobbies,
		HeightFt:       in.HeightFt,
		HeightIn:       in.HeightIn,
		Zodiac:         in.Zodiac,
		MBTI:           in.MBTI,
		Name:           in.Name,
		Program:        in.Program,
		Batch:          in.Batch,
		Contact:        in.Contact,
		Photos:         in.Photos,
		StudentIDPhoto: in.StudentID,
		Username:       in.Username,
		PasswordHash:   string(hash),
		Status:         models.StatusPending,
		Active:         true,
		ShownProfiles:  []string{},
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apierrors.NewAPIError("CONFLICT", "Username or contact number already taken", http.StatusConflict)
		}
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to create user", http.StatusInternalServerError)
	}
	return user, nil
}

// Register creates the user and issues a token right away so the client can
// poll approval status without logging in again.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	user, err := s.Create(ctx, in)
	if err != nil {
		return nil, "", err
	}
	token, err := s.signToken(user.PublicID, user.Username, "user")
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates a user and returns a JWT. Pending and rejected
// accounts are told so explicitly.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return "", nil, apierrors.NewAPIError("INVALID_CREDENTIALS", "Incorrect username or password", http.StatusUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apierrors.NewAPIError("INVALID_CREDENTIALS", "Incorrect username or password", http.StatusUnauthorized)
	}

	switch user.Status {
	case models.StatusPending:
		return "", nil, apierrors.NewAPIError("ACCOUNT_PENDING", "Your account is pending approval by admin", http.StatusForbidden)
	case models.StatusRejected:
		return "", nil, apierrors.NewAPIError("ACCOUNT_REJECTED", "Your account has been rejected by admin", http.StatusForbidden)
	case models.StatusDeleted:
		return "", nil, apierrors.ErrUnauthorized
	}

	token, err := s.signToken(user.PublicID, user.Username, "user")
	if err != nil {
		return "", nil, err
	}

	s.cacheUser(ctx, user)
	return token, user, nil
}

// GetUser retrieves a user, serving cached copies when available.
func (s *UserService) GetUser(ctx context.Context, publicID string) (*models.User, error) {
	if userJSON, err := s.cache.Get(ctx, s.cache.KeyForUser(publicID)); err == nil && userJSON != "" {
		var u models.User
		if err := json.Unmarshal([]byte(userJSON), &u); err == nil {
			return &u, nil
		}
		logger.Warn("failed to unmarshal cached user", "user", publicID)
	}

	user, err := s.users.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.ErrNotFound
		}
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to load user", http.StatusInternalServerError)
	}
	s.cacheUser(ctx, user)
	return user, nil
}

// GetMe always reads the store so callers see their own fresh state,
// quota counters included.
func (s *UserService) GetMe(ctx context.Context, publicID string) (*models.User, error) {
	user, err := s.users.FindByPublicID(ctx, publicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.ErrNotFound
		}
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to load user", http.StatusInternalServerError)
	}
	return user, nil
}

// UpdateInput carries the self-editable profile fields. Nil means
// "leave unchanged".
type UpdateInput struct {
	Username *string         `json:"username"`
	Nickname *string         `json:"nickname"`
	Bio      *string         `json:"bio"`
	Hobbies  *[]string       `json:"hobbies"`
	HeightFt *int            `json:"height_ft"`
	HeightIn *int            `json:"height_in"`
	Zodiac   *string         `json:"zodiac"`
	MBTI     *string         `json:"mbti"`
	Photos   *[]models.Photo `json:"photos"`
	Contact  *string         `json:"contact"`
}

// UpdateMe applies an allow-listed partial profile update. Nickname changes
// are limited to one per 30 days.
func (s *UserService) UpdateMe(ctx context.Context, publicID string, in UpdateInput) (*models.User, error) {
	current, err := s.GetMe(ctx, publicID)
	if err != nil {
		return nil, err
	}

	upd := models.ProfileUpdate{
		Username: in.Username,
		Bio:      in.Bio,
		HeightFt: in.HeightFt,
		HeightIn: in.HeightIn,
		Zodiac:   in.Zodiac,
		MBTI:     in.MBTI,
		Photos:   in.Photos,
		Contact:  in.Contact,
	}
	if in.Username != nil {
		lowered := strings.ToLower(strings.TrimSpace(*in.Username))
		if len(lowered) < 3 || len(lowered) > 30 || !usernameRe.MatchString(lowered) {
			return nil, apierrors.NewAPIError("INVALID_INPUT", "Username should be between 3 and 30 characters", http.StatusBadRequest)
		}
		upd.Username = &lowered
	}
	if in.Bio != nil && len(*in.Bio) > 500 {
		return nil, apierrors.NewAPIError("INVALID_INPUT", "Your bio cannot be longer than 500 characters", http.StatusBadRequest)
	}
	if in.Photos != nil && (len(*in.Photos) < 3 || len(*in.Photos) > 5) {
		return nil, apierrors.NewAPIError("INVALID_INPUT", "Please upload between 3 and 5 photos", http.StatusBadRequest)
	}
	if in.Hobbies != nil {
		normalized := normalizeHobbies(*in.Hobbies)
		if len(normalized) > 5 {
			return nil, apierrors.NewAPIError("INVALID_INPUT", "Hobbies cannot be more than 5", http.StatusBadRequest)
		}
		upd.Hobbies = &normalized
	}

	if in.Nickname != nil && *in.Nickname != current.Nickname {
		if len(*in.Nickname) > 40 {
			return nil, apierrors.NewAPIError("INVALID_INPUT", "Your nickname cannot be more than 40 characters", http.StatusBadRequest)
		}
		if current.NicknameChangedAt != nil && time.Since(*current.NicknameChangedAt) < nicknameChangeInterval {
			nextAllowed := current.NicknameChangedAt.Add(nicknameChangeInterval)
			return nil, apierrors.NewAPIError(
				"NICKNAME_RATE_LIMITED",
				fmt.Sprintf("Nickname can only be changed once every 30 days. Next change allowed at %s", nextAllowed.Format(time.RFC3339)),
				http.StatusForbidden,
			)
		}
		now := time.Now()
		upd.Nickname = in.Nickname
		upd.NicknameChangedAt = &now
	}

	if err := s.users.UpdateProfile(ctx, publicID, upd); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apierrors.ErrNotFound
		}
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apierrors.NewAPIError("CONFLICT", "Username or contact number already taken", http.StatusConflict)
		}
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to update user", http.StatusInternalServerError)
	}

	s.invalidate(ctx, publicID)
	return s.GetMe(ctx, publicID)
}

// UpdatePassword verifies the current password, stores the new hash and
// re-issues a token.
func (s *UserService) UpdatePassword(ctx context.Context, publicID, currentPassword, newPassword string) (string, error) {
	user, err := s.GetMe(ctx, publicID)
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return "", apierrors.NewAPIError("INVALID_CREDENTIALS", "Incorrect current password", http.StatusUnauthorized)
	}
	if len(newPassword) < 8 {
		return "", apierrors.NewAPIError("INVALID_INPUT", "Password should be at least 8 characters long", http.StatusBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", apierrors.Wrap(err, "HASH_ERROR", "Failed to hash password", http.StatusInternalServerError)
	}
	// backdate a second so the token signed below is not rejected as
	// issued-before-change
	changedAt := time.Now().Add(-time.Second)
	if err := s.users.SetPassword(ctx, publicID, string(hash), changedAt); err != nil {
		return "", apierrors.Wrap(err, "DB_ERROR", "Failed to update password", http.StatusInternalServerError)
	}

	s.invalidate(ctx, publicID)
	return s.signToken(user.PublicID, user.Username, "user")
}

// Delete soft-deletes the account.
func (s *UserService) Delete(ctx context.Context, publicID string) error {
	if err := s.users.SoftDelete(ctx, publicID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.ErrNotFound
		}
		return apierrors.Wrap(err, "DB_ERROR", "Failed to delete user", http.StatusInternalServerError)
	}
	s.invalidate(ctx, publicID)
	return nil
}

// List returns users matching the given admin filter.
func (s *UserService) List(ctx context.Context, f store.UserFilter) ([]models.User, error) {
	users, err := s.users.List(ctx, f)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to list users", http.StatusInternalServerError)
	}
	return users, nil
}

func (s *UserService) signToken(publicID, username, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID":   publicID,
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(s.jwtTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", apierrors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}
	return tokenString, nil
}

func (s *UserService) cacheUser(ctx context.Context, user *models.User) {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.KeyForUser(user.PublicID), userJSON, 24*time.Hour); err != nil {
		logger.Warn("failed to cache user", "user", user.PublicID, "err", err)
	}
}

func (s *UserService) invalidate(ctx context.Context, publicID string) {
	if err := s.cache.Del(ctx, s.cache.KeyForUser(publicID)); err != nil {
		logger.Warn("failed to invalidate user cache", "user", publicID, "err", err)
	}
}
