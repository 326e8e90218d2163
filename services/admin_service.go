package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"campusmatch/cache"
	"campusmatch/models"
	"campusmatch/store"
	apierrors "campusmatch/utils/errors"
)

// AdminService covers the approval workflow: admin login, the pending
// queue, approve/reject decisions and aggregate stats.
type AdminService struct {
	admins    AdminStore
	users     UserStore
	crushes   CrushStore
	proposes  ProposeStore
	matches   MatchStore
	cache     *cache.RedisCache
	jwtSecret string
	jwtTTL    time.Duration
}

func NewAdminService(admins AdminStore, users UserStore, crushes CrushStore, proposes ProposeStore, matches MatchStore, rc *cache.RedisCache, jwtSecret string, jwtTTL time.Duration) *AdminService {
	return &AdminService{
		admins:    admins,
		users:     users,
		crushes:   crushes,
		proposes:  proposes,
		matches:   matches,
		cache:     rc,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

// Login authenticates an admin and returns a token with the admin role.
func (s *AdminService) Login(ctx context.Context, username, password string) (string, *models.Admin, error) {
	admin, err := s.admins.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return "", nil, apierrors.NewAPIError("INVALID_CREDENTIALS", "Incorrect username or password", http.StatusUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, apierrors.NewAPIError("INVALID_CREDENTIALS", "Incorrect username or password", http.StatusUnauthorized)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID":   admin.PublicID,
		"username": admin.Username,
		"role":     "admin",
		"exp":      time.Now().Add(s.jwtTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", nil, apierrors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}
	return tokenString, admin, nil
}

// PendingUser is the review view: profile plus the verification fields
// hidden from regular users, including the student ID photo.
type PendingUser struct {
	ID             string         `json:"id"`
	Nickname       string         `json:"nickname"`
	Name           string         `json:"name"`
	Program        string         `json:"program"`
	Batch          string         `json:"batch"`
	Contact        string         `json:"contact"`
	Gender         string         `json:"gender"`
	DOB            time.Time      `json:"dob"`
	Photos         []models.Photo `json:"photos"`
	StudentIDPhoto *models.Photo  `json:"student_id_photo,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// PendingUsers lists accounts awaiting review, oldest first.
func (s *AdminService) PendingUsers(ctx context.Context) ([]PendingUser, error) {
	users, err := s.users.List(ctx, store.UserFilter{Status: models.StatusPending})
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to list pending users", http.StatusInternalServerError)
	}
	out := make([]PendingUser, 0, len(users))
	for i := range users {
		u := &users[i]
		out = append(out, PendingUser{
			ID:             u.PublicID,
			Nickname:       u.Nickname,
			Name:           u.Name,
			Program:        u.Program,
			Batch:          u.Batch,
			Contact:        u.Contact,
			Gender:         u.Gender,
			DOB:            u.DOB,
			Photos:         u.Photos,
			StudentIDPhoto: u.StudentIDPhoto,
			CreatedAt:      u.CreatedAt,
		})
	}
	return out, nil
}

// Approve moves a pending user to approved. The transition is one-way and
// drops the student ID photo reference.
func (s *AdminService) Approve(ctx context.Context, adminID, userID string) error {
	return s.decide(ctx, adminID, userID, models.StatusApproved)
}

// Reject moves a pending user to rejected.
func (s *AdminService) Reject(ctx context.Context, adminID, userID string) error {
	return s.decide(ctx, adminID, userID, models.StatusRejected)
}

func (s *AdminService) decide(ctx context.Context, adminID, userID, status string) error {
	user, err := s.users.FindByPublicID(ctx, userID)
	if err != nil {
		return mapUserLookup(err)
	}
	if user.Status != models.StatusPending {
		return apierrors.NewAPIError("NOT_PENDING", "User is not pending approval", http.StatusBadRequest)
	}
	if err := s.users.SetStatus(ctx, userID, status, adminID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.ErrNotFound
		}
		return apierrors.Wrap(err, "DB_ERROR", "Failed to update user status", http.StatusInternalServerError)
	}
	_ = s.cache.Del(ctx, s.cache.KeyForUser(userID))
	return nil
}

// Stats aggregates platform counts for the admin dashboard.
type Stats struct {
	UsersByStatus map[string]int64 `json:"users_by_status"`
	Crushes       int64            `json:"crushes"`
	Proposes      int64            `json:"proposes"`
	Matches       int64            `json:"matches"`
}

func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	byStatus, err := s.users.CountByStatus(ctx)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to aggregate user stats", http.StatusInternalServerError)
	}
	crushes, err := s.crushes.Count(ctx)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to count crushes", http.StatusInternalServerError)
	}
	proposes, err := s.proposes.Count(ctx)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to count proposals", http.StatusInternalServerError)
	}
	matches, err := s.matches.Count(ctx)
	if err != nil {
		return nil, apierrors.Wrap(err, "DB_ERROR", "Failed to count matches", http.StatusInternalServerError)
	}
	return &Stats{
		UsersByStatus: byStatus,
		Crushes:       crushes,
		Proposes:      proposes,
		Matches:       matches,
	}, nil
}
