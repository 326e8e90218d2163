package services

import (
	"context"
	"time"

	"campusmatch/models"
	"campusmatch/store"
)

// Narrow store interfaces consumed by the services. The Mongo
// implementations live in the store package; tests substitute in-memory
// fakes. All implementations return store.ErrNotFound / store.ErrDuplicate
// sentinels.

type UserStore interface {
	Insert(ctx context.Context, u *models.User) error
	FindByPublicID(ctx context.Context, publicID string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByPublicIDs(ctx context.Context, publicIDs []string) ([]models.User, error)
	FindApprovedCandidates(ctx context.Context, excludeIDs, genders []string) ([]models.User, error)
	List(ctx context.Context, f store.UserFilter) ([]models.User, error)
	UpdateProfile(ctx context.Context, publicID string, upd models.ProfileUpdate) error
	SetQuota(ctx context.Context, publicID string, action models.QuotaAction, count int, lastReset time.Time) error
	IncCrushCount(ctx context.Context, publicID string, delta int) error
	SetShownProfiles(ctx context.Context, publicID string, shown []string) error
	SetStatus(ctx context.Context, publicID, status, approvedBy string) error
	SetPassword(ctx context.Context, publicID, hash string, changedAt time.Time) error
	SoftDelete(ctx context.Context, publicID string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type CrushStore interface {
	Insert(ctx context.Context, c *models.Crush) error
	Find(ctx context.Context, user, target string) (*models.Crush, error)
	Delete(ctx context.Context, user, target string) error
	ListByUser(ctx context.Context, user string) ([]models.Crush, error)
	CountByTarget(ctx context.Context, target string) (int64, error)
	ListAll(ctx context.Context) ([]models.Crush, error)
	Count(ctx context.Context) (int64, error)
}

type DislikeStore interface {
	Insert(ctx context.Context, d *models.Dislike) error
	Find(ctx context.Context, user, target string) (*models.Dislike, error)
	Delete(ctx context.Context, user, target string) error
	ListTargets(ctx context.Context, user string) ([]string, error)
	ListByUserSince(ctx context.Context, user string, since time.Time) ([]models.Dislike, error)
}

type ProposeStore interface {
	Insert(ctx context.Context, p *models.Propose) error
	FindByID(ctx context.Context, id string) (*models.Propose, error)
	FindByPair(ctx context.Context, from, to string) (*models.Propose, error)
	ExistsDenied(ctx context.Context, a, b string) (bool, error)
	UpdateStatusIfPending(ctx context.Context, id, newStatus string) (bool, error)
	Delete(ctx context.Context, id string) error
	ListSent(ctx context.Context, from string, statuses []string) ([]models.Propose, error)
	ListReceivedPending(ctx context.Context, to string) ([]models.Propose, error)
	ListAll(ctx context.Context) ([]models.Propose, error)
	Count(ctx context.Context) (int64, error)
}

type MatchStore interface {
	CreateIfAbsent(ctx context.Context, a, b string) (*models.Match, bool, error)
	FindByPair(ctx context.Context, a, b string) (*models.Match, error)
	ListByUser(ctx context.Context, userID string) ([]models.Match, error)
	ListAll(ctx context.Context) ([]models.Match, error)
	Count(ctx context.Context) (int64, error)
}

type AdminStore interface {
	Insert(ctx context.Context, a *models.Admin) error
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	FindByPublicID(ctx context.Context, publicID string) (*models.Admin, error)
}

type TempRegisterStore interface {
	Insert(ctx context.Context, t *models.TempRegistration) error
	Find(ctx context.Context, registrationID string) (*models.TempRegistration, error)
	Save(ctx context.Context, t *models.TempRegistration) error
	Delete(ctx context.Context, registrationID string) error
}

var (
	_ UserStore         = (*store.UserStore)(nil)
	_ CrushStore        = (*store.CrushStore)(nil)
	_ DislikeStore      = (*store.DislikeStore)(nil)
	_ ProposeStore      = (*store.ProposeStore)(nil)
	_ MatchStore        = (*store.MatchStore)(nil)
	_ AdminStore        = (*store.AdminStore)(nil)
	_ TempRegisterStore = (*store.TempRegisterStore)(nil)
)
