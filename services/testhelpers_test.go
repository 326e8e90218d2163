package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"campusmatch/cache"
	"campusmatch/models"
	"campusmatch/store"
)

// In-memory store fakes. They mirror the Mongo implementations' contract:
// sentinel errors, unique keys, copies rather than shared pointers.

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) Insert(ctx context.Context, u *models.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username || existing.Contact == u.Contact {
			return store.ErrDuplicate
		}
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.ID = uuid.New().String()
	cp := *u
	f.users[u.PublicID] = &cp
	return nil
}

func (f *fakeUserStore) FindByPublicID(ctx context.Context, publicID string) (*models.User, error) {
	u, ok := f.users[publicID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) FindByPublicIDs(ctx context.Context, publicIDs []string) ([]models.User, error) {
	var out []models.User
	for _, id := range publicIDs {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) FindApprovedCandidates(ctx context.Context, excludeIDs, genders []string) ([]models.User, error) {
	excluded := map[string]bool{}
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	allowed := map[string]bool{}
	for _, g := range genders {
		allowed[g] = true
	}
	var out []models.User
	for _, u := range f.users {
		if u.Status != models.StatusApproved || excluded[u.PublicID] || !allowed[u.Gender] {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) List(ctx context.Context, filter store.UserFilter) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		if filter.Batch != "" && u.Batch != filter.Batch {
			continue
		}
		if filter.Program != "" && u.Program != filter.Program {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) UpdateProfile(ctx context.Context, publicID string, upd models.ProfileUpdate) error {
	u, ok := f.users[publicID]
	if !ok {
		return store.ErrNotFound
	}
	if upd.Username != nil {
		for id, other := range f.users {
			if id != publicID && other.Username == *upd.Username {
				return store.ErrDuplicate
			}
		}
		u.Username = *upd.Username
	}
	if upd.Nickname != nil {
		u.Nickname = *upd.Nickname
	}
	if upd.NicknameChangedAt != nil {
		u.NicknameChangedAt = upd.NicknameChangedAt
	}
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Hobbies != nil {
		u.Hobbies = *upd.Hobbies
	}
	if upd.HeightFt != nil {
		u.HeightFt = *upd.HeightFt
	}
	if upd.HeightIn != nil {
		u.HeightIn = *upd.HeightIn
	}
	if upd.Zodiac != nil {
		u.Zodiac = *upd.Zodiac
	}
	if upd.MBTI != nil {
		u.MBTI = *upd.MBTI
	}
	if upd.Photos != nil {
		u.Photos = *upd.Photos
	}
	if upd.Contact != nil {
		u.Contact = *upd.Contact
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserStore) SetQuota(ctx context.Context, publicID string, action models.QuotaAction, count int, lastReset time.Time) error {
	u, ok := f.users[publicID]
	if !ok {
		return store.ErrNotFound
	}
	setCounter(u, action, count, lastReset)
	return nil
}

func (f *fakeUserStore) IncCrushCount(ctx context.Context, publicID string, delta int) error {
	u, ok := f.users[publicID]
	if !ok {
		return store.ErrNotFound
	}
	if delta < 0 && u.CrushCount <= 0 {
		return nil
	}
	u.CrushCount += delta
	return nil
}

func (f *fakeUserStore) SetShownProfiles(ctx context.Context, publicID string, shown []string) error {
	u, ok := f.users[publicID]
	if !ok {
		return store.ErrNotFound
	}
	u.ShownProfiles = append([]string{}, shown...)
	return nil
}

func (f *fakeUserStore) SetStatus(ctx context.Context, publicID, status, approvedBy string) error {
	u, ok := f.users[publicID]
	if !ok {
		return store.ErrNotFound
	}
	u.Status = status
	u.ApprovedBy = approvedBy
	u.StudentIDPhoto = nil
	return nil
}

func (f *fakeUserStore) SetPassword(ctx context.Context, publicID, hash string, changedAt time.Time) error {
	u, ok := f.users[publicID]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	return nil
}

func (f *fakeUserStore) SoftDelete(ctx context.Context, publicID string) error {
	u, ok := f.users[publicID]
	if !ok {
		return store.ErrNotFound
	}
	u.Status = models.StatusDeleted
	u.Active = false
	return nil
}

func (f *fakeUserStore) CountByStatus(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	for _, u := range f.users {
		out[u.Status]++
	}
	return out, nil
}

type fakeCrushStore struct {
	items []models.Crush
}

func (f *fakeCrushStore) key(user, target string) int {
	for i, c := range f.items {
		if c.User == user && c.Target == target {
			return i
		}
	}
	return -1
}

func (f *fakeCrushStore) Insert(ctx context.Context, c *models.Crush) error {
	if f.key(c.User, c.Target) >= 0 {
		return store.ErrDuplicate
	}
	c.ID = uuid.New().String()
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeCrushStore) Find(ctx context.Context, user, target string) (*models.Crush, error) {
	i := f.key(user, target)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	cp := f.items[i]
	return &cp, nil
}

func (f *fakeCrushStore) Delete(ctx context.Context, user, target string) error {
	i := f.key(user, target)
	if i < 0 {
		return store.ErrNotFound
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return nil
}

func (f *fakeCrushStore) ListByUser(ctx context.Context, user string) ([]models.Crush, error) {
	var out []models.Crush
	for _, c := range f.items {
		if c.User == user {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCrushStore) CountByTarget(ctx context.Context, target string) (int64, error) {
	var n int64
	for _, c := range f.items {
		if c.Target == target {
			n++
		}
	}
	return n, nil
}

func (f *fakeCrushStore) ListAll(ctx context.Context) ([]models.Crush, error) {
	return append([]models.Crush{}, f.items...), nil
}

func (f *fakeCrushStore) Count(ctx context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

// backdate rewrites a stored crush's creation time, for cooldown tests.
func (f *fakeCrushStore) backdate(user, target string, to time.Time) {
	if i := f.key(user, target); i >= 0 {
		f.items[i].CreatedAt = to
	}
}

type fakeDislikeStore struct {
	items []models.Dislike
}

func (f *fakeDislikeStore) key(user, target string) int {
	for i, d := range f.items {
		if d.User == user && d.Target == target {
			return i
		}
	}
	return -1
}

func (f *fakeDislikeStore) Insert(ctx context.Context, d *models.Dislike) error {
	if f.key(d.User, d.Target) >= 0 {
		return store.ErrDuplicate
	}
	d.ID = uuid.New().String()
	f.items = append(f.items, *d)
	return nil
}

func (f *fakeDislikeStore) Find(ctx context.Context, user, target string) (*models.Dislike, error) {
	i := f.key(user, target)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	cp := f.items[i]
	return &cp, nil
}

func (f *fakeDislikeStore) Delete(ctx context.Context, user, target string) error {
	i := f.key(user, target)
	if i < 0 {
		return store.ErrNotFound
	}
	f.items = append(f.items[:i], f.items[i+1:]...)
	return nil
}

func (f *fakeDislikeStore) ListTargets(ctx context.Context, user string) ([]string, error) {
	var out []string
	for _, d := range f.items {
		if d.User == user {
			out = append(out, d.Target)
		}
	}
	return out, nil
}

func (f *fakeDislikeStore) ListByUserSince(ctx context.Context, user string, since time.Time) ([]models.Dislike, error) {
	var out []models.Dislike
	for _, d := range f.items {
		if d.User == user && d.CreatedAt.After(since) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDislikeStore) backdate(user, target string, to time.Time) {
	if i := f.key(user, target); i >= 0 {
		f.items[i].CreatedAt = to
	}
}

type fakeProposeStore struct {
	items  []models.Propose
	nextID int
}

func (f *fakeProposeStore) Insert(ctx context.Context, p *models.Propose) error {
	for _, existing := range f.items {
		if existing.From == p.From && existing.To == p.To {
			return store.ErrDuplicate
		}
	}
	f.nextID++
	p.ID = fmt.Sprintf("propose-%d", f.nextID)
	f.items = append(f.items, *p)
	return nil
}

func (f *fakeProposeStore) FindByID(ctx context.Context, id string) (*models.Propose, error) {
	for _, p := range f.items {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeProposeStore) FindByPair(ctx context.Context, from, to string) (*models.Propose, error) {
	for _, p := range f.items {
		if p.From == from && p.To == to {
			cp := p
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeProposeStore) ExistsDenied(ctx context.Context, a, b string) (bool, error) {
	for _, p := range f.items {
		if p.Status != models.ProposeStatusDenied {
			continue
		}
		if (p.From == a && p.To == b) || (p.From == b && p.To == a) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProposeStore) UpdateStatusIfPending(ctx context.Context, id, newStatus string) (bool, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			if f.items[i].Status != models.ProposeStatusPending {
				return false, nil
			}
			f.items[i].Status = newStatus
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProposeStore) Delete(ctx context.Context, id string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeProposeStore) ListSent(ctx context.Context, from string, statuses []string) ([]models.Propose, error) {
	wanted := map[string]bool{}
	for _, s := range statuses {
		wanted[s] = true
	}
	var out []models.Propose
	for _, p := range f.items {
		if p.From == from && wanted[p.Status] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProposeStore) ListReceivedPending(ctx context.Context, to string) ([]models.Propose, error) {
	var out []models.Propose
	for _, p := range f.items {
		if p.To == to && p.Status == models.ProposeStatusPending {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProposeStore) ListAll(ctx context.Context) ([]models.Propose, error) {
	return append([]models.Propose{}, f.items...), nil
}

func (f *fakeProposeStore) Count(ctx context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

func (f *fakeProposeStore) backdate(id string, to time.Time) {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].CreatedAt = to
		}
	}
}

type fakeMatchStore struct {
	byPair map[string]*models.Match
}

func newFakeMatchStore() *fakeMatchStore {
	return &fakeMatchStore{byPair: map[string]*models.Match{}}
}

func (f *fakeMatchStore) CreateIfAbsent(ctx context.Context, a, b string) (*models.Match, bool, error) {
	key := models.PairKey(a, b)
	if existing, ok := f.byPair[key]; ok {
		cp := *existing
		return &cp, false, nil
	}
	lo, hi := models.SortPair(a, b)
	m := &models.Match{
		ID:        uuid.New().String(),
		PairKey:   key,
		Users:     []string{lo, hi},
		CreatedAt: time.Now(),
	}
	f.byPair[key] = m
	cp := *m
	return &cp, true, nil
}

func (f *fakeMatchStore) FindByPair(ctx context.Context, a, b string) (*models.Match, error) {
	m, ok := f.byPair[models.PairKey(a, b)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMatchStore) ListByUser(ctx context.Context, userID string) ([]models.Match, error) {
	var out []models.Match
	for _, m := range f.byPair {
		if m.HasUser(userID) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMatchStore) ListAll(ctx context.Context) ([]models.Match, error) {
	var out []models.Match
	for _, m := range f.byPair {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMatchStore) Count(ctx context.Context) (int64, error) {
	return int64(len(f.byPair)), nil
}

type fakeTempRegisterStore struct {
	sessions map[string]*models.TempRegistration
}

func newFakeTempRegisterStore() *fakeTempRegisterStore {
	return &fakeTempRegisterStore{sessions: map[string]*models.TempRegistration{}}
}

func (f *fakeTempRegisterStore) Insert(ctx context.Context, t *models.TempRegistration) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	f.sessions[t.RegistrationID] = &cp
	return nil
}

func (f *fakeTempRegisterStore) Find(ctx context.Context, registrationID string) (*models.TempRegistration, error) {
	s, ok := f.sessions[registrationID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *s
	cp.Data = map[string]any{}
	for k, v := range s.Data {
		cp.Data[k] = v
	}
	return &cp, nil
}

func (f *fakeTempRegisterStore) Save(ctx context.Context, t *models.TempRegistration) error {
	if _, ok := f.sessions[t.RegistrationID]; !ok {
		return store.ErrNotFound
	}
	t.UpdatedAt = time.Now()
	cp := *t
	f.sessions[t.RegistrationID] = &cp
	return nil
}

func (f *fakeTempRegisterStore) Delete(ctx context.Context, registrationID string) error {
	if _, ok := f.sessions[registrationID]; !ok {
		return store.ErrNotFound
	}
	delete(f.sessions, registrationID)
	return nil
}

// Shared test fixtures.

func newTestCache(t *testing.T) *cache.RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	return &cache.RedisCache{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
}

func approvedUser(id, gender, sexuality string) *models.User {
	return &models.User{
		PublicID:      id,
		Nickname:      "nick-" + id,
		DOB:           time.Date(2002, 5, 10, 0, 0, 0, 0, time.UTC),
		Gender:        gender,
		Sexuality:     sexuality,
		Username:      "user." + id,
		Contact:       "09" + id,
		PasswordHash:  "x",
		Status:        models.StatusApproved,
		Active:        true,
		ShownProfiles: []string{},
	}
}

func seedUsers(t *testing.T, users *fakeUserStore, us ...*models.User) {
	t.Helper()
	for _, u := range us {
		require.NoError(t, users.Insert(context.Background(), u))
	}
}

func utcTracker(users UserStore) *QuotaTracker {
	return NewQuotaTracker(users, time.UTC)
}
