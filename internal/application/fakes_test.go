package application

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/masjid-api/internal/domain/entity"
	repo "github.com/oksasatya/masjid-api/internal/domain/repository"
)

// memUserRepo mirrors the Postgres repository: unique email and phone,
// version-guarded updates.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
	order []string

	staleAlways bool
	writes      int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if x.Email == u.Email || x.Phone == u.Phone {
			return repo.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.Version = 1
	u.CreatedAt, u.UpdatedAt = now, now
	cp := *u
	r.users[u.ID] = &cp
	r.order = append(r.order, u.ID)
	return nil
}

func (r *memUserRepo) GetByUniqueID(_ context.Context, uniqueID string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.UniqueID == uniqueID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.User, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.users[id])
	}
	return out, nil
}

func (r *memUserRepo) update(id string, version int64, apply func(u *entity.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	if r.staleAlways || u.Version != version {
		return repo.ErrStale
	}
	apply(u)
	u.Version++
	u.UpdatedAt = time.Now().UTC()
	r.writes++
	return nil
}

func (r *memUserRepo) SetOTP(_ context.Context, id string, version int64, otpHash string, expiresAt time.Time) error {
	return r.update(id, version, func(u *entity.User) {
		u.OTPHash = otpHash
		exp := expiresAt
		u.OTPExpiresAt = &exp
	})
}

func (r *memUserRepo) ResetPassword(_ context.Context, id string, version int64, passwordHash string) error {
	return r.update(id, version, func(u *entity.User) {
		u.PasswordHash = passwordHash
		u.OTPHash = ""
		u.OTPExpiresAt = nil
	})
}

func (r *memUserRepo) SetRole(_ context.Context, id string, version int64, role entity.Role) error {
	return r.update(id, version, func(u *entity.User) { u.Role = role })
}

func (r *memUserRepo) byEmail(email string) *entity.User {
	u, _ := r.GetByEmail(context.Background(), email)
	return u
}

type memSessions struct {
	mu         sync.Mutex
	sessions   map[string]*entity.Session
	destroyErr error
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]*entity.Session{}}
}

func (m *memSessions) Create(_ context.Context, u *entity.User) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &entity.Session{ID: uuid.NewString(), UserID: u.UniqueID, FullName: u.FullName, Email: u.Email, Phone: u.Phone, Role: u.Role}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *memSessions) Get(_ context.Context, sid string) (*entity.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sid]
	if !ok {
		return nil, errors.New("session not found")
	}
	return s, nil
}

func (m *memSessions) Destroy(_ context.Context, sid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyErr != nil {
		return m.destroyErr
	}
	delete(m.sessions, sid)
	return nil
}

func (m *memSessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type sentOTP struct {
	To, Name, Code string
	ExpiresAt      time.Time
}

type fakeNotifier struct {
	mu            sync.Mutex
	otps          []sentOTP
	confirmations []string
	otpErr        error
	confirmErr    error
}

func (n *fakeNotifier) SendPasswordResetOTP(_ context.Context, to, name, code string, expiresAt time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.otpErr != nil {
		return n.otpErr
	}
	n.otps = append(n.otps, sentOTP{To: to, Name: name, Code: code, ExpiresAt: expiresAt})
	return nil
}

func (n *fakeNotifier) SendPasswordResetConfirmation(_ context.Context, to, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.confirmErr != nil {
		return n.confirmErr
	}
	n.confirmations = append(n.confirmations, to)
	return nil
}

func (n *fakeNotifier) lastCode(to string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.otps) - 1; i >= 0; i-- {
		if n.otps[i].To == to {
			return n.otps[i].Code
		}
	}
	return ""
}

type publishedEvent struct {
	Event   string
	Payload any
	// Committed records whether the store already reflected the change
	// when the event was published.
	Committed bool
}

type fakePublisher struct {
	mu        sync.Mutex
	events    []publishedEvent
	err       error
	committed func(event string, payload any) bool
}

func (p *fakePublisher) Publish(_ context.Context, event string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev := publishedEvent{Event: event, Payload: payload}
	if p.committed != nil {
		ev.Committed = p.committed(event, payload)
	}
	p.events = append(p.events, ev)
	return p.err
}

type memCategoryRepo struct {
	mu   sync.Mutex
	byID map[string]*entity.Category
}

func newMemCategoryRepo() *memCategoryRepo {
	return &memCategoryRepo{byID: map[string]*entity.Category{}}
}

func (r *memCategoryRepo) List(_ context.Context) ([]entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Category{}
	for _, c := range r.byID {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memCategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.byID {
		if x.Name == c.Name {
			return repo.ErrDuplicate
		}
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	r.byID[c.ID] = &cp
	return nil
}

func (r *memCategoryRepo) Rename(_ context.Context, id, name string) (*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for _, x := range r.byID {
		if x.ID != id && x.Name == name {
			return nil, repo.ErrDuplicate
		}
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	cp := *c
	return &cp, nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memCategoryRepo) has(id, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	return ok && (name == "" || c.Name == name)
}

type memPrayerRepo struct {
	mu      sync.Mutex
	prayers []entity.Prayer
}

func (r *memPrayerRepo) List(_ context.Context) ([]entity.Prayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.Prayer{}, r.prayers...), nil
}

func (r *memPrayerRepo) ListByMonth(_ context.Context, month, year string) ([]entity.Prayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Prayer{}
	for _, p := range r.prayers {
		if p.Month == month && p.Year == year {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPrayerRepo) Create(_ context.Context, p *entity.Prayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.prayers {
		if x.Month == p.Month && x.Year == p.Year && x.Date == p.Date {
			return repo.ErrDuplicate
		}
	}
	p.ID = uuid.NewString()
	r.prayers = append(r.prayers, *p)
	return nil
}

func (r *memPrayerRepo) UpdateTimes(_ context.Context, month, year, date string, times entity.PrayerTimes) (*entity.Prayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.prayers {
		p := &r.prayers[i]
		if p.Month == month && p.Year == year && p.Date == date {
			p.UpdatedTimes = times
			cp := *p
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memPrayerRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.prayers {
		if p.ID == id {
			r.prayers = append(r.prayers[:i], r.prayers[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

type memDonorRepo struct {
	mu     sync.Mutex
	donors []entity.Donor
	err    error
}

func (r *memDonorRepo) Create(_ context.Context, d *entity.Donor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	d.ID = uuid.NewString()
	if d.Status == "" {
		d.Status = entity.DonorStatusPending
	}
	r.donors = append(r.donors, *d)
	return nil
}

func (r *memDonorRepo) List(_ context.Context, f repo.DonorFilter) ([]entity.Donor, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []entity.Donor
	for _, d := range r.donors {
		if f.Email != "" && d.Email != f.Email {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Category != "" && d.Category != f.Category {
			continue
		}
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		matched = append(matched, d)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].PaymentDate.After(matched[j].PaymentDate) })
	start := f.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return append([]entity.Donor{}, matched[start:end]...), len(matched), nil
}

type fakeGateway struct {
	req    ChargeRequest
	calls  int
	result *ChargeResult
	err    error
}

func (g *fakeGateway) Charge(_ context.Context, req ChargeRequest) (*ChargeResult, error) {
	g.calls++
	g.req = req
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type fakeIndex struct {
	mu   sync.Mutex
	docs map[string]any
	hits []map[string]any
	err  error
	last struct {
		query  string
		fields []string
		size   int
	}
}

func (f *fakeIndex) Put(_ context.Context, id string, doc any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.docs == nil {
		f.docs = map[string]any{}
	}
	f.docs[id] = doc
	return nil
}

func (f *fakeIndex) Search(_ context.Context, query string, fields []string, size int) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last.query, f.last.fields, f.last.size = query, fields, size
	return f.hits, f.err
}

type fakeUploader struct {
	path        string
	contentType string
	body        string
	err         error
}

func (u *fakeUploader) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	u.path, u.contentType, u.body = objectPath, contentType, string(b)
	return "https://storage.googleapis.com/bucket/" + objectPath, nil
}
