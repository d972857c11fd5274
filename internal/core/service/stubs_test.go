package service

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
)

var discardLogger = zerolog.Nop()

var testHasher = plainHasher{}

// ---------------------------------------------------------------------------
// Hasher stub: fast and deterministic, good enough for service logic.
// ---------------------------------------------------------------------------

type plainHasher struct {
	hashErr error
}

func (h plainHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + password, nil
}

func (plainHasher) Verify(password, digest string) bool {
	return digest == "hashed:"+password
}

// ---------------------------------------------------------------------------
// In-memory user directory with unique username and email.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID      map[int64]*domain.User
	nextID    int64
	findErr   error
	createErr error
	// raceOnCreate simulates a concurrent insert winning the unique index.
	raceOnCreate *domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := r.byID[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if r.raceOnCreate != nil {
		r.insert(r.raceOnCreate)
		r.raceOnCreate = nil
	}
	for _, u := range r.byID {
		if u.Username == user.Username {
			return nil, &domain.DuplicateKeyError{Field: "username"}
		}
		if u.Email == user.Email {
			return nil, &domain.DuplicateKeyError{Field: "email"}
		}
	}
	return cloneUser(r.insert(user)), nil
}

func (r *stubUserRepo) insert(user *domain.User) *domain.User {
	r.nextID++
	c := cloneUser(user)
	c.ID = r.nextID
	r.byID[c.ID] = c
	return c
}

func (r *stubUserRepo) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) Count(context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

// ---------------------------------------------------------------------------
// In-memory session store
// ---------------------------------------------------------------------------

type stubSessionStore struct {
	sessions map[string]*ports.Session
	saveErr  error
	// afterGet runs once a Get has read its session, to interleave writes.
	afterGet func(id string)
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*ports.Session)}
}

func (s *stubSessionStore) Save(_ context.Context, sess *ports.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	c := *sess
	c.Flashes = append([]ports.Flash(nil), sess.Flashes...)
	s.sessions[sess.ID] = &c
	return nil
}

func (s *stubSessionStore) Update(ctx context.Context, sess *ports.Session) error {
	if _, ok := s.sessions[sess.ID]; !ok {
		return domain.ErrSessionNotFound
	}
	return s.Save(ctx, sess)
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*ports.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	c := *sess
	if s.afterGet != nil {
		s.afterGet(id)
	}
	return &c, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// ---------------------------------------------------------------------------
// In-memory record repositories
// ---------------------------------------------------------------------------

type stubCustomerRepo struct {
	byID      map[int64]*domain.Customer
	nextID    int64
	createErr error
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{byID: make(map[int64]*domain.Customer)}
}

func (r *stubCustomerRepo) Create(_ context.Context, f domain.CustomerFields) (*domain.Customer, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	c := &domain.Customer{ID: r.nextID, Name: f.Name, Email: f.Email, Company: f.Company, Phone: f.Phone, Status: f.Status}
	r.byID[c.ID] = c
	clone := *c
	return &clone, nil
}

func (r *stubCustomerRepo) List(context.Context) ([]*domain.Customer, error) {
	out := make([]*domain.Customer, 0, len(r.byID))
	for _, c := range r.byID {
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubCustomerRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCustomerRepo) Update(_ context.Context, id int64, f domain.CustomerFields) error {
	if c, ok := r.byID[id]; ok {
		c.Name, c.Email, c.Company, c.Phone, c.Status = f.Name, f.Email, f.Company, f.Phone, f.Status
	}
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, id int64) error {
	delete(r.byID, id)
	return nil
}

func (r *stubCustomerRepo) Count(context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

type stubLeadRepo struct {
	byID   map[int64]*domain.Lead
	nextID int64
}

func newStubLeadRepo() *stubLeadRepo {
	return &stubLeadRepo{byID: make(map[int64]*domain.Lead)}
}

func (r *stubLeadRepo) Create(_ context.Context, f domain.LeadFields) (*domain.Lead, error) {
	r.nextID++
	l := &domain.Lead{ID: r.nextID, Name: f.Name, Email: f.Email, Company: f.Company, Value: f.Value, Source: f.Source, Status: domain.DefaultLeadStatus}
	r.byID[l.ID] = l
	clone := *l
	return &clone, nil
}

func (r *stubLeadRepo) List(context.Context) ([]*domain.Lead, error) {
	out := make([]*domain.Lead, 0, len(r.byID))
	for _, l := range r.byID {
		clone := *l
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubLeadRepo) GetByID(_ context.Context, id int64) (*domain.Lead, error) {
	l, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrLeadNotFound
	}
	clone := *l
	return &clone, nil
}

func (r *stubLeadRepo) Delete(_ context.Context, id int64) error {
	delete(r.byID, id)
	return nil
}

func (r *stubLeadRepo) Count(context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

var errBoom = errors.New("db unavailable")
