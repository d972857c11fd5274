package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/crmdesk/crm-system/internal/api/middleware"
	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
	"github.com/crmdesk/crm-system/internal/core/service"
)

var errBoom = errors.New("boom")

// memCustomerRepo is an in-memory ports.CustomerRepository.
type memCustomerRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{rows: map[int64]domain.Customer{}}
}

func (r *memCustomerRepo) Create(_ context.Context, f domain.CustomerFields) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	c := domain.Customer{ID: r.nextID, Name: f.Name, Email: f.Email, Company: f.Company, Phone: f.Phone, Status: f.Status}
	r.rows[c.ID] = c
	return &c, nil
}

func (r *memCustomerRepo) List(context.Context) ([]*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Customer, 0, len(r.rows))
	for _, c := range r.rows {
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memCustomerRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return &c, nil
}

func (r *memCustomerRepo) Update(_ context.Context, id int64, f domain.CustomerFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; ok {
		r.rows[id] = domain.Customer{ID: id, Name: f.Name, Email: f.Email, Company: f.Company, Phone: f.Phone, Status: f.Status}
	}
	return nil
}

func (r *memCustomerRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memCustomerRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

// memLeadRepo is an in-memory ports.LeadRepository.
type memLeadRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]domain.Lead
	err    error
}

func newMemLeadRepo() *memLeadRepo {
	return &memLeadRepo{rows: map[int64]domain.Lead{}}
}

func (r *memLeadRepo) Create(_ context.Context, f domain.LeadFields) (*domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	r.nextID++
	l := domain.Lead{ID: r.nextID, Name: f.Name, Email: f.Email, Company: f.Company, Value: f.Value, Source: f.Source, Status: domain.DefaultLeadStatus}
	r.rows[l.ID] = l
	return &l, nil
}

func (r *memLeadRepo) List(context.Context) ([]*domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.Lead, 0, len(r.rows))
	for _, l := range r.rows {
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memLeadRepo) GetByID(_ context.Context, id int64) (*domain.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrLeadNotFound
	}
	return &l, nil
}

func (r *memLeadRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memLeadRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rows)), nil
}

func newCustomerService(repo ports.CustomerRepository) ports.CustomerService {
	return service.NewCustomerService(repo, zerolog.Nop())
}

func newLeadService(repo ports.LeadRepository) ports.LeadService {
	return service.NewLeadService(repo, zerolog.Nop())
}

// stubAuthService implements ports.AuthService with overridable hooks.
type stubAuthService struct {
	authenticateFn   func(ctx context.Context, username, password string) (*domain.User, error)
	changePasswordFn func(ctx context.Context, userID int64, current, next string) error
}

func (s *stubAuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	return s.authenticateFn(ctx, username, password)
}
func (s *stubAuthService) Login(context.Context, string, string) (*ports.Session, error) {
	return nil, errBoom
}
func (s *stubAuthService) GuestLogin(context.Context) (*ports.Session, error) { return nil, errBoom }
func (s *stubAuthService) Register(context.Context, ports.RegisterInput) (*ports.Session, error) {
	return nil, errBoom
}
func (s *stubAuthService) Logout(context.Context, string) error { return nil }
func (s *stubAuthService) Resolve(context.Context, string) (*ports.Session, error) {
	return nil, domain.ErrSessionNotFound
}
func (s *stubAuthService) SetPassword(context.Context, int64, string) error { return nil }
func (s *stubAuthService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	return s.changePasswordFn(ctx, userID, current, next)
}
func (s *stubAuthService) IssueToken(u *domain.User) (string, error) {
	return "token-for-" + u.Username, nil
}
func (s *stubAuthService) ParseToken(string) (*domain.Identity, error) {
	return nil, domain.ErrUnauthenticated
}

// withIdentity is a test middleware that plays the role of Identify.
func withIdentity(id *domain.Identity) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id != nil {
				c.Set("identity", id)
			}
			return next(c)
		}
	}
}

var (
	adminIdentity = &domain.Identity{UserID: 1, Username: "admin", Role: domain.RoleAdmin}
	userIdentity  = &domain.Identity{UserID: 2, Username: "user", Role: domain.RoleUser}
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// apiRoutes mounts the record endpoints the way the router does.
func apiRoutes(e *echo.Echo, id *domain.Identity, customers ports.CustomerService, leads ports.LeadService) {
	api := e.Group("/api", withIdentity(id))
	ch := NewCustomerHandler(customers)
	lh := NewLeadHandler(leads)
	api.GET("/customers", ch.List)
	api.POST("/customers", ch.Create, middleware.RequireAdmin())
	api.GET("/leads", lh.List)
	api.POST("/leads", lh.Create, middleware.RequireAdmin())
}
