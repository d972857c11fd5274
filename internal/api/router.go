package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/crmdesk/crm-system/docs"
	"github.com/crmdesk/crm-system/internal/api/handler"
	"github.com/crmdesk/crm-system/internal/api/middleware"
	"github.com/crmdesk/crm-system/internal/api/web"
	"github.com/crmdesk/crm-system/internal/core/ports"
	"github.com/crmdesk/crm-system/pkg/logger"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Auth      ports.AuthService
	Flashes   ports.FlashService
	Customers ports.CustomerService
	Leads     ports.LeadService
	Health    []handler.Pinger

	Cookie                     middleware.SessionCookie
	AllowAdminSelfRegistration bool

	// Registerer and Gatherer back the HTTP metrics and /metrics. They
	// default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Renderer = renderer

	sessions := &middleware.Sessions{Auth: d.Auth, Flashes: d.Flashes, Cookie: d.Cookie}
	pages := web.NewHandler(d.Auth, d.Customers, d.Leads, sessions,
		web.Options{AllowAdminSelfRegistration: d.AllowAdminSelfRegistration}, d.Logger)
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger, pages)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(logger.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registerer,
	}))
	e.Use(middleware.Identify(d.Auth, d.Cookie, d.Logger))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(d.Health...)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- JSON API ---
	customerHandler := handler.NewCustomerHandler(d.Customers)
	leadHandler := handler.NewLeadHandler(d.Leads)
	authHandler := handler.NewAuthHandler(d.Auth)

	apiGroup := e.Group("/api")
	apiGroup.GET("/customers", customerHandler.List)
	apiGroup.POST("/customers", customerHandler.Create, middleware.RequireAdmin())
	apiGroup.GET("/leads", leadHandler.List)
	apiGroup.POST("/leads", leadHandler.Create, middleware.RequireAdmin())
	apiGroup.POST("/auth/token", authHandler.Token)
	apiGroup.GET("/me", authHandler.Me, middleware.RequireAuth())
	apiGroup.PUT("/me/password", authHandler.ChangePassword, middleware.RequireAuth())

	// --- Pages ---
	loginRequired := sessions.LoginRequired()
	adminRequired := sessions.AdminRequired()

	e.GET("/", pages.Index)
	e.GET("/login", pages.LoginForm)
	e.POST("/login", pages.Login)
	e.GET("/register", pages.RegisterForm)
	e.POST("/register", pages.Register)
	e.GET("/guest-login", pages.GuestLogin)
	e.GET("/logout", pages.Logout, loginRequired)
	e.POST("/logout", pages.Logout, loginRequired)

	e.GET("/customers", pages.Customers, loginRequired)
	e.GET("/customers/add", pages.AddCustomerForm, adminRequired)
	e.POST("/customers/add", pages.AddCustomer, adminRequired)
	e.GET("/customers/:id", pages.CustomerDetail, loginRequired)
	e.GET("/customers/:id/edit", pages.EditCustomerForm, adminRequired)
	e.POST("/customers/:id/edit", pages.EditCustomer, adminRequired)
	e.POST("/customers/:id/delete", pages.DeleteCustomer, adminRequired)

	e.GET("/leads", pages.Leads, loginRequired)
	e.GET("/leads/add", pages.AddLeadForm, adminRequired)
	e.POST("/leads/add", pages.AddLead, adminRequired)
	e.GET("/leads/:id", pages.LeadDetail, loginRequired)
	e.POST("/leads/:id/delete", pages.DeleteLead, adminRequired)

	return e, nil
}
