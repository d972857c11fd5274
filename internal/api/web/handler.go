package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/crmdesk/crm-system/internal/api/middleware"
	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
)

const (
	msgFieldsRequired = "All fields are required!"
	msgDealValue      = "Deal value must be a non-negative number!"
)

var customerStatuses = []string{"prospect", "active", "inactive"}

// page is the view model every template receives.
type page struct {
	Title   string
	User    *domain.Identity
	IsAdmin bool
	Flashes []ports.Flash
	Data    any
}

type Handler struct {
	auth       ports.AuthService
	customers  ports.CustomerService
	leads      ports.LeadService
	sessions   *middleware.Sessions
	allowAdmin bool
	log        zerolog.Logger
}

type Options struct {
	// AllowAdminSelfRegistration shows the admin checkbox on the register form.
	AllowAdminSelfRegistration bool
}

func NewHandler(
	auth ports.AuthService,
	customers ports.CustomerService,
	leads ports.LeadService,
	sessions *middleware.Sessions,
	opts Options,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		auth:       auth,
		customers:  customers,
		leads:      leads,
		sessions:   sessions,
		allowAdmin: opts.AllowAdminSelfRegistration,
		log:        log,
	}
}

// render drains the pending flashes into the page. extra flashes belong to
// the current request and are shown after the queued ones.
func (h *Handler) render(c echo.Context, code int, name, title string, data any, extra ...ports.Flash) error {
	flashes, err := h.sessions.PopFlashes(c)
	if err != nil {
		h.log.Error().Err(err).Msg("pop flashes")
	}
	id := middleware.IdentityFrom(c)
	return c.Render(code, name, page{
		Title:   title,
		User:    id,
		IsAdmin: id != nil && id.IsAdmin(),
		Flashes: append(flashes, extra...),
		Data:    data,
	})
}

func (h *Handler) flashRedirect(c echo.Context, category, message, to string) error {
	if err := h.sessions.Flash(c, category, message); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, to)
}

func errorFlash(msg string) ports.Flash {
	return ports.Flash{Category: middleware.FlashError, Message: msg}
}

// localRedirect returns next when it is a path on this site, "/" otherwise.
func localRedirect(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return "/"
	}
	return next
}

func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.ErrNotFound
	}
	return id, nil
}

// --- Dashboard ---

func (h *Handler) Index(c echo.Context) error {
	if middleware.IdentityFrom(c) == nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	ctx := c.Request().Context()
	customers, err := h.customers.Count(ctx)
	if err != nil {
		return err
	}
	leads, err := h.leads.Count(ctx)
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "index", "Dashboard", map[string]int64{
		"TotalCustomers": customers,
		"TotalLeads":     leads,
	})
}

// --- Auth ---

type loginView struct {
	Username string
	Next     string
}

func (h *Handler) LoginForm(c echo.Context) error {
	if middleware.IdentityFrom(c) != nil {
		return c.Redirect(http.StatusFound, "/")
	}
	return h.render(c, http.StatusOK, "login", "Login", loginView{Next: c.QueryParam("next")})
}

func (h *Handler) Login(c echo.Context) error {
	if middleware.IdentityFrom(c) != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	username := strings.TrimSpace(c.FormValue("username"))
	next := c.QueryParam("next")
	sess, err := h.auth.Login(c.Request().Context(), username, c.FormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return h.render(c, http.StatusOK, "login", "Login",
				loginView{Username: username, Next: next},
				errorFlash(domain.ErrInvalidCredentials.Error()))
		}
		return err
	}

	if err := h.sessions.Begin(c, sess); err != nil {
		return err
	}
	return h.flashRedirect(c, middleware.FlashSuccess, fmt.Sprintf("Welcome back, %s!", sess.Username), localRedirect(next))
}

func (h *Handler) GuestLogin(c echo.Context) error {
	if middleware.IdentityFrom(c) != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	sess, err := h.auth.GuestLogin(c.Request().Context())
	if err != nil {
		return err
	}
	if err := h.sessions.Begin(c, sess); err != nil {
		return err
	}
	return h.flashRedirect(c, middleware.FlashSuccess, "You are now logged in as Guest.", "/")
}

func (h *Handler) Logout(c echo.Context) error {
	if err := h.sessions.End(c); err != nil {
		return err
	}
	return h.flashRedirect(c, middleware.FlashSuccess, "You have been logged out.", "/login")
}

type registerView struct {
	Username   string
	Email      string
	AllowAdmin bool
}

func (h *Handler) RegisterForm(c echo.Context) error {
	if middleware.IdentityFrom(c) != nil {
		return c.Redirect(http.StatusFound, "/")
	}
	return h.render(c, http.StatusOK, "register", "Register", registerView{AllowAdmin: h.allowAdmin})
}

func (h *Handler) Register(c echo.Context) error {
	if middleware.IdentityFrom(c) != nil {
		return c.Redirect(http.StatusFound, "/")
	}

	in := ports.RegisterInput{
		Username:        c.FormValue("username"),
		Email:           c.FormValue("email"),
		Password:        c.FormValue("password"),
		ConfirmPassword: c.FormValue("password2"),
		RequestAdmin:    c.FormValue("register_as_admin") != "",
	}
	view := registerView{Username: strings.TrimSpace(in.Username), Email: strings.TrimSpace(in.Email), AllowAdmin: h.allowAdmin}

	sess, err := h.auth.Register(c.Request().Context(), in)
	if err != nil {
		if msg, ok := registerMessage(err); ok {
			return h.render(c, http.StatusOK, "register", "Register", view, errorFlash(msg))
		}
		return err
	}

	if err := h.sessions.Begin(c, sess); err != nil {
		return err
	}
	return h.flashRedirect(c, middleware.FlashSuccess, "Registration successful. You are logged in.", "/")
}

func registerMessage(err error) (string, bool) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	var dup *domain.DuplicateKeyError
	if errors.As(err, &dup) {
		if dup.Field == "email" {
			return "Email already registered.", true
		}
		return "Username already taken.", true
	}
	return "", false
}

// --- Customers ---

type customerFormView struct {
	Action   string
	Customer domain.Customer
	Statuses []string
}

// statusOptions lists the selectable statuses, keeping a stored status that
// is not one of the usual ones so saving the form leaves it unchanged.
func statusOptions(current string) []string {
	if current == "" {
		return customerStatuses
	}
	for _, s := range customerStatuses {
		if s == current {
			return customerStatuses
		}
	}
	return append(append([]string(nil), customerStatuses...), current)
}

func customerInput(c echo.Context) ports.CreateCustomerInput {
	return ports.CreateCustomerInput{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Company: c.FormValue("company"),
		Phone:   c.FormValue("phone"),
		Status:  c.FormValue("status"),
	}
}

func (h *Handler) Customers(c echo.Context) error {
	customers, err := h.customers.List(c.Request().Context())
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "customers", "Customers", customers)
}

func (h *Handler) AddCustomerForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "customer_form", "Add customer", customerFormView{
		Action:   "/customers/add",
		Customer: domain.Customer{Status: domain.DefaultCustomerStatus},
		Statuses: customerStatuses,
	})
}

func (h *Handler) AddCustomer(c echo.Context) error {
	customer, err := h.customers.Create(c.Request().Context(), customerInput(c))
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return h.flashRedirect(c, middleware.FlashError, msgFieldsRequired, "/customers/add")
		}
		return err
	}
	return h.flashRedirect(c, middleware.FlashSuccess, fmt.Sprintf("Customer %s added successfully!", customer.Name), "/customers")
}

// loadCustomer resolves :id. A missing customer flashes and redirects to the
// list, in which case the returned customer is nil and err is the response.
func (h *Handler) loadCustomer(c echo.Context) (*domain.Customer, error) {
	id, err := paramID(c)
	if err != nil {
		return nil, err
	}
	customer, err := h.customers.Get(c.Request().Context(), id)
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, h.flashRedirect(c, middleware.FlashError, domain.ErrCustomerNotFound.Error(), "/customers")
	}
	return customer, err
}

func (h *Handler) CustomerDetail(c echo.Context) error {
	customer, err := h.loadCustomer(c)
	if customer == nil {
		return err
	}
	return h.render(c, http.StatusOK, "customer_detail", customer.Name, customer)
}

func (h *Handler) EditCustomerForm(c echo.Context) error {
	customer, err := h.loadCustomer(c)
	if customer == nil {
		return err
	}
	return h.render(c, http.StatusOK, "customer_form", "Edit customer", customerFormView{
		Action:   fmt.Sprintf("/customers/%d/edit", customer.ID),
		Customer: *customer,
		Statuses: statusOptions(customer.Status),
	})
}

func (h *Handler) EditCustomer(c echo.Context) error {
	customer, err := h.loadCustomer(c)
	if customer == nil {
		return err
	}

	if err := h.customers.Update(c.Request().Context(), customer.ID, customerInput(c)); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return h.flashRedirect(c, middleware.FlashError, msgFieldsRequired, fmt.Sprintf("/customers/%d/edit", customer.ID))
		}
		return err
	}
	return h.flashRedirect(c, middleware.FlashSuccess, "Customer updated successfully!", fmt.Sprintf("/customers/%d", customer.ID))
}

func (h *Handler) DeleteCustomer(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.customers.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return h.flashRedirect(c, middleware.FlashSuccess, "Customer deleted successfully!", "/customers")
}

// --- Leads ---

func (h *Handler) Leads(c echo.Context) error {
	leads, err := h.leads.List(c.Request().Context())
	if err != nil {
		return err
	}
	return h.render(c, http.StatusOK, "leads", "Leads", leads)
}

func (h *Handler) AddLeadForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "lead_form", "Add lead", nil)
}

func (h *Handler) AddLead(c echo.Context) error {
	lead, err := h.leads.Create(c.Request().Context(), ports.CreateLeadInput{
		Name:    c.FormValue("name"),
		Email:   c.FormValue("email"),
		Company: c.FormValue("company"),
		Value:   c.FormValue("value"),
		Source:  c.FormValue("source"),
	})
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			if ve.Field == "value" {
				return h.flashRedirect(c, middleware.FlashError, msgDealValue, "/leads")
			}
			return h.flashRedirect(c, middleware.FlashError, msgFieldsRequired, "/leads/add")
		}
		return err
	}
	return h.flashRedirect(c, middleware.FlashSuccess, fmt.Sprintf("Lead %s added successfully!", lead.Name), "/leads")
}

func (h *Handler) LeadDetail(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	lead, err := h.leads.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrLeadNotFound) {
			return h.flashRedirect(c, middleware.FlashError, domain.ErrLeadNotFound.Error(), "/leads")
		}
		return err
	}
	return h.render(c, http.StatusOK, "lead_detail", lead.Name, lead)
}

func (h *Handler) DeleteLead(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.leads.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return h.flashRedirect(c, middleware.FlashSuccess, "Lead deleted successfully!", "/leads")
}

// ErrorPage renders the 404 and 500 pages for the central error handler.
func (h *Handler) ErrorPage(c echo.Context, code int) error {
	name, title := "500", "Error"
	if code == http.StatusNotFound {
		name, title = "404", "Not found"
	}
	return h.render(c, code, name, title, nil)
}
