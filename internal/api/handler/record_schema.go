package handler

import (
	"bytes"
	"encoding/json"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
)

// --- Customers ---

type createCustomerRequest struct {
	Name    string `json:"name"    validate:"required" example:"John Doe"`
	Email   string `json:"email"   validate:"required" example:"john@example.com"`
	Company string `json:"company" validate:"required" example:"Acme Corp"`
	Phone   string `json:"phone"   validate:"required" example:"555-0101"`
	Status  string `json:"status"  example:"prospect"`
}

type customerResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Status  string `json:"status"`
}

func (r createCustomerRequest) toInput() ports.CreateCustomerInput {
	return ports.CreateCustomerInput{
		Name:    r.Name,
		Email:   r.Email,
		Company: r.Company,
		Phone:   r.Phone,
		Status:  r.Status,
	}
}

func toCustomerResponse(c *domain.Customer) customerResponse {
	return customerResponse{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email,
		Company: c.Company,
		Phone:   c.Phone,
		Status:  c.Status,
	}
}

// --- Leads ---

// leadValue accepts a JSON number or a numeric string and keeps its text for
// the service to parse. Other JSON types are kept verbatim and fail parsing.
type leadValue string

func (v *leadValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = leadValue(s)
	default:
		*v = leadValue(data)
	}
	return nil
}

type createLeadRequest struct {
	Name    string    `json:"name"    validate:"required" example:"Alice Brown"`
	Email   string    `json:"email"   validate:"required" example:"alice@example.com"`
	Company string    `json:"company" validate:"required" example:"StartupXYZ"`
	Value   leadValue `json:"value"   validate:"required" swaggertype:"number" example:"50000"`
	Source  string    `json:"source"  validate:"required" example:"Website"`
}

type leadResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company string  `json:"company"`
	Value   float64 `json:"value"`
	Source  string  `json:"source"`
	Status  string  `json:"status"`
}

func (r createLeadRequest) toInput() ports.CreateLeadInput {
	return ports.CreateLeadInput{
		Name:    r.Name,
		Email:   r.Email,
		Company: r.Company,
		Value:   string(r.Value),
		Source:  r.Source,
	}
}

func toLeadResponse(l *domain.Lead) leadResponse {
	return leadResponse{
		ID:      l.ID,
		Name:    l.Name,
		Email:   l.Email,
		Company: l.Company,
		Value:   l.Value,
		Source:  l.Source,
		Status:  l.Status,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}
