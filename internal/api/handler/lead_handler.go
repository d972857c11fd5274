package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
)

const msgLeadFieldsRequired = "name, email, company, value and source are required."

// LeadHandler serves the lead endpoints of the JSON API.
type LeadHandler struct {
	service ports.LeadService
}

func NewLeadHandler(service ports.LeadService) *LeadHandler {
	return &LeadHandler{service: service}
}

// List handles GET /api/leads.
//
// @Summary      List leads
// @Tags         leads
// @Produce      json
// @Success      200  {array}   leadResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/leads [get]
func (h *LeadHandler) List(c echo.Context) error {
	leads, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]leadResponse, len(leads))
	for i, l := range leads {
		resp[i] = toLeadResponse(l)
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /api/leads.
//
// @Summary      Create a lead
// @Description  Requires an admin session or bearer token. Value may be a number or a numeric string.
// @Tags         leads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createLeadRequest  true  "Lead details"
// @Success      201   {object}  leadResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/leads [post]
func (h *LeadHandler) Create(c echo.Context) error {
	var req createLeadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgLeadFieldsRequired})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgLeadFieldsRequired})
	}

	lead, err := h.service.Create(c.Request().Context(), req.toInput())
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Message})
		}
		return err
	}

	return c.JSON(http.StatusCreated, toLeadResponse(lead))
}
