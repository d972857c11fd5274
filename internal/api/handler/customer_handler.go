package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crmdesk/crm-system/internal/core/domain"
	"github.com/crmdesk/crm-system/internal/core/ports"
)

const msgCustomerFieldsRequired = "name, email, company and phone are required."

// CustomerHandler serves the customer endpoints of the JSON API.
type CustomerHandler struct {
	service ports.CustomerService
}

func NewCustomerHandler(service ports.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// List handles GET /api/customers.
//
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Success      200  {array}   customerResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c echo.Context) error {
	customers, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]customerResponse, len(customers))
	for i, cu := range customers {
		resp[i] = toCustomerResponse(cu)
	}
	return c.JSON(http.StatusOK, resp)
}

// Create handles POST /api/customers.
//
// @Summary      Create a customer
// @Description  Requires an admin session or bearer token. Status defaults to "prospect".
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCustomerRequest  true  "Customer details"
// @Success      201   {object}  customerResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/customers [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	var req createCustomerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgCustomerFieldsRequired})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgCustomerFieldsRequired})
	}

	customer, err := h.service.Create(c.Request().Context(), req.toInput())
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Message})
		}
		return err
	}

	return c.JSON(http.StatusCreated, toCustomerResponse(customer))
}
