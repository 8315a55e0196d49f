package handlers

import (
	"context"
	"net/http"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/services"
)

type CustomerService interface {
	ListCustomers(ctx context.Context, search string, page int) (models.Page[models.Customer], error)
	CreateCustomer(ctx context.Context, in services.CreateCustomerInput) (*models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
	UpdateCustomer(ctx context.Context, id int64, in services.UpdateCustomerInput) (*models.Customer, error)
}

type CustomerHandler struct {
	service CustomerService
}

func NewCustomerHandler(service CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// ListCustomers lists customers, newest first
// @Summary List customers
// @Description Search customers by name, NIK or phone, 10 per page
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring of name, NIK or phone"
// @Param page query int false "Page number"
// @Success 200 {object} models.Page[models.Customer]
// @Failure 401 {object} services.ErrorResponse
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListCustomers(r.Context(), r.URL.Query().Get("search"), pageParam(r))
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateCustomer registers a borrower
// @Summary Create customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateCustomerInput true "Customer"
// @Success 201 {object} models.Customer
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req services.CreateCustomerInput
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.service.CreateCustomer(r.Context(), req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

// GetCustomer returns a customer with their transactions
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} models.Customer
// @Failure 404 {object} services.ErrorResponse
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "customer")
	if err != nil {
		services.WriteError(w, err)
		return
	}

	customer, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

// UpdateCustomer applies a partial update
// @Summary Update customer
// @Description Only the fields present in the body are changed. NIK cannot be changed.
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param request body services.UpdateCustomerInput true "Fields to change"
// @Success 200 {object} models.Customer
// @Failure 404 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "customer")
	if err != nil {
		services.WriteError(w, err)
		return
	}

	var req services.UpdateCustomerInput
	if !decodeJSON(w, r, &req) {
		return
	}

	customer, err := h.service.UpdateCustomer(r.Context(), id, req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}
