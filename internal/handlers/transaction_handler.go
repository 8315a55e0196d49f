package handlers

import (
	"context"
	"net/http"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/middleware"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/services"
)

type LoanService interface {
	CreateTransaction(ctx context.Context, actorID int64, in services.CreateTransactionInput) (*models.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	ListTransactions(ctx context.Context, status string, page int) (models.Page[models.Transaction], error)
	Extend(ctx context.Context, actorID, id int64, in services.ExtendInput) (*services.ExtendResult, error)
	Repay(ctx context.Context, actorID, id int64, in services.RepayInput) (*services.RepayResult, error)
}

type TransactionHandler struct {
	service LoanService
}

func NewTransactionHandler(service LoanService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

type extendResponse struct {
	Message string `json:"message"`
	*services.ExtendResult
}

type repayResponse struct {
	Message string `json:"message"`
	*services.RepayResult
}

// ListTransactions lists pawn transactions with their customer and items
// @Summary List transactions
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param status query string false "active, completed, overdue or auctioned"
// @Param page query int false "Page number"
// @Success 200 {object} models.Page[models.Transaction]
// @Failure 422 {object} services.ErrorResponse
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListTransactions(r.Context(), r.URL.Query().Get("status"), pageParam(r))
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CreateTransaction opens a pawn loan with its collateral items
// @Summary Create transaction
// @Description Creates the transaction and all items atomically. Interest and due date are computed server side.
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateTransactionInput true "Loan and collateral"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req services.CreateTransactionInput
	if !decodeJSON(w, r, &req) {
		return
	}

	tx, err := h.service.CreateTransaction(r.Context(), middleware.ActorFromContext(r.Context()), req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

// GetTransaction returns a transaction with customer, items and payments
// @Summary Get transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} services.ErrorResponse
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "transaction")
	if err != nil {
		services.WriteError(w, err)
		return
	}

	tx, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

// Extend records an extension payment and pushes the due date out
// @Summary Extend transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body services.ExtendInput true "Extension"
// @Success 200 {object} extendResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /transactions/{id}/extend [post]
func (h *TransactionHandler) Extend(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "transaction")
	if err != nil {
		services.WriteError(w, err)
		return
	}

	var req services.ExtendInput
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Extend(r.Context(), middleware.ActorFromContext(r.Context()), id, req)
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, extendResponse{Message: "Transaction extended successfully", ExtendResult: result})
}

// Repay records a redemption or an interest-only payment
// @Summary Repay transaction
// @Description type defaults to full_redemption, which completes the transaction.
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transaction ID"
// @Param request body services.RepayInput true "Repayment"
// @Success 200 {object} repayResponse
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /transactions/{id}/repay [post]
func (h *TransactionHandler) Repay(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "transaction")
	if err != nil {
		services.WriteError(w, err)
		return
	}

	var req services.RepayInput
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Repay(r.Context(), middleware.ActorFromContext(r.Context()), id, req)
	if err != nil {
		services.WriteError(w, err)
		return
	}

	message := "Transaction repaid successfully"
	if result.Payment != nil && result.Payment.PaymentType == models.PaymentInterestOnly {
		message = "Interest payment recorded"
	}
	writeJSON(w, http.StatusOK, repayResponse{Message: message, RepayResult: result})
}
