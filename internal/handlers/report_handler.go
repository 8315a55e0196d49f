package handlers

import (
	"context"
	"net/http"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/services"
)

type ReportService interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
	ListInventory(ctx context.Context, page int) (models.Page[models.InventoryItem], error)
}

type ReportHandler struct {
	service ReportService
}

func NewReportHandler(service ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Stats returns the dashboard summary
// @Summary Dashboard stats
// @Description Active loan count and total, overdue count, customer count, potential profit and recent activity.
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DashboardStats
// @Failure 500 {object} services.ErrorResponse
// @Router /dashboard/stats [get]
func (h *ReportHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Inventory lists collateral held for active transactions
// @Summary Inventory
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Success 200 {object} models.Page[models.InventoryItem]
// @Router /inventory [get]
func (h *ReportHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.ListInventory(r.Context(), pageParam(r))
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
