package handlers

import (
	"context"
	"net/http"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/middleware"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/models"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/services"
)

type UserStore interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

type UserHandler struct {
	store UserStore
}

func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// CurrentUser returns the staff member the token was issued for
// @Summary Current user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} services.ErrorResponse
// @Router /user [get]
func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.GetUser(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		services.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
