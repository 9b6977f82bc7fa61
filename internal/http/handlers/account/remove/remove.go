// Package remove реализует HTTP-обработчик удаления счёта.
// Операции удалённого счёта сохраняются без привязки к счёту.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/response"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/validation"
	"github.com/magabrotheeeer/portfolio-tracker/internal/storage"
)

// Service удаляет счёт.
type Service interface {
	Delete(ctx context.Context, userID, id string) error
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удаление счёта
// @Tags Accounts
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID счёта"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /accounts/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")
	if !validation.IsID(id) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("account not found"))
		return
	}

	err := h.service.Delete(r.Context(), userID, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("account not found"))
		return
	case err != nil:
		log.Error("failed to delete account", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete account"))
		return
	}

	log.Info("account deleted", slog.String("account_id", id))
	render.JSON(w, r, response.OK())
}
