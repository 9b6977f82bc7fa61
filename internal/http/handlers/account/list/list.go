// Package list реализует HTTP-обработчик списка счетов с итогами.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/response"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// Service возвращает счета пользователя.
type Service interface {
	List(ctx context.Context, userID string) (*models.AccountsSummary, error)
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
// @Summary Список счетов
// @Description Возвращает счета пользователя, итоги по валютам и число операций.
// @Tags Accounts
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.AccountsSummary}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /accounts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.list"
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

	summary, err := h.service.List(r.Context(), userID)
	if err != nil {
		log.Error("failed to list accounts", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list accounts"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(summary))
}
