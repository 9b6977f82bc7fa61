// Package grant реализует выдачу Premium администратором без оплаты.
package grant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/response"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/validation"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/storage"
)

// UserService проверяет, что пользователь существует.
type UserService interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// SubscriptionService выдаёт подписку.
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, userID string) (*models.SubscriptionRecord, error)
}

type Handler struct {
	log           *slog.Logger
	users         UserService
	subscriptions SubscriptionService
}

func New(log *slog.Logger, users UserService, subscriptions SubscriptionService) *Handler {
	return &Handler{
		log:           log,
		users:         users,
		subscriptions: subscriptions,
	}
}

// ServeHTTP godoc
// @Summary Выдать Premium пользователю
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param userID path string true "ID пользователя"
// @Success 201 {object} response.Response{data=models.SubscriptionRecord}
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /admin/subscriptions/{userID} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.grant"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("user id is required"))
		return
	}
	if !validation.IsID(userID) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}

	if _, err := h.users.GetUser(r.Context(), userID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Warn("user not found", sl.UserID(userID))
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to get user", sl.UserID(userID), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get user"))
		return
	}

	rec, err := h.subscriptions.CreateSubscription(r.Context(), userID)
	if err != nil {
		log.Error("failed to create subscription", sl.UserID(userID), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create subscription"))
		return
	}

	log.Info("subscription granted", sl.UserID(userID), slog.Time("expires_at", rec.ExpiresAt))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(rec))
}
