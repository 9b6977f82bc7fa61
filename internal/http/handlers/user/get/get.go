// Package get реализует HTTP-обработчик получения профиля текущего пользователя.
package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/response"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/valuefmt"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/storage"
)

// UserService возвращает пользователя по ID.
type UserService interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// SubscriptionService возвращает текущий тарифный план.
type SubscriptionService interface {
	GetSubscription(ctx context.Context, userID string) (models.PlanClassification, error)
}

// Subscription — тарифный план в ответе вместе с датой для отображения.
type Subscription struct {
	models.PlanClassification
	ExpiresAtDisplay string `json:"expires_at_display,omitempty"`
}

// Profile — ответ обработчика.
type Profile struct {
	*models.User
	Subscription *Subscription `json:"subscription,omitempty"`
}

// Handler обрабатывает GET /user.
type Handler struct {
	log           *slog.Logger
	users         UserService
	subscriptions SubscriptionService
}

// New создает Handler. subscriptions может быть nil, если подписки выключены.
func New(log *slog.Logger, users UserService, subscriptions SubscriptionService) *Handler {
	return &Handler{
		log:           log,
		users:         users,
		subscriptions: subscriptions,
	}
}

// ServeHTTP godoc
// @Summary Профиль пользователя
// @Description Возвращает пользователя, его настройки и текущий тарифный план.
// @Tags User
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=Profile}
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /user [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.get"
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

	user, err := h.users.GetUser(r.Context(), userID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	case err != nil:
		log.Error("failed to get user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get user"))
		return
	}

	profile := Profile{User: user}
	if h.subscriptions != nil {
		plan, err := h.subscriptions.GetSubscription(r.Context(), userID)
		if err != nil {
			log.Error("failed to get subscription", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not get subscription"))
			return
		}
		profile.Subscription = &Subscription{PlanClassification: plan}
		if plan.ExpiresAt != nil {
			profile.Subscription.ExpiresAtDisplay = valuefmt.Format(*plan.ExpiresAt,
				valuefmt.Flags{Locale: user.Settings.Locale}).FormattedText
		}
	}

	render.JSON(w, r, response.StatusOKWithData(profile))
}
