// Package callback реализует обработчик возврата пользователя из Stripe Checkout.
package callback

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/response"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/paymentprovider"
	"github.com/magabrotheeeer/portfolio-tracker/internal/services/subscription"
)

// QuerySessionID — параметр запроса с ID сессии оплаты.
const QuerySessionID = "checkoutSessionId"

// Service выдаёт подписку по оплаченной сессии.
type Service interface {
	CreateSubscriptionViaStripe(ctx context.Context, sessionID string) (string, error)
	CallbackRedirect() string
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
// @Summary Возврат из Stripe Checkout
// @Description Проверяет оплату, выдаёт Premium на год и перенаправляет в клиент.
// @Tags Subscription
// @Param checkoutSessionId query string true "ID сессии оплаты"
// @Success 302
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /subscription/stripe/callback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.callback"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sessionID := r.URL.Query().Get(QuerySessionID)
	if sessionID == "" {
		log.Error("checkout session id is missing")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("checkout session id is required"))
		return
	}

	userID, err := h.service.CreateSubscriptionViaStripe(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, paymentprovider.ErrNotPaid) || errors.Is(err, subscription.ErrInvalidSession) {
			log.Warn("checkout session rejected", slog.String("session_id", sessionID), sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("checkout session is not paid"))
			return
		}
		log.Error("failed to create subscription", slog.String("session_id", sessionID), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create subscription"))
		return
	}

	log.Info("subscription created via stripe", sl.UserID(userID))
	http.Redirect(w, r, h.service.CallbackRedirect(), http.StatusFound)
}
