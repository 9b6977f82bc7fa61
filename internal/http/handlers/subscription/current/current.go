// Package current реализует HTTP-обработчик текущего тарифного плана.
package current

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/response"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/valuefmt"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// Service возвращает тарифный план пользователя.
type Service interface {
	GetSubscription(ctx context.Context, userID string) (models.PlanClassification, error)
}

// Plan — ответ обработчика.
type Plan struct {
	models.PlanClassification
	ExpiresAtDisplay string `json:"expires_at_display,omitempty"`
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
// @Summary Текущий тарифный план
// @Description Basic или Premium и дата окончания последней подписки.
// @Tags Subscription
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=Plan}
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /subscription [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.current"
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

	plan, err := h.service.GetSubscription(r.Context(), userID)
	if err != nil {
		log.Error("failed to get subscription", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get subscription"))
		return
	}

	res := Plan{PlanClassification: plan}
	if plan.ExpiresAt != nil {
		res.ExpiresAtDisplay = valuefmt.Format(*plan.ExpiresAt, valuefmt.Flags{}).FormattedText
	}
	render.JSON(w, r, response.StatusOKWithData(res))
}
