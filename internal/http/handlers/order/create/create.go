// Package create реализует HTTP-обработчик создания операции.
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/response"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/validation"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/services/order"
)

// Service создаёт операцию.
type Service interface {
	Create(ctx context.Context, userID string, req models.CreateOrderRequest) (*models.Order, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validation.New(),
	}
}

// ServeHTTP godoc
// @Summary Создание операции
// @Tags Orders
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CreateOrderRequest true "Операция"
// @Success 201 {object} response.Response{data=models.Order}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 422 {object} response.ValidationResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /orders [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.create"
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

	var req models.CreateOrderRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if violations := validation.Check(h.validate, req); len(violations) > 0 {
		log.Error("validation failed", slog.String("violations", validation.Join(violations)))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(violations))
		return
	}

	created, err := h.service.Create(r.Context(), userID, req)
	switch {
	case errors.Is(err, order.ErrAccountNotFound):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("account not found"))
		return
	case errors.Is(err, order.ErrInvalidDate), errors.Is(err, order.ErrEmptySymbol):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case err != nil:
		log.Error("failed to create order", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create order"))
		return
	}

	log.Info("order created", slog.String("order_id", created.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(created))
}
