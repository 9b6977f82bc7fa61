// Package update реализует HTTP-обработчик изменения операции.
package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/response"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/validation"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/services/order"
	"github.com/magabrotheeeer/portfolio-tracker/internal/storage"
)

// Service изменяет операцию.
type Service interface {
	Update(ctx context.Context, userID, id string, req models.UpdateOrderRequest) (*models.Order, error)
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
// @Summary Изменение операции
// @Tags Orders
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID операции"
// @Param request body models.UpdateOrderRequest true "Операция"
// @Success 200 {object} response.Response{data=models.Order}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ValidationResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /orders/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.order.update"
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
		render.JSON(w, r, response.Error("order not found"))
		return
	}

	var req models.UpdateOrderRequest
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

	updated, err := h.service.Update(r.Context(), userID, id, req)
	switch {
	case errors.Is(err, order.ErrIDMismatch):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("id in body does not match url"))
		return
	case errors.Is(err, order.ErrAccountNotFound):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("account not found"))
		return
	case errors.Is(err, order.ErrInvalidDate), errors.Is(err, order.ErrEmptySymbol):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	case errors.Is(err, storage.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("order not found"))
		return
	case err != nil:
		log.Error("failed to update order", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update order"))
		return
	}

	log.Info("order updated", slog.String("order_id", updated.ID))
	render.JSON(w, r, response.StatusOKWithData(updated))
}
