// Package lookup реализует поиск инструментов по всем включённым источникам данных.
package lookup

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/response"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// Service ищет инструменты.
type Service interface {
	Search(ctx context.Context, query string) ([]models.LookupItem, error)
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
// @Summary Поиск инструмента
// @Tags Symbol
// @Produce  json
// @Security BearerAuth
// @Param query query string true "Строка поиска"
// @Success 200 {object} response.Response "items"
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /symbol/lookup [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.symbol.lookup"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	query := r.URL.Query().Get("query")
	if query == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("query is required"))
		return
	}

	items, err := h.service.Search(r.Context(), query)
	if err != nil {
		log.Error("failed to search symbols", slog.String("query", query), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not search symbols"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"items": items,
	}))
}
