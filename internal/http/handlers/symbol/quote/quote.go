// Package quote реализует получение текущей котировки инструмента.
package quote

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/portfolio-tracker/internal/dataprovider"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/response"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/valuefmt"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// Service возвращает котировку.
type Service interface {
	GetQuote(ctx context.Context, ds models.DataSource, symbol string) (*models.Quote, bool, error)
}

// Quote — котировка с подготовленной к выводу ценой.
type Quote struct {
	*models.Quote
	Symbol       string                `json:"symbol"`
	PriceDisplay valuefmt.DisplayValue `json:"price_display"`
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
// @Summary Котировка инструмента
// @Tags Symbol
// @Produce  json
// @Security BearerAuth
// @Param dataSource path string true "Источник данных"
// @Param symbol path string true "Тикер"
// @Success 200 {object} response.Response{data=Quote}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "нужен Premium"
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /symbol/{dataSource}/{symbol} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.symbol.quote"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ds := models.DataSource(strings.ToUpper(chi.URLParam(r, "dataSource")))
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	if ds == "" || symbol == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("data source and symbol are required"))
		return
	}

	q, found, err := h.service.GetQuote(r.Context(), ds, symbol)
	if err != nil {
		if errors.Is(err, dataprovider.ErrUnknownDataSource) {
			log.Warn("unknown data source", slog.String("data_source", string(ds)))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown data source"))
			return
		}
		log.Error("failed to get quote", slog.String("symbol", symbol), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get quote"))
		return
	}
	if !found {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("quote not found"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(Quote{
		Quote:  q,
		Symbol: symbol,
		PriceDisplay: valuefmt.Format(q.MarketPrice, valuefmt.Flags{
			IsCurrency: true,
			Currency:   q.Currency,
		}),
	}))
}
