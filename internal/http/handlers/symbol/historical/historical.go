// Package historical реализует получение цены инструмента на дату.
package historical

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/portfolio-tracker/internal/dataprovider"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/response"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/valuefmt"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// Service возвращает историческую цену.
type Service interface {
	GetPriceOnDate(ctx context.Context, ds models.DataSource, symbol string, day time.Time) (*models.HistoricalQuote, bool, error)
}

// Price — цена на дату с подготовленными к выводу значениями.
type Price struct {
	*models.HistoricalQuote
	Symbol       string                `json:"symbol"`
	DateDisplay  string                `json:"date_display"`
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
// @Summary Цена инструмента на дату
// @Tags Symbol
// @Produce  json
// @Security BearerAuth
// @Param dataSource path string true "Источник данных"
// @Param symbol path string true "Тикер"
// @Param date path string true "Дата в формате ISO-8601"
// @Success 200 {object} response.Response{data=Price}
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse "нужен Premium"
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /symbol/{dataSource}/{symbol}/{date} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.symbol.historical"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ds := models.DataSource(strings.ToUpper(chi.URLParam(r, "dataSource")))
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	day, ok := valuefmt.ParseISO(chi.URLParam(r, "date"))
	if ds == "" || symbol == "" || !ok {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("data source, symbol and a valid date are required"))
		return
	}

	q, found, err := h.service.GetPriceOnDate(r.Context(), ds, symbol, day)
	if err != nil {
		if errors.Is(err, dataprovider.ErrUnknownDataSource) {
			log.Warn("unknown data source", slog.String("data_source", string(ds)))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("unknown data source"))
			return
		}
		log.Error("failed to get historical price", slog.String("symbol", symbol), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get historical price"))
		return
	}
	if !found {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("price not found"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(Price{
		HistoricalQuote: q,
		Symbol:          symbol,
		DateDisplay:     valuefmt.Format(q.Date, valuefmt.Flags{}).FormattedText,
		PriceDisplay:    valuefmt.Format(q.MarketPrice, valuefmt.Flags{IsCurrency: true}),
	}))
}
