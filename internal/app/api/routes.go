// Package api собирает HTTP-приложение портфельного трекера.
package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-спецификации.
	_ "github.com/magabrotheeeer/portfolio-tracker/docs"
	"github.com/magabrotheeeer/portfolio-tracker/internal/config"
	"github.com/magabrotheeeer/portfolio-tracker/internal/dataprovider"
	accountcreate "github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/account/create"
	accountlist "github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/account/list"
	accountremove "github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/account/remove"
	accountupdate "github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/account/update"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/admin/grant"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/health"
	ordercreate "github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/order/create"
	orderget "github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/order/get"
	orderlist "github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/order/list"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/order/orderimport"
	orderremove "github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/order/remove"
	orderupdate "github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/order/update"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/subscription/callback"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/subscription/checkout"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/subscription/current"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/symbol/historical"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/symbol/lookup"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/symbol/quote"
	userget "github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/user/get"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/handlers/user/settings"
	"github.com/magabrotheeeer/portfolio-tracker/internal/http/middlewarectx"
	accountservice "github.com/magabrotheeeer/portfolio-tracker/internal/services/account"
	authservice "github.com/magabrotheeeer/portfolio-tracker/internal/services/auth"
	orderservice "github.com/magabrotheeeer/portfolio-tracker/internal/services/order"
	subservice "github.com/magabrotheeeer/portfolio-tracker/internal/services/subscription"
)

// Deps — сервисы, которые обслуживают маршруты.
type Deps struct {
	Auth          *authservice.Service
	Subscriptions *subservice.Service
	Accounts      *accountservice.Service
	Orders        *orderservice.Service
	MarketData    *dataprovider.Service
	DB            health.Pinger
	Registry      *prometheus.Registry
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, features config.Features, server config.HTTPServer, d Deps) {
	metrics := middlewarectx.NewMetrics(d.Registry)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		metrics.Middleware,
		middlewarectx.RateLimitMiddleware(logger, server.RateLimit, server.RateBurst),
	)

	// Без подписок профиль не содержит плана, а котировки доступны всем.
	var (
		subscriptions userget.SubscriptionService
		plans         middlewarectx.PlanChecker
	)
	if features.EnableSubscription {
		subscriptions = d.Subscriptions
		plans = d.Subscriptions
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, d.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, d.Auth).ServeHTTP)
		r.Get("/health", health.New(logger, d.DB).ServeHTTP)
		if features.EnableSubscription {
			// Stripe возвращает сюда браузер пользователя, токена в запросе нет.
			r.Get("/subscription/stripe/callback", callback.New(logger, d.Subscriptions).ServeHTTP)
		}

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, logger))
			r.Use(middlewarectx.ReadOnlyMiddleware(logger, features.ReadOnlyMode))

			r.Get("/user", userget.New(logger, d.Auth, subscriptions).ServeHTTP)
			r.Put("/user/settings", settings.New(logger, d.Auth).ServeHTTP)

			r.Get("/accounts", accountlist.New(logger, d.Accounts).ServeHTTP)
			r.Post("/accounts", accountcreate.New(logger, d.Accounts).ServeHTTP)
			r.Put("/accounts/{id}", accountupdate.New(logger, d.Accounts).ServeHTTP)
			r.Delete("/accounts/{id}", accountremove.New(logger, d.Accounts).ServeHTTP)

			r.Get("/orders", orderlist.New(logger, d.Orders).ServeHTTP)
			r.Post("/orders", ordercreate.New(logger, d.Orders).ServeHTTP)
			r.Post("/orders/import", orderimport.New(logger, d.Orders).ServeHTTP)
			r.Get("/orders/{id}", orderget.New(logger, d.Orders).ServeHTTP)
			r.Put("/orders/{id}", orderupdate.New(logger, d.Orders).ServeHTTP)
			r.Delete("/orders/{id}", orderremove.New(logger, d.Orders).ServeHTTP)

			r.Get("/symbol/lookup", lookup.New(logger, d.MarketData).ServeHTTP)
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.PremiumOnly(logger, plans))
				r.Get("/symbol/{dataSource}/{symbol}", quote.New(logger, d.MarketData).ServeHTTP)
				r.Get("/symbol/{dataSource}/{symbol}/{date}", historical.New(logger, d.MarketData).ServeHTTP)
			})

			if features.EnableSubscription {
				r.Get("/subscription", current.New(logger, d.Subscriptions).ServeHTTP)
				r.Post("/subscription/stripe/checkout-session", checkout.New(logger, d.Subscriptions).ServeHTTP)

				r.Group(func(r chi.Router) {
					r.Use(middlewarectx.AdminOnly(logger))
					r.Post("/admin/subscriptions/{userID}", grant.New(logger, d.Auth, d.Subscriptions).ServeHTTP)
				})
			}
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
