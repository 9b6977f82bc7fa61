package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/portfolio-tracker/internal/http/response"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// ReadOnlyMiddleware в режиме только для чтения отклоняет изменяющие запросы
// с 403. Администраторы не ограничиваются. Должен стоять после JWTMiddleware.
func ReadOnlyMiddleware(log *slog.Logger, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if role, _ := r.Context().Value(Role).(string); role == models.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}
			log.Warn("rejected write in read-only mode", slog.String("method", r.Method), slog.String("path", r.URL.Path))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("application is in read-only mode"))
		})
	}
}
