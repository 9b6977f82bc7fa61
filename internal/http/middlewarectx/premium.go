package middlewarectx

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

// PlanChecker определяет, есть ли у пользователя действующий Premium.
type PlanChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, error)
}

// PremiumOnly пропускает пользователей с Premium и администраторов.
// Если plans равен nil (подписки выключены), ограничений нет.
func PremiumOnly(log *slog.Logger, plans PlanChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if plans == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := log.With(
				slog.String("op", "middlewarectx.PremiumOnly"),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if role, _ := r.Context().Value(Role).(string); role == models.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			premium, err := plans.IsPremium(r.Context(), userID)
			if err != nil {
				log.Error("failed to get subscription status", sl.UserID(userID), sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}
			if !premium {
				log.Info("premium required, access denied", sl.UserID(userID))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("premium subscription required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
