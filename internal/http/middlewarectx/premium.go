package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mindwell/internal/http/response"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
)

// UpgradeURL страница тарифов, куда клиент направляет пользователя без премиума.
const UpgradeURL = "/pricing"

// PremiumChecker вычисляет актуальный премиум-статус пользователя с ленивым
// истечением просроченной подписки.
type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string) (bool, string, error)
}

// PremiumRequiredResponse тело ответа 403 для премиум-эндпоинтов.
type PremiumRequiredResponse struct {
	Status             string `json:"status" example:"Error"`
	Error              string `json:"error" example:"premium subscription required"`
	Code               string `json:"code" example:"premium_required"`
	SubscriptionStatus string `json:"subscription_status" example:"free"`
	UpgradeURL         string `json:"upgrade_url" example:"/pricing"`
}

// RequirePremium пропускает запрос только при активном премиуме, иначе
// отвечает 403 с кодом premium_required. Должен стоять после JWTMiddleware.
func RequirePremium(sub PremiumChecker, log *slog.Logger) func(http.Handler) http.Handler {
	return premiumMiddleware(sub, log, true)
}

// PremiumContext кладёт премиум-статус в контекст и никогда не отказывает.
// Ошибка вычисления статуса считается отсутствием премиума.
func PremiumContext(sub PremiumChecker, log *slog.Logger) func(http.Handler) http.Handler {
	return premiumMiddleware(sub, log, false)
}

func premiumMiddleware(sub PremiumChecker, log *slog.Logger, require bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Premium"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			userID := UserIDFrom(r.Context())
			if userID == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorWithCode("user identification missing", "unauthorized"))
				return
			}

			premium, status, err := sub.IsPremium(r.Context(), userID)
			if err != nil {
				if require {
					log.Error("failed to evaluate subscription", slog.String("user_id", userID), sl.Err(err))
					response.RenderError(w, r, err)
					return
				}
				log.Warn("failed to evaluate subscription, treating as free", slog.String("user_id", userID), sl.Err(err))
				premium = false
			}

			if require && !premium {
				log.Info("premium required", slog.String("user_id", userID), slog.String("status", status))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, PremiumRequiredResponse{
					Status:             response.StatusError,
					Error:              "premium subscription required",
					Code:               "premium_required",
					SubscriptionStatus: status,
					UpgradeURL:         UpgradeURL,
				})
				return
			}

			ctx := context.WithValue(r.Context(), IsPremium, premium)
			ctx = context.WithValue(ctx, SubscriptionStatus, status)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
