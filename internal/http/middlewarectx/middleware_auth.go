// Package middlewarectx содержит HTTP middleware MindWell: проверку JWT,
// премиум-доступ, ограничение частоты запросов и метрики.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization
// и в случае успеха добавляет в контекст ID, имя и роль пользователя
// для дальнейшего использования в обработчиках.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized с сообщением об ошибке.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/mindwell/internal/http/response"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID — ключ для ID пользователя в контексте
	UserID Key = "user_id"
	// User — ключ для имени пользователя в контексте
	User Key = "username"
	// Role — ключ для роли пользователя в контексте
	Role Key = "role"
	// IsPremium — ключ для флага активного премиума
	IsPremium Key = "is_premium"
	// SubscriptionStatus — ключ для актуального статуса подписки
	SubscriptionStatus Key = "subscription_status"
)

// TokenValidator описывает сервис проверки сессионного токена.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет ID, имя пользователя и роль в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(auth TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorWithCode("missing or invalid authorization header", "unauthorized"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			user, err := auth.ValidateToken(r.Context(), tokenStr)
			if err != nil || user == nil {
				log.Warn("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorWithCode("invalid or expired token", "invalid_token"))
				return
			}
			ctx := context.WithValue(r.Context(), UserID, user.ID)
			ctx = context.WithValue(ctx, User, user.Username)
			ctx = context.WithValue(ctx, Role, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom возвращает ID пользователя, положенный JWTMiddleware.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(UserID).(string)
	return id
}

// RoleFrom возвращает роль пользователя, положенную JWTMiddleware.
func RoleFrom(ctx context.Context) string {
	role, _ := ctx.Value(Role).(string)
	return role
}

// PremiumFrom возвращает флаг премиума, положенный RequirePremium или PremiumContext.
func PremiumFrom(ctx context.Context) bool {
	premium, _ := ctx.Value(IsPremium).(bool)
	return premium
}
