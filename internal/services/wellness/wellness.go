// Package wellness содержит трекеры настроения, дневника и привычек и
// собирает из них сводку для дашборда.
package wellness

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/mindwell/internal/cache"
	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
)

// Cache кэш сводки дашборда.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// invalidateDashboard сбрасывает сводку пользователя после записи. Ошибка
// только логируется: сводка устареет не дольше чем на время жизни ключа.
func invalidateDashboard(ctx context.Context, c Cache, log *slog.Logger, userID string) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx, cache.DashboardKey(userID)); err != nil {
		log.Warn("failed to invalidate dashboard cache", slog.String("user_id", userID), sl.Err(err))
	}
}

// preview обрезает текст до limit символов и добавляет многоточие.
func preview(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

// dayStart начало текущих суток в UTC.
func dayStart(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
