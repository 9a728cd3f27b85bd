package models

import "time"

// Статусы подписки пользователя.
const (
	SubscriptionFree      = "free"
	SubscriptionPremium   = "premium"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

// SubscriptionView состояние подписки для ответа клиенту.
type SubscriptionView struct {
	SubscriptionStatus string     `json:"subscription_status"`
	IsPremium          bool       `json:"is_premium"`
	ExpiresAt          *time.Time `json:"expires_at"`
}

// ExpiringSubscription данные для письма о скором окончании подписки.
type ExpiringSubscription struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}
