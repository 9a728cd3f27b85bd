// Package models содержит доменные структуры MindWell, общие для хранилища,
// сервисов и HTTP-слоя.
package models

import "time"

// Роли пользователей.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User представляет зарегистрированного пользователя.
type User struct {
	ID           string
	Username     string // уникальное имя
	Email        string // уникальная почта
	PasswordHash string
	Role         string

	EmailVerified            bool
	EmailVerificationToken   *string // хэш токена, пока подтверждение не завершено
	EmailVerificationExpires *time.Time
	PasswordResetToken       *string
	PasswordResetExpires     *time.Time

	SubscriptionStatus    string
	SubscriptionExpiresAt *time.Time // обязательна для premium
	CreatedAt             time.Time
}

// Profile публичное представление пользователя в ответах API.
type Profile struct {
	ID                    string     `json:"id"`
	Username              string     `json:"username"`
	Email                 string     `json:"email"`
	Role                  string     `json:"role"`
	EmailVerified         bool       `json:"email_verified"`
	SubscriptionStatus    string     `json:"subscription_status"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"`
	CreatedAt             time.Time  `json:"created_at"`
}

// Profile возвращает публичное представление пользователя.
func (u *User) Profile() Profile {
	return Profile{
		ID:                    u.ID,
		Username:              u.Username,
		Email:                 u.Email,
		Role:                  u.Role,
		EmailVerified:         u.EmailVerified,
		SubscriptionStatus:    u.SubscriptionStatus,
		SubscriptionExpiresAt: u.SubscriptionExpiresAt,
		CreatedAt:             u.CreatedAt,
	}
}
