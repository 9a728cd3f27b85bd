// Package jwt выпускает и проверяет JWT сессии пользователя.
package jwt

import (
	"time"
)

// Maker описывает генерацию и разбор JWT.
type Maker interface {
	// GenerateToken выпускает токен для пользователя с идентификатором userID.
	GenerateToken(userID, username, role string) (string, error)
	// ParseToken проверяет подпись и срок действия и возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены HS256 общим секретом.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
	issuer    string
}

// NewJWTMaker создаёт MakerImpl. Время жизни токена задаётся в конфиге (jwttoken.token_ttl).
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		issuer:    "mindwell",
	}
}

// TTL возвращает время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
