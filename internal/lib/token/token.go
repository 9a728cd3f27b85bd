// Package token генерирует одноразовые токены для ссылок из писем
// (подтверждение почты, сброс пароля).
//
// Клиент получает исходное значение, в базе хранится только SHA-256 хэш.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// size количество случайных байт в токене.
const size = 32

// Generate возвращает новый токен и его хэш для сохранения.
func Generate() (plain, hash string, err error) {
	const op = "token.Generate"
	buf := make([]byte, size)
	if _, err = rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	plain = base64.RawURLEncoding.EncodeToString(buf)
	return plain, Hash(plain), nil
}

// Hash возвращает hex SHA-256 от токена.
func Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
