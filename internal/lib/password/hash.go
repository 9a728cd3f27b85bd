// Package password хэширует и проверяет пароли пользователей через bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch возвращается, если пароль не соответствует хэшу.
var ErrMismatch = errors.New("password does not match")

// MinLength минимальная длина пароля при регистрации и сбросе.
const MinLength = 6

// Cost используется при генерации хэша. В тестах его можно понизить.
var Cost = bcrypt.DefaultCost

// GetHash возвращает bcrypt‑хэш пароля для хранения в таблице users.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash сравнивает хэш с введённым паролем.
// При несовпадении возвращает ошибку, оборачивающую ErrMismatch.
func CompareHash(originalHash, externalPassword string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
