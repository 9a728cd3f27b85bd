// Package repository реализует хранилище MindWell на PostgreSQL:
// пользователи и токены, журнал платежей, настроение, дневник, привычки
// и доска сообщества.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	// ErrNotFound запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrUserExists username или email уже заняты.
	ErrUserExists = errors.New("user already exists")
	// ErrDuplicateReference платёж с таким внешним reference уже записан.
	ErrDuplicateReference = errors.New("payment reference already recorded")
)

const paymentsReferenceConstraint = "payments_external_reference_key"

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Ping проверяет доступность базы, используется health-эндпоинтом.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// pgError возвращает код и имя ограничения ошибки PostgreSQL, если это она.
func pgError(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}

func isUniqueViolation(err error) bool {
	code, _, ok := pgError(err)
	return ok && code == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	code, _, ok := pgError(err)
	return ok && code == pgerrcode.ForeignKeyViolation
}
