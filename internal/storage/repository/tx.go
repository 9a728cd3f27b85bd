package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

// executor общий набор методов *sql.DB и *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func txFromContext(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok && tx != nil
}

// conn возвращает транзакцию из контекста, если она есть, иначе пул.
func (s *Storage) conn(ctx context.Context) executor {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return s.DB
}

// WithinTx выполняет fn в одной транзакции. Все методы Storage, вызванные с
// переданным в fn контекстом, работают внутри неё. Если транзакция уже есть
// в контексте, fn выполняется в ней, а фиксирует её внешний вызов.
// Ошибка fn или паника откатывают транзакцию.
func (s *Storage) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	const op = "storage.WithinTx"

	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}
