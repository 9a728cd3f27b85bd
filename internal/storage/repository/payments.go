package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/mindwell/internal/models"
)

// PaymentExists проверяет, записан ли платёж с таким внешним reference.
func (s *Storage) PaymentExists(ctx context.Context, reference string) (bool, error) {
	const op = "storage.PaymentExists"

	var exists bool
	if err := s.conn(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE external_reference = $1)`,
		reference).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// InsertPayment добавляет запись в журнал платежей. Повторный reference
// возвращает ErrDuplicateReference.
func (s *Storage) InsertPayment(ctx context.Context, p models.Payment) (int64, error) {
	const op = "storage.InsertPayment"

	if p.PaymentType == "" {
		p.PaymentType = models.PaymentTypeSubscription
	}
	var payload any
	if len(p.RawPayload) > 0 {
		payload = []byte(p.RawPayload)
	}

	var id int64
	err := s.conn(ctx).QueryRowContext(ctx,
		`INSERT INTO payments (user_id, external_reference, amount, currency, status, payment_type, raw_payload)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		p.UserID, p.ExternalReference, p.Amount, p.Currency, p.Status, p.PaymentType, payload).Scan(&id)
	if err != nil {
		if _, constraint, ok := pgError(err); ok && isUniqueViolation(err) && constraint == paymentsReferenceConstraint {
			return 0, fmt.Errorf("%s: %w", op, ErrDuplicateReference)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListPayments возвращает платежи пользователя, новые первыми.
func (s *Storage) ListPayments(ctx context.Context, userID string) ([]models.Payment, error) {
	const op = "storage.ListPayments"

	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT id, user_id, external_reference, amount, currency, status, payment_type, created_at
		 FROM payments
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]models.Payment, 0)
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.UserID, &p.ExternalReference, &p.Amount,
			&p.Currency, &p.Status, &p.PaymentType, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
