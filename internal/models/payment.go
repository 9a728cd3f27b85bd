package models

import (
	"encoding/json"
	"time"
)

// Статусы платежа.
const (
	PaymentPending = "pending"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

// PaymentTypeSubscription единственный тип платежа: оплата месяца премиума.
const PaymentTypeSubscription = "subscription"

// Payment запись журнала платежей. Создаётся один раз на внешний reference
// и больше не изменяется.
type Payment struct {
	ID                int64           `json:"id"`
	UserID            string          `json:"-"`
	ExternalReference string          `json:"reference"`
	Amount            int64           `json:"amount"` // в минимальных единицах валюты
	Currency          string          `json:"currency"`
	Status            string          `json:"status"`
	PaymentType       string          `json:"payment_type"`
	RawPayload        json.RawMessage `json:"-"`
	CreatedAt         time.Time       `json:"created_at"`
}
