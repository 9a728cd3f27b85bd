package paymentprovider

import "encoding/json"

// TransactionSuccess статус успешной транзакции Paystack.
const TransactionSuccess = "success"

// EventChargeSuccess событие вебхука об успешном списании.
const EventChargeSuccess = "charge.success"

// Customer покупатель в ответах и вебхуках Paystack.
type Customer struct {
	Email string `json:"email"`
}

// TransactionData данные транзакции Paystack.
type TransactionData struct {
	Status    string   `json:"status"`
	Reference string   `json:"reference"`
	Amount    int64    `json:"amount"`
	Currency  string   `json:"currency"`
	PaidAt    string   `json:"paid_at,omitempty"`
	Customer  Customer `json:"customer"`
}

// Transaction результат проверки транзакции. Raw хранит тело ответа
// шлюза целиком для журнала платежей.
type Transaction struct {
	TransactionData
	Raw json.RawMessage
}

// Success сообщает, подтвердил ли шлюз оплату.
func (t *Transaction) Success() bool {
	return t.Status == TransactionSuccess
}

type verifyResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    TransactionData `json:"data"`
}

// InitializeRequest запрос на создание транзакции.
type InitializeRequest struct {
	Email       string            `json:"email"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency,omitempty"`
	Reference   string            `json:"reference,omitempty"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// InitializeData данные созданной транзакции: куда отправить покупателя.
type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type initializeResponse struct {
	Status  bool           `json:"status"`
	Message string         `json:"message"`
	Data    InitializeData `json:"data"`
}

// WebhookEvent тело вебхука Paystack.
type WebhookEvent struct {
	Event string          `json:"event"`
	Data  TransactionData `json:"data"`
}
