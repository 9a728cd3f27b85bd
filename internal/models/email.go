package models

// Виды писем, которые уходят через очередь уведомлений.
const (
	EmailKindVerification       = "verification"
	EmailKindPasswordReset      = "password_reset"
	EmailKindSubscriptionExpiry = "subscription_expiry"
)

// EmailMessage письмо, готовое к отправке.
type EmailMessage struct {
	Kind     string `json:"kind"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body"`
}
