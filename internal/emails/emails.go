// Package emails собирает письма MindWell: подтверждение почты, сброс пароля
// и напоминание об окончании подписки.
package emails

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/magabrotheeeer/mindwell/internal/models"
)

const (
	subjectVerification = "Verify Your MindWell Account"
	subjectReset        = "Reset Your MindWell Password"
	subjectExpiry       = "Your MindWell Premium Is Ending Soon"
)

const layout = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
<h2>Hi %s,</h2>
%s
<p>Best regards,<br>The MindWell Team</p>
</div>
</body>
</html>`

func link(base, path, token string) string {
	return strings.TrimRight(base, "/") + path + "?token=" + url.QueryEscape(token)
}

func button(href, label string) string {
	return fmt.Sprintf(`<p style="text-align: center;"><a href="%s" style="display: inline-block; background: #3b82f6; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px;">%s</a></p>
<p>Or copy and paste this link into your browser:<br>%s</p>`, html.EscapeString(href), label, html.EscapeString(href))
}

func render(subject, username, body string) string {
	return fmt.Sprintf(layout, subject, html.EscapeString(username), body)
}

// Verification письмо со ссылкой подтверждения почты.
func Verification(frontendURL, to, username, token string, ttl time.Duration) models.EmailMessage {
	href := link(frontendURL, "/verify-email", token)
	hours := int(ttl.Hours())

	text := fmt.Sprintf(`Hi %s,

Thank you for creating your MindWell account! Click the link below to verify your account:
%s

This verification link will expire in %d hours for your security.

If you didn't create a MindWell account, you can safely ignore this email.

Best regards,
The MindWell Team`, username, href, hours)

	body := fmt.Sprintf(`<p>Thank you for creating your MindWell account! To complete your registration, please verify your email address.</p>
%s
<p>This verification link will expire in %d hours for your security.</p>
<p>If you didn't create a MindWell account, you can safely ignore this email.</p>`, button(href, "Verify Email Address"), hours)

	return models.EmailMessage{
		Kind:     models.EmailKindVerification,
		To:       to,
		Subject:  subjectVerification,
		TextBody: text,
		HTMLBody: render(subjectVerification, username, body),
	}
}

// PasswordReset письмо со ссылкой сброса пароля.
func PasswordReset(frontendURL, to, username, token string, ttl time.Duration) models.EmailMessage {
	href := link(frontendURL, "/reset-password", token)
	expires := ttl.String()
	if ttl == time.Hour {
		expires = "1 hour"
	}

	text := fmt.Sprintf(`Hi %s,

We received a request to reset your MindWell account password. Click the link below to create a new password:

%s

This link will expire in %s. If you didn't request a password reset, please ignore this email.

Best regards,
The MindWell Team`, username, href, expires)

	body := fmt.Sprintf(`<p>We received a request to reset your MindWell account password.</p>
%s
<p><strong>Security Note:</strong> This link will expire in %s. If you didn't request a password reset, please ignore this email.</p>`, button(href, "Reset Password"), expires)

	return models.EmailMessage{
		Kind:     models.EmailKindPasswordReset,
		To:       to,
		Subject:  subjectReset,
		TextBody: text,
		HTMLBody: render(subjectReset, username, body),
	}
}

// SubscriptionExpiry напоминание о скором окончании премиум-подписки.
func SubscriptionExpiry(frontendURL string, sub models.ExpiringSubscription) models.EmailMessage {
	href := strings.TrimRight(frontendURL, "/") + "/pricing"
	date := sub.ExpiresAt.UTC().Format("January 2, 2006")

	text := fmt.Sprintf(`Hi %s,

Your MindWell Premium subscription ends on %s. Renew to keep your mood insights, extended history and AI companion:
%s

Best regards,
The MindWell Team`, sub.Username, date, href)

	body := fmt.Sprintf(`<p>Your MindWell Premium subscription ends on <strong>%s</strong>.</p>
<p>Renew to keep your mood insights, extended history and AI companion.</p>
%s`, date, button(href, "Renew Premium"))

	return models.EmailMessage{
		Kind:     models.EmailKindSubscriptionExpiry,
		To:       sub.Email,
		Subject:  subjectExpiry,
		TextBody: text,
		HTMLBody: render(subjectExpiry, sub.Username, body),
	}
}
