// Package paymentprovider клиент платёжного шлюза Paystack: проверка и
// создание транзакций, проверка подписи вебхуков.
package paymentprovider

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker/v2"

	"github.com/magabrotheeeer/mindwell/internal/config"
	"github.com/magabrotheeeer/mindwell/internal/lib/breaker"
)

// ErrUnavailable шлюз не выполнил запрос: сетевая ошибка, таймаут, ответ не 2xx
// или разомкнутый circuit breaker. Ответы 4xx не размыкают breaker.
var ErrUnavailable = errors.New("payment gateway unavailable")

// maxResponseSize ограничивает тело ответа шлюза.
const maxResponseSize = 1 << 20

// Client клиент Paystack.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[[]byte]
}

// NewClient создаёт клиент Paystack.
func NewClient(cfg config.Paystack, log *slog.Logger) *Client {
	return &Client{
		secretKey:  cfg.PaystackSecretKey,
		apiURL:     strings.TrimRight(cfg.PaystackBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.PaystackTimeout},
		cb:         breaker.New[[]byte]("paystack", cfg.BreakerFailures, cfg.BreakerTimeout, log),
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do выполняет запрос через circuit breaker и возвращает тело ответа 2xx.
func (c *Client) do(req *http.Request) ([]byte, error) {
	body, err := c.cb.Execute(func() ([]byte, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, breaker.StatusError(resp.StatusCode, gatewayMessage(data))
		}
		return data, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return body, nil
}

// gatewayMessage достаёт поле message из ответа с ошибкой.
func gatewayMessage(body []byte) string {
	var resp struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &resp) != nil {
		return ""
	}
	return resp.Message
}

// VerifyTransaction запрашивает у шлюза статус транзакции по reference.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	const op = "paymentprovider.VerifyTransaction"

	req, err := c.newRequest(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp verifyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w: decode: %w", op, ErrUnavailable, err)
	}
	tx := &Transaction{TransactionData: resp.Data, Raw: body}
	if !resp.Status {
		tx.Status = "failed"
	}
	return tx, nil
}

// InitializeTransaction создаёт транзакцию и возвращает ссылку на оплату.
func (c *Client) InitializeTransaction(ctx context.Context, in InitializeRequest) (*InitializeData, error) {
	const op = "paymentprovider.InitializeTransaction"

	req, err := c.newRequest(ctx, http.MethodPost, "/transaction/initialize", in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var resp initializeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: %w: decode: %w", op, ErrUnavailable, err)
	}
	if !resp.Status || resp.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnavailable, resp.Message)
	}
	return &resp.Data, nil
}

// Sign возвращает hex HMAC-SHA512 тела под секретом.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature сравнивает подпись вебхука с HMAC-SHA512 сырого тела за
// постоянное время. Тело должно быть ровно тем, что пришло по сети.
func VerifySignature(secret string, body []byte, signature string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || secret == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), got)
}
