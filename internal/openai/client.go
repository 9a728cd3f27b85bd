// Package openai минимальный клиент OpenAI Chat Completions.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sony/gobreaker/v2"

	"github.com/magabrotheeeer/mindwell/internal/config"
	"github.com/magabrotheeeer/mindwell/internal/lib/breaker"
)

// ErrNotConfigured ключ API не задан.
var ErrNotConfigured = errors.New("openai api key not set")

// Message сообщение диалога.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Client клиент OpenAI.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[string]
}

// NewClient создаёт клиент. С пустым ключом Configured возвращает false.
func NewClient(cfg config.OpenAI, log *slog.Logger) *Client {
	return &Client{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		model:   cfg.OpenAIModel,
		client:  &http.Client{Timeout: cfg.OpenAITimeout},
		cb:      breaker.New[string]("openai", 3, 0, log),
	}
}

// Configured сообщает, задан ли ключ API.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// Complete отправляет диалог и возвращает текст первого ответа.
func (c *Client) Complete(ctx context.Context, messages []Message, maxTokens int, temperature float64) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	return c.cb.Execute(func() (string, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return "", fmt.Errorf("HTTP request failed: %w", err)
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			var apiErr apiError
			_ = json.Unmarshal(respBody, &apiErr)
			return "", fmt.Errorf("OpenAI API error: %w", breaker.StatusError(resp.StatusCode, apiErr.Error.Message))
		}

		var out chatResponse
		if err := json.Unmarshal(respBody, &out); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
		if len(out.Choices) == 0 {
			return "", errors.New("no choices returned")
		}
		return strings.TrimSpace(out.Choices[0].Message.Content), nil
	})
}
