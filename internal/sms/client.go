// Package sms wraps the outbound SMS gateway collaborator.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/call-triage-service/internal/config"
)

// Sender delivers one message and returns the provider message identifier.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// Client talks to the HTTP SMS gateway. Timeouts are the caller's
// responsibility via ctx; the embedded http.Client carries no timeout of
// its own so the per-attempt deadline stays in one place.
type Client struct {
	cfg    config.SMSConfig
	http   *http.Client
	logger *zap.Logger
}

// NewClient builds a gateway client.
func NewClient(cfg config.SMSConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: logger,
	}
}

type sendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

// Send posts one message to the gateway.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	if c.cfg.GatewayURL == "" {
		return "", fmt.Errorf("sms gateway not configured")
	}

	payload, err := json.Marshal(sendRequest{To: to, Body: body})
	if err != nil {
		return "", fmt.Errorf("encode sms request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GatewayURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("read sms response: %w", err)
	}

	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("decode sms response: %w", err)
	}

	if resp.StatusCode >= 300 {
		detail := parsed.Error
		if detail == "" {
			detail = string(raw)
		}
		return "", fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, detail)
	}

	c.logger.Debug("sms accepted",
		zap.String("to", to),
		zap.String("message_id", parsed.MessageID),
	)
	return parsed.MessageID, nil
}
