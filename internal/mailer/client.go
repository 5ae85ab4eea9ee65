// Package mailer sends transactional email through the provider's HTTP API.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/pebecgov/pebec-app-sub000/internal/config"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Client posts messages to the email API.
type Client struct {
	http   *resty.Client
	from   string
	logger *zap.Logger
}

// NewClient builds the API client from config.
func NewClient(cfg config.EmailConfig, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: http, from: cfg.From, logger: logger}
}

// Send posts a single message. Non-2xx responses are errors so the outbox
// retries the event.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("mailer: empty recipient")
	}
	var result sendResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(sendRequest{From: c.from, To: []string{msg.To}, Subject: msg.Subject, HTML: msg.HTML}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.IsError() {
		c.logger.Warn("email API rejected message",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", apiErr.Message),
		)
		return fmt.Errorf("email API status %d: %s", resp.StatusCode(), apiErr.Message)
	}
	c.logger.Debug("email sent", zap.String("id", result.ID), zap.String("subject", msg.Subject))
	return nil
}

// LogSender is used when no email API is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a sender that only logs.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the message and succeeds.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email delivery disabled", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// New picks the API client when configured.
func New(cfg config.EmailConfig, logger *zap.Logger) Sender {
	if !cfg.Enabled() {
		return NewLogSender(logger)
	}
	return NewClient(cfg, logger)
}
