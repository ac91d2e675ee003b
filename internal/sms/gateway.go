package sms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Thanujadevi/EMPOWERHER/internal/logger"
	"github.com/Thanujadevi/EMPOWERHER/internal/model"
)

var (
	_ model.SMSSender = (*Gateway)(nil)
	_ model.SMSSender = (*LogSender)(nil)
)

// Options configures the HTTP gateway.
type Options struct {
	BaseURL string
	APIKey  string
	Sender  string
	Timeout time.Duration
}

// Gateway sends messages through an HTTP SMS provider.
type Gateway struct {
	httpClient *resty.Client
	sender     string
}

type messageRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// NewGateway creates a gateway client. Server errors are retried.
func NewGateway(opts Options) *Gateway {
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Content-Type", "application/json")
	if opts.APIKey != "" {
		client.SetAuthToken(opts.APIKey)
	}

	return &Gateway{httpClient: client, sender: opts.Sender}
}

// SendSMS posts one message to the gateway.
func (g *Gateway) SendSMS(ctx context.Context, to, body string) error {
	var apiErr errorResponse
	resp, err := g.httpClient.R().
		SetContext(ctx).
		SetBody(messageRequest{From: g.sender, To: to, Body: body}).
		SetError(&apiErr).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}
	if resp.IsError() {
		if apiErr.Message != "" {
			return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode(), apiErr.Message)
		}
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode())
	}
	return nil
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *logger.Logger
}

func NewLogSender(logger *logger.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendSMS(_ context.Context, to, body string) error {
	s.logger.Info("SMS: delivery disabled, message logged", "to", to, "body", body)
	return nil
}
