package channel

import (
	"context"
	"fmt"
	"time"

	"golang-options-monitor/internal/notifier/config"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// GatewayClient talks to the external messaging gateway that fronts the
// whatsapp, sms and email providers. One shared rate limiter covers all three
// channels since the gateway meters per API key.
type GatewayClient struct {
	client         *resty.Client
	requestLimiter *rate.Limiter
	logger         *logger.Logger
}

// NewGatewayClient creates a gateway client from the notifier configuration.
func NewGatewayClient(cfg config.Gateway, log *logger.Logger) *GatewayClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetTimeout(10 * time.Second)

	maxPerMinute := cfg.MaxRequestPerMinute
	if maxPerMinute <= 0 {
		maxPerMinute = 60
	}
	secondsPerRequest := time.Minute / time.Duration(maxPerMinute)

	return &GatewayClient{
		client:         client,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
		logger:         log,
	}
}

type gatewaySendRequest struct {
	To             string `json:"to"`
	Message        string `json:"message"`
	IdempotencyKey string `json:"idempotency_key"`
}

type gatewaySendResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error"`
}

func (g *GatewayClient) send(ctx context.Context, path, to, message string) (string, error) {
	if err := g.requestLimiter.Wait(ctx); err != nil {
		return "", err
	}

	var result gatewaySendResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(gatewaySendRequest{
			To:             to,
			Message:        message,
			IdempotencyKey: uuid.NewString(),
		}).
		SetResult(&result).
		SetError(&result).
		Post(path)
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("gateway %s returned %d: %s", path, resp.StatusCode(), result.Error)
	}
	return result.MessageID, nil
}

// NewWhatsAppChannel creates the whatsapp dispatch channel.
func NewWhatsAppChannel(gateway *GatewayClient) Channel {
	return &gatewayChannel{gateway: gateway, name: NameWhatsApp, path: "/v1/whatsapp/send"}
}

// NewSMSChannel creates the sms dispatch channel.
func NewSMSChannel(gateway *GatewayClient) Channel {
	return &gatewayChannel{gateway: gateway, name: NameSMS, path: "/v1/sms/send"}
}

// NewEmailChannel creates the email dispatch channel.
func NewEmailChannel(gateway *GatewayClient) Channel {
	return &gatewayChannel{gateway: gateway, name: NameEmail, path: "/v1/email/send"}
}

type gatewayChannel struct {
	gateway *GatewayClient
	name    string
	path    string
}

func (c *gatewayChannel) Name() string {
	return c.name
}

func (c *gatewayChannel) Send(ctx context.Context, target Target, message string) (string, error) {
	to := target.Phone
	if c.name == NameEmail {
		to = target.Email
	}
	if to == "" {
		return "", fmt.Errorf("no %s target on account: %w", c.name, common.ErrValidation)
	}
	return c.gateway.send(ctx, c.path, to, message)
}
