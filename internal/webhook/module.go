// Package webhook receives inbound message callbacks from the channel
// gateway and feeds them to the intake pipeline.
package webhook

import (
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// Module is the webhook bounded context implementing http.Module.
type Module struct {
	handler *Handler
	secret  string
}

// NewModule creates the webhook module.
func NewModule(dispatcher Dispatcher, cfg config.ChannelConfig, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(dispatcher, log),
		secret:  cfg.GetWebhookSecret(),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the public webhook endpoint. No JWT: the gateway
// authenticates with a body signature, and a per-IP rate limit caps abuse.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhook")
	if ctx.WebhookRateLimiter != nil {
		group.Use(ctx.WebhookRateLimiter.RateLimit())
	}
	group.Use(SignatureAuthMiddleware(m.secret))
	group.POST("/messages", m.handler.HandleMessage)
}

var _ apphttp.Module = (*Module)(nil)
