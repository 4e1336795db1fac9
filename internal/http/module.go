package http

import (
	"github.com/gin-gonic/gin"

	"leadflow_backend/platform/httpkit"
)

// Module is implemented by each bounded context that exposes HTTP routes.
// The router only knows how to mount modules; the endpoints themselves stay
// inside the owning package.
type Module interface {
	// Name identifies the module in startup logs.
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups a module can mount on.
type RouterContext struct {
	// Engine is the root engine, for routes outside /api/v1.
	Engine *gin.Engine
	// V1 is the public /api/v1 group.
	V1 *gin.RouterGroup
	// Protected is the JWT-guarded group under /api/v1.
	Protected *gin.RouterGroup
	// WebhookRateLimiter throttles the unauthenticated webhook intake.
	WebhookRateLimiter *httpkit.IPRateLimiter
}
