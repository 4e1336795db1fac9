// Package router assembles the Gin engine from the application's modules.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/platform/httpkit"
)

// New builds the HTTP engine: global middleware, health endpoint, the
// /api/v1 groups, and every module's routes.
func New(app *apphttp.App) *gin.Engine {
	if app.Config.GetEnv() != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(app)))

	engine.GET("/api/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "ok"
		code := http.StatusOK
		if app.Health != nil {
			if err := app.Health.Ping(ctx); err != nil {
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{"status": status})
	})

	v1 := engine.Group("/api/v1")

	protected := v1.Group("")
	protected.Use(httpkit.AuthRequired(app.Config))

	routerCtx := &apphttp.RouterContext{
		Engine:             engine,
		V1:                 v1,
		Protected:          protected,
		WebhookRateLimiter: httpkit.NewIPRateLimiter(1, 5, app.Logger),
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(routerCtx)
		app.Logger.Info("registered module routes", "module", module.Name())
	}

	return engine
}

func corsConfig(app *apphttp.App) cors.Config {
	cfg := cors.DefaultConfig()
	if app.Config.GetCORSAllowAll() {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = app.Config.GetCORSOrigins()
		cfg.AllowCredentials = true
	}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}
