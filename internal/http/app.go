// Package http wires the application's modules into one HTTP surface.
package http

import (
	"context"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// RouterConfig is the slice of configuration the router needs: server
// settings plus the JWT material for the protected group.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker answers the readiness probe, typically a database ping.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is the assembled application handed from main to the router. It owns
// no lifecycle; construction and shutdown stay in the composition root.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
}
