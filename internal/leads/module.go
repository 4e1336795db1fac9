// Package leads provides the lead store and operator read API.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/service"
	"leadflow_backend/platform/validator"
)

// Module wires the leads repository, service and HTTP handler.
type Module struct {
	handler    *handler.Handler
	service    *service.Service
	repository *repository.Repository
}

// NewModule creates the leads module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{
		handler:    h,
		service:    svc,
		repository: repo,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "leads"
}

// Repository exposes the lead store for the intake pipeline and workers.
func (m *Module) Repository() *repository.Repository {
	return m.repository
}

// RegisterRoutes mounts the operator API under the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

var _ apphttp.Module = (*Module)(nil)
