// Package catalog serves the tenant reference data (brands, statuses,
// loss reasons, operators) the dashboard filters and the lead pipeline
// classify against.
package catalog

import (
	"leadcapture_backend/internal/catalog/handler"
	"leadcapture_backend/internal/catalog/repository"
	apphttp "leadcapture_backend/internal/http"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	repo    *repository.Repo
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool) *Module {
	repo := repository.New(pool)
	return &Module{
		repo:    repo,
		handler: handler.New(repo),
	}
}

func (m *Module) Name() string { return "catalog" }

// Repository exposes the catalog store so other modules can resolve
// reference data (the intake pipeline resolves the initial status slug).
func (m *Module) Repository() *repository.Repo { return m.repo }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Dashboard.Group("/catalog"))
}
