// Package leads wires the lead intake pipeline and the lead management API
// into one HTTP module.
package leads

import (
	apphttp "leadcapture_backend/internal/http"
	"leadcapture_backend/internal/leads/handler"
	"leadcapture_backend/internal/leads/intake"
	"leadcapture_backend/internal/leads/service"
)

type Module struct {
	intakeHandler *intake.Handler
	leadHandler   *handler.Handler
}

// NewModule assembles the leads module from its services.
func NewModule(intakeSvc *intake.Service, leadSvc *service.Service) *Module {
	return &Module{
		intakeHandler: intake.NewHandler(intakeSvc),
		leadHandler:   handler.New(leadSvc),
	}
}

func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts the public intake endpoint behind the rate limiter
// and the management endpoints behind the tenant middleware.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.intakeHandler.RegisterRoutes(ctx.V1.Group("/intake"), ctx.IntakeLimiter)
	m.leadHandler.RegisterRoutes(ctx.Dashboard.Group("/leads"))
}
