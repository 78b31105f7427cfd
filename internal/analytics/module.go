package analytics

import (
	"time"

	"leadcapture_backend/internal/events"
	apphttp "leadcapture_backend/internal/http"
	"leadcapture_backend/internal/leads/repository"
	"leadcapture_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

type Module struct {
	service *Service
	handler *Handler
}

// NewModule assembles the analytics module. redisClient may be nil, in which
// case every request recomputes.
func NewModule(store repository.SnapshotStore, redisClient *redis.Client, cacheTTL time.Duration, maxRows int, bus events.Bus, log *logger.Logger) *Module {
	cache := NewCache(redisClient, cacheTTL, log)
	service := NewService(store, cache, log, maxRows)
	service.InvalidateOnLeadEvents(bus)

	return &Module{
		service: service,
		handler: NewHandler(service),
	}
}

func (m *Module) Name() string { return "analytics" }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Dashboard.Group("/analytics"))
}
