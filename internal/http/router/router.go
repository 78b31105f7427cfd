// Package router builds the Gin engine and mounts every module's routes.
package router

import (
	"net/http"
	"time"

	apphttp "leadcapture_backend/internal/http"
	"leadcapture_backend/internal/http/middleware"
	"leadcapture_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New builds the engine from the initialized application. Middleware order:
// recovery first, then correlation ID so every log line after it is tagged,
// then logging, metrics, and headers.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.CorrelationID())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(middleware.Metrics())
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(app.Config))

	engine.GET("/healthz", func(c *gin.Context) {
		if err := app.Health.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	intakeLimiter := httpkit.NewIntakeRateLimiter(
		app.Config.GetIntakeRatePerMinute(),
		app.Config.GetIntakeRateBurst(),
		app.Logger,
	)

	v1 := engine.Group("/api/v1")
	routerCtx := &apphttp.RouterContext{
		Engine:        engine,
		V1:            v1,
		Dashboard:     v1.Group("", middleware.RequireTenant()),
		IntakeLimiter: intakeLimiter.RateLimit(),
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(routerCtx)
		app.Logger.Info("module routes registered", "module", module.Name())
	}

	return engine
}

func corsMiddleware(cfg apphttp.RouterConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderTenantID, httpkit.HeaderCorrelationID},
		ExposeHeaders:    []string{httpkit.HeaderCorrelationID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.GetCORSOrigins()
	}
	return cors.New(corsCfg)
}
