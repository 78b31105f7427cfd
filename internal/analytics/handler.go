package analytics

import (
	"net/http"
	"strconv"

	"leadcapture_backend/internal/http/middleware"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/overview", h.overview)
	rg.GET("/reports/:type", h.report)
}

func (h *Handler) overview(c *gin.Context) {
	tenantID, params, ok := h.request(c)
	if !ok {
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), tenantID, params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, overview)
}

func (h *Handler) report(c *gin.Context) {
	tenantID, params, ok := h.request(c)
	if !ok {
		return
	}

	reportType := c.Param("type")
	r, cached, err := h.service.Report(c.Request.Context(), tenantID, reportType, params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	cacheLabel := "miss"
	if cached {
		cacheLabel = "hit"
	}
	middleware.RecordReportServed(reportType, cacheLabel)

	httpkit.OK(c, r)
}

// request parses the tenant and the shared query parameters.
func (h *Handler) request(c *gin.Context) (uuid.UUID, Params, bool) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, "tenant not resolved", nil)
		return uuid.Nil, Params{}, false
	}

	var params Params

	if raw := c.Query("period"); raw != "" {
		period, err := strconv.Atoi(raw)
		if err != nil {
			httpkit.HandleError(c, apperr.Validation("period must be a number of days", "period"))
			return uuid.Nil, Params{}, false
		}
		params.PeriodDays = period
	}
	period, err := ValidatePeriod(params.PeriodDays)
	if err != nil {
		httpkit.HandleError(c, err)
		return uuid.Nil, Params{}, false
	}
	params.PeriodDays = period

	if raw := c.Query("brandId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.HandleError(c, apperr.Validation("brandId must be a valid UUID", "brandId"))
			return uuid.Nil, Params{}, false
		}
		params.BrandID = &id
	}
	if raw := c.Query("operatorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.HandleError(c, apperr.Validation("operatorId must be a valid UUID", "operatorId"))
			return uuid.Nil, Params{}, false
		}
		params.OperatorID = &id
	}
	params.StatusSlug = c.Query("status")

	return tenantID, params, true
}
