package intake

import (
	"net/http"

	"leadcapture_backend/internal/http/middleware"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the public intake endpoint. It is unauthenticated by
// design; abuse is contained by the per-IP rate limiter mounted in front.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, limiter gin.HandlerFunc) {
	rg.POST("/leads", limiter, h.submit)
}

func (h *Handler) submit(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("request body must be a JSON object"))
		return
	}

	tenantID, err := payloadUUID(payload, "tenant_id")
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	brandID, err := payloadUUID(payload, "brand_id")
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	channel, _ := payload["source"].(string)
	if channel == "" {
		channel = "api"
	}

	result, err := h.service.Submit(c.Request.Context(), Submission{
		TenantID: tenantID,
		BrandID:  brandID,
		Payload:  payload,
		Channel:  channel,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	if result.Duplicate {
		middleware.RecordLeadDuplicated()
		httpkit.JSON(c, http.StatusOK, gin.H{
			"success":    true,
			"duplicated": true,
			"leadId":     result.Lead.ID,
		})
		return
	}

	middleware.RecordLeadReceived(string(result.Lead.Category), result.Lead.Source)
	httpkit.JSON(c, http.StatusCreated, gin.H{
		"success":  true,
		"leadId":   result.Lead.ID,
		"score":    result.Lead.Score,
		"category": result.Lead.Category,
	})
}

func payloadUUID(payload map[string]any, key string) (uuid.UUID, error) {
	raw, _ := payload[key].(string)
	if raw == "" {
		return uuid.Nil, apperr.Validation(key+" is required", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation(key+" must be a valid UUID", key)
	}
	return id, nil
}
