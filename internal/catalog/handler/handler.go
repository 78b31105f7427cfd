// Package handler exposes the tenant reference data endpoints.
package handler

import (
	"net/http"

	"leadcapture_backend/internal/catalog/repository"
	"leadcapture_backend/internal/http/middleware"
	"leadcapture_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	repo *repository.Repo
}

func New(repo *repository.Repo) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/brands", h.listBrands)
	rg.GET("/statuses", h.listStatuses)
	rg.GET("/loss-reasons", h.listLossReasons)
	rg.GET("/operators", h.listOperators)
}

func (h *Handler) tenant(c *gin.Context) (uuid.UUID, bool) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, "tenant not resolved", nil)
	}
	return tenantID, ok
}

func (h *Handler) listBrands(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	brands, err := h.repo.ListBrands(c.Request.Context(), tenantID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"brands": brands})
}

func (h *Handler) listStatuses(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	statuses, err := h.repo.ListStatuses(c.Request.Context(), tenantID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"statuses": statuses})
}

func (h *Handler) listLossReasons(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	reasons, err := h.repo.ListLossReasons(c.Request.Context(), tenantID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"lossReasons": reasons})
}

func (h *Handler) listOperators(c *gin.Context) {
	tenantID, ok := h.tenant(c)
	if !ok {
		return
	}
	operators, err := h.repo.ListOperators(c.Request.Context(), tenantID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"operators": operators})
}
