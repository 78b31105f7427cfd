// Package handler exposes the lead management endpoints used by the
// dashboard.
package handler

import (
	"net/http"

	"leadcapture_backend/internal/http/middleware"
	"leadcapture_backend/internal/leads/repository"
	"leadcapture_backend/internal/leads/service"
	"leadcapture_backend/internal/leads/transport"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.PUT("/:id/status", h.updateStatus)
	rg.PUT("/:id/assign", h.assign)
	rg.DELETE("/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, "tenant not resolved", nil)
		return
	}

	var query transport.ListLeadsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid query parameters"))
		return
	}

	params := service.ListParams{
		OrderBy: query.OrderBy,
		Page:    repository.Pagination{Page: query.Page, PerPage: query.PerPage},
		Filters: repository.QueryFilters{
			StatusSlug: query.Status,
			Category:   query.Category,
			Source:     query.Source,
		},
	}
	if query.BrandID != "" {
		id, err := uuid.Parse(query.BrandID)
		if err != nil {
			httpkit.HandleError(c, apperr.Validation("brandId must be a valid UUID", "brandId"))
			return
		}
		params.Filters.BrandID = &id
	}
	if query.OperatorID != "" {
		id, err := uuid.Parse(query.OperatorID)
		if err != nil {
			httpkit.HandleError(c, apperr.Validation("operatorId must be a valid UUID", "operatorId"))
			return
		}
		params.Filters.OperatorID = &id
	}

	leads, total, err := h.service.List(c.Request.Context(), tenantID, params)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	page := params.Page.Page
	if page < 1 {
		page = 1
	}
	perPage := params.Page.PerPage
	if perPage < 1 {
		perPage = 25
	}

	httpkit.OK(c, transport.ListLeadsResponse{
		Leads:   transport.FromLeads(leads),
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

func (h *Handler) create(c *gin.Context) {
	tenantID, ok := middleware.TenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, "tenant not resolved", nil)
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}

	brandID, err := uuid.Parse(req.BrandID)
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("brandId must be a valid UUID", "brandId"))
		return
	}

	fields := service.CreateFields{
		BrandID:          brandID,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		City:             req.City,
		State:            req.State,
		Source:           req.Source,
		Document:         req.Document,
		CapitalAvailable: req.CapitalAvailable,
		Message:          req.Message,
	}
	if req.OperatorID != nil {
		id, err := uuid.Parse(*req.OperatorID)
		if err != nil {
			httpkit.HandleError(c, apperr.Validation("operatorId must be a valid UUID", "operatorId"))
			return
		}
		fields.OperatorID = &id
	}

	lead, err := h.service.Create(c.Request.Context(), tenantID, fields)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.FromLead(lead))
}

func (h *Handler) get(c *gin.Context) {
	tenantID, leadID, ok := h.ids(c)
	if !ok {
		return
	}

	lead, err := h.service.Get(c.Request.Context(), tenantID, leadID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.FromLead(lead))
}

func (h *Handler) update(c *gin.Context) {
	tenantID, leadID, ok := h.ids(c)
	if !ok {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}

	lead, err := h.service.Update(c.Request.Context(), tenantID, leadID, service.UpdateFields{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		City:             req.City,
		State:            req.State,
		CapitalAvailable: req.CapitalAvailable,
		Message:          req.Message,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.FromLead(lead))
}

func (h *Handler) updateStatus(c *gin.Context) {
	tenantID, leadID, ok := h.ids(c)
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}

	var lossReasonID *uuid.UUID
	if req.LossReasonID != nil {
		id, err := uuid.Parse(*req.LossReasonID)
		if err != nil {
			httpkit.HandleError(c, apperr.Validation("lossReasonId must be a valid UUID", "lossReasonId"))
			return
		}
		lossReasonID = &id
	}

	lead, err := h.service.UpdateStatus(c.Request.Context(), tenantID, leadID, req.StatusSlug, lossReasonID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.FromLead(lead))
}

func (h *Handler) assign(c *gin.Context) {
	tenantID, leadID, ok := h.ids(c)
	if !ok {
		return
	}

	var req transport.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}

	var operatorID *uuid.UUID
	if req.OperatorID != nil {
		id, err := uuid.Parse(*req.OperatorID)
		if err != nil {
			httpkit.HandleError(c, apperr.Validation("operatorId must be a valid UUID", "operatorId"))
			return
		}
		operatorID = &id
	}

	lead, err := h.service.Assign(c.Request.Context(), tenantID, leadID, operatorID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.FromLead(lead))
}

func (h *Handler) remove(c *gin.Context) {
	tenantID, leadID, ok := h.ids(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), tenantID, leadID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ids(c *gin.Context) (tenantID, leadID uuid.UUID, ok bool) {
	tenantID, ok = middleware.TenantID(c)
	if !ok {
		httpkit.Error(c, http.StatusBadRequest, "tenant not resolved", nil)
		return uuid.Nil, uuid.Nil, false
	}
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("lead id must be a valid UUID", "id"))
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, leadID, true
}
