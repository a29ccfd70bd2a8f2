package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	deductionapp "github.com/sacco/backend/internal/application/deduction"
	"github.com/sacco/backend/internal/domain/deduction"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/sacco/backend/internal/interfaces/http/dto"
)

// SuspenseHandler handles suspense queue API endpoints
type SuspenseHandler struct {
	BaseHandler
	suspenseService *deductionapp.SuspenseService
}

// NewSuspenseHandler creates a new SuspenseHandler
func NewSuspenseHandler(suspenseService *deductionapp.SuspenseService) *SuspenseHandler {
	return &SuspenseHandler{suspenseService: suspenseService}
}

// RegisterRoutes registers suspense routes
func (h *SuspenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	suspense := rg.Group("/suspense")
	{
		suspense.GET("", h.List)
		suspense.POST("/:id/allocate", h.Allocate)
		suspense.POST("/:id/refund", h.Refund)
		suspense.POST("/:id/write-off", h.WriteOff)
	}
}

// List returns suspense entries for the tenant, optionally filtered by status
func (h *SuspenseHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req dto.SuspenseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	var status *deduction.SuspenseStatus
	if req.Status != "" {
		s := deduction.SuspenseStatus(req.Status)
		status = &s
	}

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize

	result, err := h.suspenseService.List(c.Request.Context(), tenantID, status, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Allocate resolves a suspense entry by crediting it to a member's savings
func (h *SuspenseHandler) Allocate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid suspense entry ID")
		return
	}

	var req dto.AllocateSuspenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	memberID, err := uuid.Parse(req.MemberID)
	if err != nil {
		h.BadRequest(c, "invalid member ID")
		return
	}

	entry, err := h.suspenseService.Allocate(c.Request.Context(), tenantID, entryID, memberID, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}

// Refund resolves a suspense entry by returning the funds to MoF
func (h *SuspenseHandler) Refund(c *gin.Context) {
	h.resolve(c, h.suspenseService.Refund)
}

// WriteOff resolves a suspense entry by writing the amount off to income
func (h *SuspenseHandler) WriteOff(c *gin.Context) {
	h.resolve(c, h.suspenseService.WriteOff)
}

func (h *SuspenseHandler) resolve(
	c *gin.Context,
	fn func(ctx context.Context, tenantID, entryID uuid.UUID, notes string) (*deduction.SuspenseEntry, error),
) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid suspense entry ID")
		return
	}

	var req dto.ResolveSuspenseRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	entry, err := fn(c.Request.Context(), tenantID, entryID, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, entry)
}
