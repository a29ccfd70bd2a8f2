package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	deductionapp "github.com/sacco/backend/internal/application/deduction"
	"github.com/sacco/backend/internal/domain/shared"
	"github.com/sacco/backend/internal/infrastructure/settlement"
	"github.com/sacco/backend/internal/interfaces/http/dto"
)

// ReconciliationHandler handles reconciliation API endpoints
type ReconciliationHandler struct {
	BaseHandler
	reconciliationService *deductionapp.ReconciliationService
	postingService        *deductionapp.JournalPostingService
	parser                *settlement.Parser
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(
	reconciliationService *deductionapp.ReconciliationService,
	postingService *deductionapp.JournalPostingService,
	parser *settlement.Parser,
) *ReconciliationHandler {
	return &ReconciliationHandler{
		reconciliationService: reconciliationService,
		postingService:        postingService,
		parser:                parser,
	}
}

// RegisterRoutes registers reconciliation routes
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reconciliations := rg.Group("/reconciliations")
	{
		reconciliations.POST("", h.Reconcile)
		reconciliations.GET("", h.List)
		reconciliations.GET("/:id", h.Get)
		reconciliations.POST("/:id/post-journals", h.PostJournals)
	}
}

// Reconcile accepts a settlement CSV upload for a payroll period and
// runs the matching pass against the period's deduction request.
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req dto.ReconcileUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BadRequest(c, "year and month form fields are required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "settlement file is required (multipart field 'file')")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "unable to read uploaded file")
		return
	}
	defer file.Close()

	parseResult, err := h.parser.Parse(file)
	if err != nil {
		h.ErrorWithCode(c, settlement.CodeFor(err), err.Error())
		return
	}

	result, err := h.reconciliationService.Reconcile(c.Request.Context(), deductionapp.ReconcileCommand{
		TenantID: tenantID,
		Year:     req.Year,
		Month:    req.Month,
		Records:  parseResult.Records,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.ReconcileUploadResponse{
		Parse: dto.ParseSummary{
			TotalRows: parseResult.TotalRows,
			GoodRows:  parseResult.GoodRows,
			RowErrors: parseResult.RowErrors,
		},
		Result: result,
	})
}

// List returns reconciliation batches for the tenant, newest period first
func (h *ReconciliationHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	var req dto.ReconciliationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.Normalize()

	filter := shared.DefaultFilter()
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	if req.Year != 0 {
		filter.Filters["year"] = req.Year
	}
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}

	result, err := h.reconciliationService.ListReconciliations(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get returns one reconciliation batch with its items and suspense entries
func (h *ReconciliationHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid batch ID")
		return
	}

	result, err := h.reconciliationService.GetReconciliation(c.Request.Context(), tenantID, batchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// PostJournals posts member ledger entries for every matched item in the batch
func (h *ReconciliationHandler) PostJournals(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant identification required")
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid batch ID")
		return
	}

	result, err := h.postingService.PostJournals(c.Request.Context(), tenantID, batchID)
	if err != nil {
		// A partial posting still carries a result worth returning
		var domainErr *shared.DomainError
		if result != nil && errors.As(err, &domainErr) && domainErr.Code == "POSTING_INCOMPLETE" {
			c.JSON(dto.GetHTTPStatus(dto.ErrCodeBusinessRule), dto.Response{
				Success: false,
				Data:    result,
				Error: &dto.ErrorInfo{
					Code:      dto.ErrCodeBusinessRule,
					Message:   domainErr.Message,
					RequestID: getRequestID(c),
				},
			})
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
