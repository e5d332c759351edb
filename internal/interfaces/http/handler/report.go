package handler

import (
	"time"

	reportapp "github.com/erp/ledger/internal/application/report"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles aging report and tax return API endpoints
type ReportHandler struct {
	BaseHandler
	agingService *reportapp.AgingService
	taxService   *reportapp.TaxPeriodService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(agingService *reportapp.AgingService, taxService *reportapp.TaxPeriodService) *ReportHandler {
	return &ReportHandler{
		agingService: agingService,
		taxService:   taxService,
	}
}

// AgingReportRequest carries the aging report query parameters
type AgingReportRequest struct {
	AsOf     string `form:"as_of"`
	Currency string `form:"currency" binding:"omitempty,currency"`
}

// GenerateTaxReturnRequest is the request body for generating a period return
type GenerateTaxReturnRequest struct {
	Period   string `json:"period" binding:"required,tax_period"`
	Currency string `json:"currency" binding:"omitempty,currency"`
}

// RegisterRoutes registers report routes on the group
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/reports/aging", h.AgingReport)

	returns := rg.Group("/tax-returns")
	{
		returns.GET("", h.ListTaxReturns)
		returns.POST("", h.GenerateTaxReturn)
		returns.GET("/:period", h.GetTaxReturn)
		returns.POST("/:period/file", h.FileTaxReturn)
	}
}

// AgingReport builds a receivables aging snapshot
func (h *ReportHandler) AgingReport(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req AgingReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	var asOf time.Time
	if req.AsOf != "" {
		asOf, err = time.Parse(dateLayout, req.AsOf)
		if err != nil {
			h.BadRequest(c, "Invalid as_of, expected YYYY-MM-DD")
			return
		}
	}

	report, err := h.agingService.GenerateAgingReport(c.Request.Context(), tenantID, asOf, valueobject.Currency(req.Currency))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}

// GenerateTaxReturn aggregates a period's tax records into a return
func (h *ReportHandler) GenerateTaxReturn(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req GenerateTaxReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	ret, err := h.taxService.GenerateReturn(c.Request.Context(), tenantID, req.Period, valueobject.Currency(req.Currency))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ret)
}

// GetTaxReturn returns the period's tax return
func (h *ReportHandler) GetTaxReturn(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ret, err := h.taxService.GetReturn(c.Request.Context(), tenantID, c.Param("period"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ret)
}

// FileTaxReturn freezes the period's return
func (h *ReportHandler) FileTaxReturn(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	ret, err := h.taxService.FileReturn(c.Request.Context(), tenantID, c.Param("period"), getUserID(c))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, ret)
}

// ListTaxReturns returns stored tax returns for the tenant
func (h *ReportHandler) ListTaxReturns(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.taxService.ListReturns(c.Request.Context(), tenantID, toFilter(req))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
