package handler

import (
	"time"

	billingapp "github.com/erp/ledger/internal/application/billing"
	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentHandler handles installment plan API endpoints
type InstallmentHandler struct {
	BaseHandler
	installmentService *billingapp.InstallmentService
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(installmentService *billingapp.InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{installmentService: installmentService}
}

// CreatePlanRequest is the request body for scheduling an invoice balance
type CreatePlanRequest struct {
	InvoiceID            string   `json:"invoice_id" binding:"required,uuid"`
	PlanName             string   `json:"plan_name" binding:"omitempty,max=200"`
	NumberOfInstallments int      `json:"number_of_installments" binding:"required,min=2,max=24"`
	Frequency            string   `json:"frequency" binding:"required,oneof=WEEKLY BIWEEKLY MONTHLY"`
	StartDate            string   `json:"start_date" binding:"required"`
	ProcessingFee        float64  `json:"processing_fee" binding:"omitempty,gte=0"`
	InterestRate         *float64 `json:"interest_rate" binding:"omitempty,gte=0"`
	AutoPay              bool     `json:"auto_pay"`
	PaymentMethodHint    string   `json:"payment_method_hint" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER DIGITAL_WALLET CHEQUE"`
}

// UpdatePlanRequest is the request body for changing a plan. Omitted fields
// are left untouched.
type UpdatePlanRequest struct {
	PlanName             *string `json:"plan_name" binding:"omitempty,max=200"`
	NumberOfInstallments *int    `json:"number_of_installments" binding:"omitempty,min=2,max=24"`
	Frequency            *string `json:"frequency" binding:"omitempty,oneof=WEEKLY BIWEEKLY MONTHLY"`
	StartDate            *string `json:"start_date"`
	AutoPay              *bool   `json:"auto_pay"`
	PaymentMethodHint    *string `json:"payment_method_hint" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER DIGITAL_WALLET CHEQUE"`
}

// CancelPlanRequest is the request body for cancelling a plan
type CancelPlanRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ListPlansRequest carries the plan list query parameters
type ListPlansRequest struct {
	dto.ListRequest
	InvoiceID  string `form:"invoice_id" binding:"omitempty,uuid"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Status     string `form:"status"`
}

// RegisterRoutes registers installment plan routes on the group
func (h *InstallmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	plans := rg.Group("/installment-plans")
	{
		plans.GET("", h.ListPlans)
		plans.POST("", h.CreatePlan)
		plans.GET("/:id", h.GetPlan)
		plans.PUT("/:id", h.UpdatePlan)
		plans.POST("/:id/cancel", h.CancelPlan)
		plans.DELETE("/:id", h.DeletePlan)
	}
}

// CreatePlan schedules an invoice balance into installments
func (h *InstallmentHandler) CreatePlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		return
	}

	var interestRate *decimal.Decimal
	if req.InterestRate != nil {
		rate := decimal.NewFromFloat(*req.InterestRate)
		interestRate = &rate
	}

	result, err := h.installmentService.CreatePlan(c.Request.Context(), billingapp.CreatePlanRequest{
		TenantID:             tenantID,
		InvoiceID:            invoiceID,
		PlanName:             req.PlanName,
		NumberOfInstallments: req.NumberOfInstallments,
		Frequency:            billing.PlanFrequency(req.Frequency),
		StartDate:            startDate,
		ProcessingFee:        decimal.NewFromFloat(req.ProcessingFee),
		InterestRate:         interestRate,
		AutoPay:              req.AutoPay,
		PaymentMethodHint:    billing.PaymentMethod(req.PaymentMethodHint),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// GetPlan returns a plan with its schedule
func (h *InstallmentHandler) GetPlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	result, err := h.installmentService.GetPlan(c.Request.Context(), tenantID, planID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListPlans returns a paginated plan list
func (h *InstallmentHandler) ListPlans(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ListPlansRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := billing.PlanFilter{Filter: toFilter(req.ListRequest)}
	if req.InvoiceID != "" {
		id := uuid.MustParse(req.InvoiceID)
		filter.InvoiceID = &id
	}
	if req.CustomerID != "" {
		id := uuid.MustParse(req.CustomerID)
		filter.CustomerID = &id
	}
	for _, s := range splitCSV(req.Status) {
		status := billing.PlanStatus(s)
		if !status.IsValid() {
			h.BadRequest(c, errInvalidStatus(s).Error())
			return
		}
		filter.Status = append(filter.Status, status)
	}

	page, err := h.installmentService.ListPlans(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// UpdatePlan applies plan changes, reshaping the schedule when requested
func (h *InstallmentHandler) UpdatePlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	var req UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	update := billingapp.UpdatePlanRequest{
		TenantID:             tenantID,
		PlanID:               planID,
		PlanName:             req.PlanName,
		NumberOfInstallments: req.NumberOfInstallments,
		AutoPay:              req.AutoPay,
	}
	if req.Frequency != nil {
		freq := billing.PlanFrequency(*req.Frequency)
		update.Frequency = &freq
	}
	if req.StartDate != nil {
		startDate, err := time.Parse(dateLayout, *req.StartDate)
		if err != nil {
			h.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
			return
		}
		update.StartDate = &startDate
	}
	if req.PaymentMethodHint != nil {
		hint := billing.PaymentMethod(*req.PaymentMethodHint)
		update.PaymentMethodHint = &hint
	}

	result, err := h.installmentService.UpdatePlan(c.Request.Context(), update)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// CancelPlan cancels an active plan
func (h *InstallmentHandler) CancelPlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	var req CancelPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	plan, err := h.installmentService.CancelPlan(c.Request.Context(), tenantID, planID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, plan)
}

// DeletePlan removes a plan that has collected nothing
func (h *InstallmentHandler) DeletePlan(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid plan ID format")
		return
	}

	if err := h.installmentService.DeletePlan(c.Request.Context(), tenantID, planID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
