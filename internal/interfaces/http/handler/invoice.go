package handler

import (
	"time"

	billingapp "github.com/erp/ledger/internal/application/billing"
	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// dateLayout is the wire format for date-only fields
const dateLayout = "2006-01-02"

// InvoiceHandler handles invoice and payment API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// CreateInvoiceRequest is the request body for issuing an invoice
type CreateInvoiceRequest struct {
	CustomerID        string  `json:"customer_id" binding:"required,uuid"`
	SourceOrderID     string  `json:"source_order_id" binding:"omitempty,uuid"`
	SourceOrderNumber string  `json:"source_order_number" binding:"omitempty,max=50"`
	Type              string  `json:"type" binding:"omitempty,oneof=STANDARD PROFORMA RECURRING PARTIAL CREDIT_NOTE DEBIT_NOTE"`
	Subtotal          float64 `json:"subtotal" binding:"required,gt=0"`
	TaxRate           float64 `json:"tax_rate" binding:"omitempty,gte=0"`
	TaxAmount         float64 `json:"tax_amount" binding:"omitempty,gte=0"`
	DiscountAmount    float64 `json:"discount_amount" binding:"omitempty,gte=0"`
	CurrencyCode      string  `json:"currency_code" binding:"omitempty,currency"`
	IssueDate         string  `json:"issue_date" binding:"omitempty"`
	DueDate           string  `json:"due_date" binding:"omitempty"`
	ReverseCharge     bool    `json:"reverse_charge"`
	Remark            string  `json:"remark" binding:"omitempty,max=500"`
}

// ApplyPaymentRequest is the request body for applying a payment
type ApplyPaymentRequest struct {
	Amount          float64 `json:"amount" binding:"required,gt=0"`
	CurrencyCode    string  `json:"currency_code" binding:"omitempty,currency"`
	Method          string  `json:"method" binding:"required,oneof=CASH CARD BANK_TRANSFER DIGITAL_WALLET CHEQUE"`
	PaymentDate     string  `json:"payment_date" binding:"omitempty"`
	TransactionRef  string  `json:"transaction_ref" binding:"omitempty,max=100"`
	Notes           string  `json:"notes" binding:"omitempty,max=500"`
	ApplyToLateFees bool    `json:"apply_to_late_fees"`
}

// CancelInvoiceRequest is the request body for cancelling an invoice
type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// RecordLateFeeRequest is the request body for accruing a late fee
type RecordLateFeeRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
	Reason string  `json:"reason" binding:"omitempty,max=500"`
}

// ListInvoicesRequest carries the invoice list query parameters
type ListInvoicesRequest struct {
	dto.ListRequest
	CustomerID    string `form:"customer_id" binding:"omitempty,uuid"`
	Status        string `form:"status"`
	Type          string `form:"type" binding:"omitempty,oneof=STANDARD PROFORMA RECURRING PARTIAL CREDIT_NOTE DEBIT_NOTE"`
	CurrencyCode  string `form:"currency_code" binding:"omitempty,currency"`
	IssuedFrom    string `form:"issued_from"`
	IssuedTo      string `form:"issued_to"`
	DueFrom       string `form:"due_from"`
	DueTo         string `form:"due_to"`
	Overdue       bool   `form:"overdue"`
	SourceOrderID string `form:"source_order_id" binding:"omitempty,uuid"`
}

// ListPaymentsRequest carries the payment search query parameters
type ListPaymentsRequest struct {
	dto.ListRequest
	InvoiceID string `form:"invoice_id" binding:"omitempty,uuid"`
	Method    string `form:"method" binding:"omitempty,oneof=CASH CARD BANK_TRANSFER DIGITAL_WALLET CHEQUE"`
	PaidFrom  string `form:"paid_from"`
	PaidTo    string `form:"paid_to"`
}

// RegisterRoutes registers invoice routes on the group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.POST("", h.CreateInvoice)
		invoices.GET("/:id", h.GetInvoice)
		invoices.POST("/:id/cancel", h.CancelInvoice)
		invoices.GET("/:id/payments", h.ListInvoicePayments)
		invoices.POST("/:id/payments", h.ApplyPayment)
		invoices.GET("/:id/late-fees", h.ListLateFees)
		invoices.POST("/:id/late-fees", h.RecordLateFee)
	}

	rg.GET("/payments", h.ListPayments)
}

// CreateInvoice issues a new invoice
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	issueDate := time.Now()
	if req.IssueDate != "" {
		issueDate, err = time.Parse(dateLayout, req.IssueDate)
		if err != nil {
			h.BadRequest(c, "Invalid issue_date, expected YYYY-MM-DD")
			return
		}
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			h.BadRequest(c, "Invalid due_date, expected YYYY-MM-DD")
			return
		}
		dueDate = &parsed
	}

	var sourceOrderID *uuid.UUID
	if req.SourceOrderID != "" {
		parsed, err := uuid.Parse(req.SourceOrderID)
		if err != nil {
			h.BadRequest(c, "Invalid source order ID format")
			return
		}
		sourceOrderID = &parsed
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), billingapp.CreateInvoiceRequest{
		TenantID:          tenantID,
		CustomerID:        customerID,
		SourceOrderID:     sourceOrderID,
		SourceOrderNumber: req.SourceOrderNumber,
		Type:              billing.InvoiceType(req.Type),
		Subtotal:          decimal.NewFromFloat(req.Subtotal),
		TaxRate:           decimal.NewFromFloat(req.TaxRate),
		TaxAmount:         decimal.NewFromFloat(req.TaxAmount),
		DiscountAmount:    decimal.NewFromFloat(req.DiscountAmount),
		CurrencyCode:      valueobject.Currency(req.CurrencyCode),
		IssueDate:         issueDate,
		DueDate:           dueDate,
		ReverseCharge:     req.ReverseCharge,
		Remark:            req.Remark,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, invoice)
}

// GetInvoice returns an invoice by ID
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// ListInvoices returns a paginated invoice list
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter, err := buildInvoiceFilter(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.invoiceService.ListInvoices(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// CancelInvoice cancels an unpaid invoice
func (h *InvoiceHandler) CancelInvoice(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), tenantID, invoiceID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, invoice)
}

// ApplyPayment applies a payment to an invoice
func (h *InvoiceHandler) ApplyPayment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	var paymentDate time.Time
	if req.PaymentDate != "" {
		paymentDate, err = time.Parse(dateLayout, req.PaymentDate)
		if err != nil {
			h.BadRequest(c, "Invalid payment_date, expected YYYY-MM-DD")
			return
		}
	}

	result, err := h.invoiceService.ApplyPayment(c.Request.Context(), billingapp.ApplyPaymentRequest{
		TenantID:        tenantID,
		InvoiceID:       invoiceID,
		Amount:          decimal.NewFromFloat(req.Amount),
		CurrencyCode:    valueobject.Currency(req.CurrencyCode),
		Method:          billing.PaymentMethod(req.Method),
		PaymentDate:     paymentDate,
		TransactionRef:  req.TransactionRef,
		Notes:           req.Notes,
		ApplyToLateFees: req.ApplyToLateFees,
		OperatorID:      getUserID(c),
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// ListInvoicePayments returns the payments recorded against an invoice
func (h *InvoiceHandler) ListInvoicePayments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	payments, err := h.invoiceService.ListPayments(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}

// ListPayments searches payments across invoices
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := billing.PaymentFilter{Filter: toFilter(req.ListRequest)}
	if req.InvoiceID != "" {
		id := uuid.MustParse(req.InvoiceID)
		filter.InvoiceID = &id
	}
	if req.Method != "" {
		method := billing.PaymentMethod(req.Method)
		filter.Method = &method
	}
	var parseErr error
	if filter.PaidFrom, parseErr = parseDatePtr(req.PaidFrom); parseErr != nil {
		h.BadRequest(c, "Invalid paid_from, expected YYYY-MM-DD")
		return
	}
	if filter.PaidTo, parseErr = parseDatePtr(req.PaidTo); parseErr != nil {
		h.BadRequest(c, "Invalid paid_to, expected YYYY-MM-DD")
		return
	}

	page, err := h.invoiceService.SearchPayments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// RecordLateFee accrues a late fee charge on an invoice
func (h *InvoiceHandler) RecordLateFee(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req RecordLateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	fee, err := h.invoiceService.RecordLateFee(c.Request.Context(), tenantID, invoiceID, decimal.NewFromFloat(req.Amount), req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, fee)
}

// ListLateFees returns the late fee charges recorded against an invoice
func (h *InvoiceHandler) ListLateFees(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	fees, err := h.invoiceService.ListLateFees(c.Request.Context(), tenantID, invoiceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, fees)
}

func buildInvoiceFilter(req ListInvoicesRequest) (billing.InvoiceFilter, error) {
	filter := billing.InvoiceFilter{Filter: toFilter(req.ListRequest)}

	if req.CustomerID != "" {
		id := uuid.MustParse(req.CustomerID)
		filter.CustomerID = &id
	}
	if req.SourceOrderID != "" {
		id := uuid.MustParse(req.SourceOrderID)
		filter.SourceOrderID = &id
	}
	if req.Status != "" {
		for _, s := range splitCSV(req.Status) {
			status := billing.InvoiceStatus(s)
			if !status.IsValid() {
				return filter, errInvalidStatus(s)
			}
			filter.Status = append(filter.Status, status)
		}
	}
	if req.Type != "" {
		t := billing.InvoiceType(req.Type)
		filter.Type = &t
	}
	filter.CurrencyCode = req.CurrencyCode

	var err error
	if filter.IssuedFrom, err = parseDatePtr(req.IssuedFrom); err != nil {
		return filter, err
	}
	if filter.IssuedTo, err = parseDatePtr(req.IssuedTo); err != nil {
		return filter, err
	}
	if filter.DueFrom, err = parseDatePtr(req.DueFrom); err != nil {
		return filter, err
	}
	if filter.DueTo, err = parseDatePtr(req.DueTo); err != nil {
		return filter, err
	}
	if req.Overdue {
		now := time.Now()
		filter.OverdueAsOf = &now
	}
	return filter, nil
}
