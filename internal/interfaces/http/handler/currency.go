package handler

import (
	"time"

	currencyapp "github.com/erp/ledger/internal/application/currency"
	"github.com/erp/ledger/internal/domain/currency"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CurrencyHandler handles exchange rate and conversion API endpoints
type CurrencyHandler struct {
	BaseHandler
	conversionService *currencyapp.ConversionService
}

// NewCurrencyHandler creates a new CurrencyHandler
func NewCurrencyHandler(conversionService *currencyapp.ConversionService) *CurrencyHandler {
	return &CurrencyHandler{conversionService: conversionService}
}

// RecordRateRequest is the request body for storing an exchange rate
type RecordRateRequest struct {
	FromCurrency  string  `json:"from_currency" binding:"required,currency"`
	ToCurrency    string  `json:"to_currency" binding:"required,currency"`
	Rate          float64 `json:"rate" binding:"required,gt=0"`
	EffectiveDate string  `json:"effective_date" binding:"required"`
}

// ConvertRequest carries the conversion query parameters
type ConvertRequest struct {
	Amount float64 `form:"amount" binding:"required,gt=0"`
	From   string  `form:"from" binding:"required,currency"`
	To     string  `form:"to" binding:"required,currency"`
	AsOf   string  `form:"as_of"`
}

// ListRatesRequest carries the rate list query parameters
type ListRatesRequest struct {
	dto.ListRequest
	FromCurrency  string `form:"from_currency" binding:"omitempty,currency"`
	ToCurrency    string `form:"to_currency" binding:"omitempty,currency"`
	EffectiveFrom string `form:"effective_from"`
	EffectiveTo   string `form:"effective_to"`
	Source        string `form:"source" binding:"omitempty,oneof=MANUAL FALLBACK"`
}

// RegisterRoutes registers currency routes on the group
func (h *CurrencyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rates := rg.Group("/exchange-rates")
	{
		rates.GET("", h.ListRates)
		rates.POST("", h.RecordRate)
	}

	rg.GET("/convert", h.Convert)
}

// RecordRate stores an operator-entered exchange rate
func (h *CurrencyHandler) RecordRate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req RecordRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	effectiveDate, err := time.Parse(dateLayout, req.EffectiveDate)
	if err != nil {
		h.BadRequest(c, "Invalid effective_date, expected YYYY-MM-DD")
		return
	}

	rate, err := h.conversionService.RecordRate(
		c.Request.Context(),
		tenantID,
		valueobject.Currency(req.FromCurrency),
		valueobject.Currency(req.ToCurrency),
		decimal.NewFromFloat(req.Rate),
		effectiveDate,
		getUserID(c),
	)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, rate)
}

// ListRates returns stored exchange rates
func (h *CurrencyHandler) ListRates(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ListRatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := currency.RateFilter{
		Filter:       toFilter(req.ListRequest),
		FromCurrency: valueobject.Currency(req.FromCurrency),
		ToCurrency:   valueobject.Currency(req.ToCurrency),
	}
	var parseErr error
	if filter.EffectiveFrom, parseErr = parseDatePtr(req.EffectiveFrom); parseErr != nil {
		h.BadRequest(c, "Invalid effective_from, expected YYYY-MM-DD")
		return
	}
	if filter.EffectiveTo, parseErr = parseDatePtr(req.EffectiveTo); parseErr != nil {
		h.BadRequest(c, "Invalid effective_to, expected YYYY-MM-DD")
		return
	}
	if req.Source != "" {
		source := currency.RateSource(req.Source)
		filter.Source = &source
	}

	page, err := h.conversionService.ListRates(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Convert converts an amount between currencies at the effective rate
func (h *CurrencyHandler) Convert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req ConvertRequest
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

	result, err := h.conversionService.Convert(
		c.Request.Context(),
		tenantID,
		decimal.NewFromFloat(req.Amount),
		valueobject.Currency(req.From),
		valueobject.Currency(req.To),
		asOf,
	)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
