package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"customer_id":    true,
	"customer_name":  true,
	"status":         true,
	"total_amount":   true,
	"paid_amount":    true,
	"balance_due":    true,
	"issue_date":     true,
	"due_date":       true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"payment_number": true,
	"invoice_id":     true,
	"amount":         true,
	"method":         true,
	"payment_date":   true,
}

// InstallmentPlanSortFields contains allowed sort fields for installment plans
var InstallmentPlanSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"invoice_id":        true,
	"customer_id":       true,
	"status":            true,
	"total_amount":      true,
	"remaining_balance": true,
	"start_date":        true,
	"end_date":          true,
}

// ExchangeRateSortFields contains allowed sort fields for exchange rates
var ExchangeRateSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"from_currency":  true,
	"to_currency":    true,
	"rate":           true,
	"effective_date": true,
	"source":         true,
}

// TaxRecordSortFields contains allowed sort fields for tax records
var TaxRecordSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"direction":        true,
	"source_number":    true,
	"taxable_amount":   true,
	"tax_amount":       true,
	"transaction_date": true,
}

// TaxReturnSortFields contains allowed sort fields for tax returns
var TaxReturnSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"period":      true,
	"status":      true,
	"net_tax_due": true,
}
