package dto

import "net/http"

// Generic API error codes
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps domain and API error codes to HTTP status codes.
// Codes missing from this map fall back to 500 so a new domain code cannot
// silently masquerade as a client error.
var errorCodeHTTPStatus = map[string]int{
	// Input validation
	ErrCodeBadRequest:           http.StatusBadRequest,
	ErrCodeValidation:           http.StatusBadRequest,
	"INVALID_INPUT":             http.StatusBadRequest,
	"INVALID_AMOUNT":            http.StatusBadRequest,
	"INVALID_CURRENCY":          http.StatusBadRequest,
	"INVALID_CURRENCY_PAIR":     http.StatusBadRequest,
	"INVALID_CUSTOMER":          http.StatusBadRequest,
	"INVALID_CUSTOMER_NAME":     http.StatusBadRequest,
	"INVALID_FREQUENCY":         http.StatusBadRequest,
	"INVALID_INSTALLMENT_COUNT": http.StatusBadRequest,
	"INVALID_INVOICE":           http.StatusBadRequest,
	"INVALID_INVOICE_NUMBER":    http.StatusBadRequest,
	"INVALID_INVOICE_TYPE":      http.StatusBadRequest,
	"INVALID_PAYMENT_METHOD":    http.StatusBadRequest,
	"INVALID_PAYMENT_NUMBER":    http.StatusBadRequest,
	"INVALID_PERIOD":            http.StatusBadRequest,
	"INVALID_RATE":              http.StatusBadRequest,
	"INVALID_RATE_SOURCE":       http.StatusBadRequest,
	"INVALID_REASON":            http.StatusBadRequest,
	"INVALID_SOURCE":            http.StatusBadRequest,
	"INVALID_START_DATE":        http.StatusBadRequest,
	"INVALID_TAX_DIRECTION":     http.StatusBadRequest,
	"INVALID_TAX_RATE":          http.StatusBadRequest,

	// Authentication and authorization
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	"TOKEN_EXPIRED":     http.StatusUnauthorized,
	"INVALID_TOKEN":     http.StatusUnauthorized,

	// Missing resources
	ErrCodeNotFound: http.StatusNotFound,

	// Conflicts and concurrency
	ErrCodeConflict:         http.StatusConflict,
	"ALREADY_EXISTS":        http.StatusConflict,
	"CONCURRENCY_CONFLICT":  http.StatusConflict,
	"OPTIMISTIC_LOCK_ERROR": http.StatusConflict,
	"PLAN_EXISTS":           http.StatusConflict,

	// Business rule violations
	"ACCOUNT_UNRESOLVED":    http.StatusUnprocessableEntity,
	"CUSTOMER_INACTIVE":     http.StatusUnprocessableEntity,
	"EXCEEDS_BALANCE_DUE":   http.StatusUnprocessableEntity,
	"HAS_INSTALLMENT_PLAN":  http.StatusUnprocessableEntity,
	"HAS_PAID_INSTALLMENTS": http.StatusUnprocessableEntity,
	"HAS_PAYMENTS":          http.StatusUnprocessableEntity,
	"INVALID_STATE":         http.StatusUnprocessableEntity,
	"INVOICE_ALREADY_PAID":  http.StatusUnprocessableEntity,
	"RATE_UNAVAILABLE":      http.StatusUnprocessableEntity,
	"RETURN_FILED":          http.StatusUnprocessableEntity,

	// Rate limiting
	ErrCodeRateLimited: http.StatusTooManyRequests,

	// Server errors
	ErrCodeInternal: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
