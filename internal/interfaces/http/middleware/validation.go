package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator configures gin's validator with custom tags. Call once at
// startup before the engine serves requests.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Report JSON/form field names in validation errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return valueobject.Currency(fl.Field().String()).IsValid()
	})

	_ = v.RegisterValidation("tax_period", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if len(s) != 7 || s[4] != '-' {
			return false
		}
		for i, r := range s {
			if i == 4 {
				continue
			}
			if r < '0' || r > '9' {
				return false
			}
		}
		month := (int(s[5]-'0') * 10) + int(s[6]-'0')
		return month >= 1 && month <= 12
	})
}

// HandleValidationError writes a 400 response with per-field details
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString("request_id")

	var details []dto.ValidationDetail
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: validationMessage(e),
			})
		}
	}

	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "uuid":
		return "Must be a valid UUID"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "currency":
		return "Must be a supported ISO 4217 currency code"
	case "tax_period":
		return "Must be a period in YYYY-MM format"
	default:
		return "Invalid value"
	}
}
