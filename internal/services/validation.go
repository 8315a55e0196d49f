package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/apperrors"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/valuation"
)

// ErrorResponse represents error response structure
type ErrorResponse struct {
	Error   string            `json:"error"`             // Error message
	Code    string            `json:"code,omitempty"`    // Machine readable error code
	Details map[string]string `json:"details,omitempty"` // Validation details
}

// ValidationHelper provides shared validation functionality
type ValidationHelper struct {
	validator *validator.Validate
}

// NewValidationHelper creates a validator that reports fields by their JSON
// name and understands decimal amounts.
func NewValidationHelper() *ValidationHelper {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	v.RegisterValidation("grade", validateGrade)
	v.RegisterValidation("money", validateMoney)

	return &ValidationHelper{validator: v}
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateGrade(fl validator.FieldLevel) bool {
	g := fl.Field().String()
	if g == "" {
		return true
	}
	_, err := valuation.ParseGrade(g)
	return err == nil
}

// MaxMoney is the exclusive upper bound of a NUMERIC(15,2) column.
var MaxMoney = decimal.New(1, 13)

const MaxDays = 3650

// ValidMoney reports whether d fits a NUMERIC(15,2) column without rounding.
func ValidMoney(d decimal.Decimal) bool {
	return d.Abs().LessThan(MaxMoney) && d.Equal(d.Truncate(2))
}

// validateMoney reads the decimal straight from the parent struct, since the
// registered custom type hands validators a lossy float64.
func validateMoney(fl validator.FieldLevel) bool {
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() == reflect.Struct {
		if f := reflect.Indirect(parent.FieldByName(fl.StructFieldName())); f.IsValid() {
			if d, ok := f.Interface().(decimal.Decimal); ok {
				return ValidMoney(d)
			}
		}
	}
	f := fl.Field()
	if f.Kind() == reflect.Float64 {
		return decimal.NewFromFloat(f.Float()).Abs().LessThan(MaxMoney)
	}
	return false
}

// ValidateStruct validates s and returns a VALIDATION_ERROR carrying one
// message per offending field.
func (vh *ValidationHelper) ValidateStruct(s any) error {
	err := vh.validator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return apperrors.Validation(FieldErrors(verrs))
}

// FieldErrors keys each failure by its JSON path without the root struct
// name, e.g. "items[0].name".
func FieldErrors(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		fields[key] = fieldMessage(fe)
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_without":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "money":
		return "must be less than 10000000000000 with at most 2 decimal places"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("may not be greater than %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "grade":
		return "must be one of: A B C D E"
	case "numeric":
		return "must be numeric"
	}
	return fmt.Sprintf("Field Validation Failed on '%s' tag", fe.Tag())
}

// SendErrorResponse sends a JSON error response
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int, validationErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResp := ErrorResponse{Error: message}
	var verrs validator.ValidationErrors
	if errors.As(validationErr, &verrs) {
		errorResp.Code = apperrors.CodeValidation
		errorResp.Details = FieldErrors(verrs)
	}

	json.NewEncoder(w).Encode(errorResp)
}

// WriteError renders err with the status its code maps to. Untyped errors
// are reported as a bare internal error.
func WriteError(w http.ResponseWriter, err error) {
	var appErr apperrors.Error
	if !errors.As(err, &appErr) {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			SendErrorResponse(w, "Validation failed", http.StatusUnprocessableEntity, verrs)
			return
		}
		appErr = apperrors.Error{Code: apperrors.CodeInternal, Message: "Internal server error"}
	}

	message := appErr.Message
	if message == "" {
		message = appErr.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.HTTPStatus(appErr.Code))
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   message,
		Code:    appErr.Code,
		Details: appErr.Fields,
	})
}
