package dto

import (
	"net/http"
	"strings"
)

// Transport-level error codes. Domain errors keep their own codes
// (SESSION_ALREADY_OPEN, INSUFFICIENT_STOCK, ...) in the envelope.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
)

// Domain codes whose status is not implied by their name
const (
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeOutOfStock          = "OUT_OF_STOCK"
	ErrCodeNoActiveSession     = "NO_ACTIVE_SESSION"
	ErrCodeSessionAlreadyOpen  = "SESSION_ALREADY_OPEN"
	ErrCodeDuplicateCheckout   = "DUPLICATE_CHECKOUT"
	ErrCodeCartEmpty           = "CART_EMPTY"
	ErrCodeInUse               = "IN_USE"
	ErrCodeExportTooLarge      = "EXPORT_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	ErrCodeOutOfStock:          http.StatusUnprocessableEntity,
	ErrCodeNoActiveSession:     http.StatusConflict,
	ErrCodeSessionAlreadyOpen:  http.StatusConflict,
	ErrCodeDuplicateCheckout:   http.StatusConflict,
	ErrCodeCartEmpty:           http.StatusUnprocessableEntity,
	ErrCodeInUse:               http.StatusConflict,
	ErrCodeExportTooLarge:      http.StatusUnprocessableEntity,

	"ACCOUNT_INACTIVE":         http.StatusForbidden,
	"ACCOUNT_LOCKED":           http.StatusForbidden,
	"INVALID_CREDENTIALS":      http.StatusUnauthorized,
	"TOKEN_EXPIRED":            http.StatusUnauthorized,
	"TOKEN_INVALID":            http.StatusUnauthorized,
	"TOKEN_REVOKED":            http.StatusUnauthorized,
	"TOKEN_MAX_REFRESH":        http.StatusUnauthorized,
	"CANNOT_DEACTIVATE_SELF":   http.StatusUnprocessableEntity,
	"ALREADY_INACTIVE":         http.StatusUnprocessableEntity,
	"RETURN_QUANTITY_EXCEEDED": http.StatusUnprocessableEntity,
	"ITEM_NOT_IN_SALE":         http.StatusUnprocessableEntity,
	"NEGATIVE_STOCK":           http.StatusUnprocessableEntity,
	"SESSION_CLOSED":           http.StatusConflict,
	"SESSION_STILL_OPEN":       http.StatusConflict,
	"SALE_COMPLETED":           http.StatusConflict,
	"INVALID_STATE":            http.StatusConflict,
	"PDF_UNAVAILABLE":          http.StatusServiceUnavailable,
	"RECEIPT_UNAVAILABLE":      http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status for an error code. Codes missing
// from the table are classified by naming convention: *_NOT_FOUND is 404,
// *_EXISTS is 409 and INVALID_* is 400. Anything else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_EXISTS"):
		return http.StatusConflict
	case strings.HasPrefix(code, "INVALID_"), strings.HasPrefix(code, "UNSUPPORTED_"), strings.HasPrefix(code, "NO_"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
