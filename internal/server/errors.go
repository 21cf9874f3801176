package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopstack/shopstack/internal/authorization"
	billdomain "github.com/shopstack/shopstack/internal/bill/domain"
	inventorydomain "github.com/shopstack/shopstack/internal/inventory/domain"
	orderdomain "github.com/shopstack/shopstack/internal/order/domain"
	orderguard "github.com/shopstack/shopstack/internal/order/guard"
	organizationdomain "github.com/shopstack/shopstack/internal/organization/domain"
	plandomain "github.com/shopstack/shopstack/internal/plan/domain"
	trackerdomain "github.com/shopstack/shopstack/internal/plantracker/domain"
	reportdomain "github.com/shopstack/shopstack/internal/report/domain"
	"github.com/shopstack/shopstack/internal/sequence"
	subuserdomain "github.com/shopstack/shopstack/internal/subuser/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// quotaDeniedBody is the exact payload mobile clients key their upgrade
// prompt off. Shape and wording are load-bearing; do not wrap it in the
// error envelope.
var quotaDeniedBody = gin.H{"message": "You have reached your limit."}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		if errors.Is(lastErr.Err, trackerdomain.ErrQuotaExceeded) {
			c.AbortWithStatusJSON(http.StatusForbidden, quotaDeniedBody)
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, trackerdomain.ErrTransientConflict):
		// Retryable; clients distinguish this from plain 500s.
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "transient_conflict",
			Message: "please retry",
		}
	case isIntegrityFault(err):
		// Missing tracker rows and malformed stored numbers are data
		// corruption. Nothing user-actionable goes over the wire.
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, organizationdomain.ErrInvalidRequest),
		errors.Is(err, inventorydomain.ErrInvalidRequest),
		errors.Is(err, inventorydomain.ErrInsufficientStock),
		errors.Is(err, billdomain.ErrInvalidRequest),
		errors.Is(err, billdomain.ErrNoLineItems),
		errors.Is(err, orderdomain.ErrInvalidRequest),
		errors.Is(err, orderdomain.ErrNoLineItems),
		errors.Is(err, orderguard.ErrInvalidDecision),
		errors.Is(err, subuserdomain.ErrInvalidRole),
		errors.Is(err, reportdomain.ErrInvalidRange):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, organizationdomain.ErrNotFound),
		errors.Is(err, subuserdomain.ErrNotFound),
		errors.Is(err, inventorydomain.ErrNotFound),
		errors.Is(err, billdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, organizationdomain.ErrDeleteActiveOrg),
		errors.Is(err, subuserdomain.ErrManagerExists),
		errors.Is(err, inventorydomain.ErrBarcodeExists),
		errors.Is(err, orderguard.ErrOrderNotPending),
		errors.Is(err, orderguard.ErrOrderNotApproved),
		errors.Is(err, orderguard.ErrOrderNotExpired):
		return true
	default:
		return false
	}
}

func isIntegrityFault(err error) bool {
	switch {
	case errors.Is(err, trackerdomain.ErrTrackerNotFound),
		errors.Is(err, trackerdomain.ErrPlanNotFound),
		errors.Is(err, plandomain.ErrNotFound),
		errors.Is(err, plandomain.ErrUnknownDimension),
		errors.Is(err, sequence.ErrMalformedNumber):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog feeds the request logger's error_type/error_code
// fields without re-running the full response mapping.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	switch {
	case errors.Is(err, trackerdomain.ErrQuotaExceeded):
		return "quota_denied", "quota_exceeded"
	case errors.Is(err, trackerdomain.ErrTransientConflict):
		return "transient_conflict", "serialization_failure"
	case isIntegrityFault(err):
		return "integrity_fault", err.Error()
	case asValidationErrors(err) != nil, isValidationError(err):
		return "validation_error", validationErrorCode(err)
	case isNotFoundError(err):
		return "not_found", ""
	case isConflictError(err):
		return "conflict", err.Error()
	case errors.Is(err, authorization.ErrForbidden), errors.Is(err, ErrForbidden):
		return "forbidden", ""
	default:
		return "internal_error", ""
	}
}
