package server

import (
	"errors"
	"net/http"
	"strings"

	accessdomain "github.com/smallbiznis/branchdesk/internal/access/domain"
	authdomain "github.com/smallbiznis/branchdesk/internal/auth/domain"
	"github.com/smallbiznis/branchdesk/internal/authorization"
	branchdomain "github.com/smallbiznis/branchdesk/internal/branch/domain"
	customerdomain "github.com/smallbiznis/branchdesk/internal/customer/domain"
	employeedomain "github.com/smallbiznis/branchdesk/internal/employee/domain"
	invoicedomain "github.com/smallbiznis/branchdesk/internal/invoice/domain"
	leveldomain "github.com/smallbiznis/branchdesk/internal/level/domain"
	membershipdomain "github.com/smallbiznis/branchdesk/internal/membership/domain"

	"github.com/gin-gonic/gin"
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
	ErrRateLimited    = errors.New("rate_limited")
)

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
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authorization.ErrInvalidActor),
		errors.Is(err, accessdomain.ErrInvalidActor),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden),
		errors.Is(err, accessdomain.ErrDenied),
		errors.Is(err, accessdomain.ErrReadOnly):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, authdomain.ErrUserExists),
		errors.Is(err, leveldomain.ErrCodeExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case errors.Is(err, invoicedomain.ErrInvalidTransition):
		return http.StatusConflict, errorPayload{
			Type:    "state_error",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
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
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isCustomerValidationError(err),
		isBranchValidationError(err),
		isEmployeeValidationError(err),
		isLevelValidationError(err),
		isMembershipValidationError(err),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidAmount):
		return true
	default:
		return false
	}
}

func isCustomerValidationError(err error) bool {
	return errors.Is(err, customerdomain.ErrInvalidName) ||
		errors.Is(err, customerdomain.ErrInvalidEmail) ||
		errors.Is(err, customerdomain.ErrInvalidOwner) ||
		errors.Is(err, customerdomain.ErrInvalidID)
}

func isBranchValidationError(err error) bool {
	return errors.Is(err, branchdomain.ErrInvalidCustomer) ||
		errors.Is(err, branchdomain.ErrInvalidName) ||
		errors.Is(err, branchdomain.ErrInvalidOwner) ||
		errors.Is(err, branchdomain.ErrInvalidID)
}

func isEmployeeValidationError(err error) bool {
	return errors.Is(err, employeedomain.ErrInvalidBranch) ||
		errors.Is(err, employeedomain.ErrInvalidUser) ||
		errors.Is(err, employeedomain.ErrInvalidFullName) ||
		errors.Is(err, employeedomain.ErrInvalidID) ||
		errors.Is(err, employeedomain.ErrAlreadyEnded)
}

func isLevelValidationError(err error) bool {
	return errors.Is(err, leveldomain.ErrInvalidCode) ||
		errors.Is(err, leveldomain.ErrInvalidName) ||
		errors.Is(err, leveldomain.ErrInvalidPrice) ||
		errors.Is(err, leveldomain.ErrInvalidStatus) ||
		errors.Is(err, leveldomain.ErrInvalidID)
}

func isMembershipValidationError(err error) bool {
	return errors.Is(err, membershipdomain.ErrInvalidBranch) ||
		errors.Is(err, membershipdomain.ErrInvalidLevel) ||
		errors.Is(err, membershipdomain.ErrInvalidPeriod) ||
		errors.Is(err, membershipdomain.ErrNotUpgrade)
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, branchdomain.ErrNotFound),
		errors.Is(err, employeedomain.ErrNotFound),
		errors.Is(err, leveldomain.ErrNotFound),
		errors.Is(err, membershipdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
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

// classifyErrorForLog labels request errors for the access log.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	status, payload := mapError(err)
	switch {
	case status >= 500:
		return "internal", payload.Type
	case status >= 400:
		return "client", payload.Type
	default:
		return "", ""
	}
}
