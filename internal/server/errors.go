package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/seology-ai/seology/internal/completion"
	connectiondomain "github.com/seology-ai/seology/internal/connection/domain"
	usagedomain "github.com/seology-ai/seology/internal/usage/domain"
	"go.uber.org/zap"
)

// Error codes surfaced to clients.
const (
	CodeMissingShop         = "MISSING_SHOP"
	CodeInvalidMessages     = "INVALID_MESSAGES"
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeNoConnection        = "NO_CONNECTION"
	CodeInsufficientCredits = "INSUFFICIENT_CREDITS"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNotFound            = "NOT_FOUND"
	CodeRateLimited         = "RATE_LIMITED"
	CodeChatError           = "CHAT_ERROR"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
)

// APIError is a client-visible failure with a fixed code taxonomy.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Code + ": " + e.Message }

var (
	ErrUnauthorized       = &APIError{Status: http.StatusUnauthorized, Code: CodeUnauthorized, Message: "authentication required"}
	ErrNotFound           = &APIError{Status: http.StatusNotFound, Code: CodeNotFound, Message: "not found"}
	ErrServiceUnavailable = &APIError{Status: http.StatusServiceUnavailable, Code: CodeServiceUnavailable, Message: "service unavailable"}
)

func invalidRequestError() *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: CodeInvalidRequest, Message: "request body is not valid JSON"}
}

func newValidationError(field, code, message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Message: message,
		Details: gin.H{"field": field},
	}
}

// AbortWithError serializes any pipeline failure into the JSON failure
// envelope. Raw error text never reaches production clients.
func AbortWithError(c *gin.Context, err error) {
	apiErr := classify(err)

	if apiErr.Status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", apiErr.Code),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(apiErr.Status, gin.H{
		"success": false,
		"error":   apiErr,
	})
}

func classify(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, connectiondomain.ErrNotFound),
		errors.Is(err, connectiondomain.ErrInvalidDomain):
		return &APIError{
			Status:  http.StatusNotFound,
			Code:    CodeNoConnection,
			Message: "no connected store found for this shop",
		}
	case errors.Is(err, usagedomain.ErrInsufficientCredits):
		return &APIError{
			Status:  http.StatusForbidden,
			Code:    CodeInsufficientCredits,
			Message: "credit limit reached for the current billing period",
		}
	case errors.Is(err, completion.ErrNonTextContent),
		errors.Is(err, completion.ErrProvider),
		errors.Is(err, completion.ErrMissingAPIKey):
		return &APIError{
			Status:  http.StatusInternalServerError,
			Code:    CodeChatError,
			Message: "something went wrong generating a response",
		}
	default:
		return &APIError{
			Status:  http.StatusInternalServerError,
			Code:    CodeInternalError,
			Message: "something went wrong",
		}
	}
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}
