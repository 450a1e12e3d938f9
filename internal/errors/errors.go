package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrProductNotFound is returned when a product is missing or inactive.
	ErrProductNotFound = errors.New("product not found")
	// ErrRequestNotFound is returned when a redemption request is not found.
	ErrRequestNotFound = errors.New("request not found")
	// ErrInsufficientBalance is returned when a withdrawal would drive the
	// confirmed or available balance negative.
	ErrInsufficientBalance = errors.New("insufficient points")
	// ErrInsufficientAvailableBalance is returned when a hold exceeds the
	// user's available points.
	ErrInsufficientAvailableBalance = errors.New("insufficient available points")
	// ErrInvalidRequestState is returned when acting on a non-pending request.
	ErrInvalidRequestState = errors.New("request is not pending")
	// ErrInvalidAmount is returned when an amount is zero or negative.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidPointType is returned when a ledger movement type is not
	// deposit or withdraw.
	ErrInvalidPointType = errors.New("type must be deposit or withdraw")
	// ErrReasonRequired is returned when a manual adjustment has no reason.
	ErrReasonRequired = errors.New("reason is required")
	// ErrSelfDelete is returned when an admin tries to delete themselves.
	ErrSelfDelete = errors.New("cannot delete yourself")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrProductNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PRODUCT_NOT_FOUND")
	case errors.Is(err, ErrRequestNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "REQUEST_NOT_FOUND")
	case errors.Is(err, ErrInsufficientBalance):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INSUFFICIENT_BALANCE")
	case errors.Is(err, ErrInsufficientAvailableBalance):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INSUFFICIENT_AVAILABLE_BALANCE")
	case errors.Is(err, ErrInvalidRequestState):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_REQUEST_STATE")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrInvalidPointType):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_POINT_TYPE")
	case errors.Is(err, ErrReasonRequired):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "REASON_REQUIRED")
	case errors.Is(err, ErrSelfDelete):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "SELF_DELETE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
