package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"pokrew/internal/errors"
	"pokrew/internal/model"
	"pokrew/internal/service"
)

// RequestHandler handles redemption request endpoints.
type RequestHandler struct {
	requestService service.RequestService
}

// NewRequestHandler creates a new request handler.
func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// CreateRequestRequest represents a redemption request payload.
type CreateRequestRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// RejectRequestRequest carries the optional rejection reason.
type RejectRequestRequest struct {
	Reason string `json:"reason"`
}

// RequestResponse flattens a request with its joined member and product
// fields for display.
type RequestResponse struct {
	ID            uint                `json:"id"`
	UserID        uint                `json:"user_id"`
	UserName      string              `json:"user_name,omitempty"`
	ProductID     uint                `json:"product_id"`
	ProductName   string              `json:"product_name,omitempty"`
	ProductLink   string              `json:"product_link,omitempty"`
	Quantity      int                 `json:"quantity"`
	Amount        int                 `json:"amount"`
	PendingAmount int                 `json:"pending_amount"`
	Status        model.RequestStatus `json:"status"`
	RejectReason  string              `json:"reject_reason,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func newRequestResponse(r *model.Request) *RequestResponse {
	return &RequestResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		UserName:      r.User.Name,
		ProductID:     r.ProductID,
		ProductName:   r.Product.Name,
		ProductLink:   r.Product.Link,
		Quantity:      r.Quantity,
		Amount:        r.Amount,
		PendingAmount: r.PendingAmount,
		Status:        r.Status,
		RejectReason:  r.RejectReason,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func newRequestResponses(requests []model.Request) []*RequestResponse {
	responses := make([]*RequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, newRequestResponse(&requests[i]))
	}
	return responses
}

// Create godoc
// @Summary Create a redemption request
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRequestRequest true "Request data"
// @Success 201 {object} RequestResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	var req CreateRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	request, err := h.requestService.CreateRequest(c.Request().Context(), claims.UserID, req.ProductID, req.Quantity)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, newRequestResponse(request))
}

// ListMine godoc
// @Summary List the current member's requests
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} RequestResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /requests/my [get]
func (h *RequestHandler) ListMine(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	requests, err := h.requestService.ListMine(c.Request().Context(), claims.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, newRequestResponses(requests))
}

// ListAll godoc
// @Summary List all requests (admin only)
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} RequestResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /requests/admin [get]
func (h *RequestHandler) ListAll(c echo.Context) error {
	requests, err := h.requestService.ListAll(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, newRequestResponses(requests))
}

// ListPending godoc
// @Summary List pending requests (admin only)
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} RequestResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /requests/pending [get]
func (h *RequestHandler) ListPending(c echo.Context) error {
	requests, err := h.requestService.ListPending(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, newRequestResponses(requests))
}

// Approve godoc
// @Summary Approve a pending request (admin only)
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} RequestResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /requests/{id}/approve [patch]
func (h *RequestHandler) Approve(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	request, err := h.requestService.Approve(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, newRequestResponse(request))
}

// Reject godoc
// @Summary Reject a pending request (admin only)
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param request body RejectRequestRequest true "Rejection reason"
// @Success 200 {object} RequestResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /requests/{id}/reject [patch]
func (h *RequestHandler) Reject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req RejectRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	request, err := h.requestService.Reject(c.Request().Context(), id, req.Reason)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, newRequestResponse(request))
}
