package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"pokrew/internal/errors"
	"pokrew/internal/model"
	"pokrew/internal/service"
)

// UserHandler handles member administration endpoints.
type UserHandler struct {
	userService service.UserService
	ledger      service.LedgerService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService, ledger service.LedgerService) *UserHandler {
	return &UserHandler{userService: userService, ledger: ledger}
}

// UserResponse represents a member with the derived pending balance.
type UserResponse struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Points          int       `json:"points"`
	AvailablePoints int       `json:"available_points"`
	PendingPoints   int       `json:"pending_points"`
	IsAdmin         bool      `json:"is_admin"`
	CreatedAt       time.Time `json:"created_at"`
}

func newUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Points:          u.Points,
		AvailablePoints: u.AvailablePoints,
		PendingPoints:   u.PendingPoints(),
		IsAdmin:         u.IsAdmin,
		CreatedAt:       u.CreatedAt,
	}
}

// AdjustPointsRequest represents a manual balance adjustment.
type AdjustPointsRequest struct {
	Type   string `json:"type" validate:"required,oneof=deposit withdraw"`
	Amount int    `json:"amount" validate:"required,gt=0"`
	Reason string `json:"reason" validate:"required"`
}

// ListUsers godoc
// @Summary List members (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	responses := make([]*UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, newUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, responses)
}

// GetUser godoc
// @Summary Get member by id (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user, err := h.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, newUserResponse(user))
}

// AdjustPoints godoc
// @Summary Manually adjust a member's balance (admin only)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body AdjustPointsRequest true "Adjustment"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/points [patch]
func (h *UserHandler) AdjustPoints(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req AdjustPointsRequest
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

	user, err := h.ledger.AdjustBalance(c.Request().Context(), id, model.PointType(req.Type), req.Amount, req.Reason)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, newUserResponse(user))
}

// History godoc
// @Summary Point history for a member (self or admin)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} model.PointHistory
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users/{id}/history [get]
func (h *UserHandler) History(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	claims, err := currentClaims(c)
	if err != nil {
		return err
	}
	if claims.UserID != id && !claims.IsAdmin {
		return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
			Error: "forbidden",
			Code:  "FORBIDDEN",
		})
	}

	history, err := h.ledger.History(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, history)
}

// DeleteUser godoc
// @Summary Delete a member (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	if err := h.userService.DeleteUser(c.Request().Context(), id, claims.UserID); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "member deleted successfully",
	})
}

// parseID reads the numeric :id path parameter.
func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid id",
			Code:  "INVALID_ID",
		})
	}
	return uint(id), nil
}
