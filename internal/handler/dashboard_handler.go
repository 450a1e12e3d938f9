package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pokrew/internal/errors"
	"pokrew/internal/service"
)

// DashboardHandler handles the reporting endpoints.
type DashboardHandler struct {
	dashboardService service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Admin godoc
// @Summary Club-wide dashboard (admin only)
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AdminDashboard
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /dashboard/admin [get]
func (h *DashboardHandler) Admin(c echo.Context) error {
	dashboard, err := h.dashboardService.AdminDashboard(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, dashboard)
}

// Me godoc
// @Summary Current member's dashboard
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.UserDashboard
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /dashboard/me [get]
func (h *DashboardHandler) Me(c echo.Context) error {
	claims, err := currentClaims(c)
	if err != nil {
		return err
	}

	dashboard, err := h.dashboardService.UserDashboard(c.Request().Context(), claims.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, dashboard)
}

// Stats godoc
// @Summary Monthly and per-product request aggregates (admin only)
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.RequestStats
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.dashboardService.Stats(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, stats)
}
