package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"pokrew/internal/auth"
	"pokrew/internal/config"
	"pokrew/internal/errors"
	"pokrew/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
	requestHandler *handler.RequestHandler,
	dashboardHandler *handler.DashboardHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/products", productHandler.ListActive)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}))

	secured.GET("/auth/me", authHandler.Me)
	secured.GET("/dashboard/me", dashboardHandler.Me)
	secured.GET("/users/:id/history", userHandler.History)

	// Request routes
	secured.POST("/requests", requestHandler.Create)
	secured.GET("/requests/my", requestHandler.ListMine)

	// Admin routes
	admin := secured.Group("", requireAdmin)

	admin.POST("/auth/register", authHandler.Register)

	admin.GET("/users", userHandler.ListUsers)
	admin.GET("/users/:id", userHandler.GetUser)
	admin.PATCH("/users/:id/points", userHandler.AdjustPoints)
	admin.DELETE("/users/:id", userHandler.DeleteUser)

	admin.GET("/products/admin", productHandler.ListAll)
	admin.POST("/products", productHandler.Create)
	admin.PUT("/products/:id", productHandler.Update)
	admin.DELETE("/products/:id", productHandler.Delete)
	admin.PATCH("/products/:id/toggle", productHandler.Toggle)

	admin.GET("/requests/admin", requestHandler.ListAll)
	admin.GET("/requests/pending", requestHandler.ListPending)
	admin.PATCH("/requests/:id/approve", requestHandler.Approve)
	admin.PATCH("/requests/:id/reject", requestHandler.Reject)

	admin.GET("/dashboard/admin", dashboardHandler.Admin)
	admin.GET("/dashboard/stats", dashboardHandler.Stats)
}

// requireAdmin rejects non-admin tokens with 403.
func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		claims, ok := token.Claims.(*auth.Claims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
		}
		if !claims.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "admin access required",
				Code:  "FORBIDDEN",
			})
		}
		return next(c)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
