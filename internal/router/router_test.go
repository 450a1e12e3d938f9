package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"pokrew/internal/auth"
)

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name           string
		claims         jwt.Claims
		expectedStatus int
		expectNext     bool
	}{
		{
			name:       "admin passes through",
			claims:     &auth.Claims{UserID: 1, IsAdmin: true},
			expectNext: true,
		},
		{
			name:           "member is forbidden",
			claims:         &auth.Claims{UserID: 2, IsAdmin: false},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "untyped claims are rejected",
			claims:         jwt.MapClaims{"is_admin": true},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			c := e.NewContext(req, httptest.NewRecorder())
			c.Set("user", jwt.NewWithClaims(jwt.SigningMethodHS256, tt.claims))

			nextCalled := false
			next := func(c echo.Context) error {
				nextCalled = true
				return c.NoContent(http.StatusOK)
			}

			err := requireAdmin(next)(c)

			assert.Equal(t, tt.expectNext, nextCalled)
			if tt.expectNext {
				assert.NoError(t, err)
				return
			}
			httpErr, ok := err.(*echo.HTTPError)
			assert.True(t, ok)
			assert.Equal(t, tt.expectedStatus, httpErr.Code)
		})
	}
}

func TestRequireAdmin_NoToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := requireAdmin(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)

	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

// TestJWTMiddlewareStoresTypedClaims runs the same echo-jwt configuration the
// secured group uses against a real token and checks the claims arrive typed
// on the context.
func TestJWTMiddlewareStoresTypedClaims(t *testing.T) {
	const secret = "test-secret"

	e := echo.New()
	middleware := echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(secret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	})

	var got *auth.Claims
	handler := middleware(func(c echo.Context) error {
		token, ok := c.Get("user").(*jwt.Token)
		assert.True(t, ok)
		claims, ok := token.Claims.(*auth.Claims)
		assert.True(t, ok)
		got = claims
		return c.NoContent(http.StatusOK)
	})

	accessToken, err := auth.NewJWTService(secret).GenerateAccessToken(7, "member@example.com", true)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+accessToken)
	rec := httptest.NewRecorder()

	assert.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(7), got.UserID)
	assert.True(t, got.IsAdmin)
}

func TestJWTMiddlewareRejectsBadToken(t *testing.T) {
	e := echo.New()
	middleware := echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte("test-secret"),
		TokenLookup: "header:" + echo.HeaderAuthorization,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	})

	handler := middleware(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	accessToken, err := auth.NewJWTService("other-secret").GenerateAccessToken(7, "member@example.com", false)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+accessToken)
	c := e.NewContext(req, httptest.NewRecorder())

	err = handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
