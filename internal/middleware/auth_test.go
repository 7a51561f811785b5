package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temmy669/imprest-portal-back-up/internal/core/domain"
	"github.com/temmy669/imprest-portal-back-up/internal/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims middleware.ActorClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func authedRouter(extraMiddleware ...gin.HandlerFunc) (*gin.Engine, *domain.Actor) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var captured domain.Actor
	handlers := []gin.HandlerFunc{middleware.AuthMiddleware(testSecret)}
	handlers = append(handlers, extraMiddleware...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if ok {
			captured = actor
		}
		c.Status(http.StatusOK)
	})
	r.GET("/protected", handlers...)
	return r, &captured
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("materializes the actor from the token claims", func(t *testing.T) {
		r, captured := authedRouter()
		token := signToken(t, middleware.ActorClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "am-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role:     string(domain.RoleAreaManager),
			StoreIDs: []int64{1, 2},
		})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "am-1", captured.UserID)
		assert.Equal(t, domain.RoleAreaManager, captured.Role)
		assert.Equal(t, []int64{1, 2}, captured.AssignedStoreIDs)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		r, _ := authedRouter()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		r, _ := authedRouter()
		token := signToken(t, middleware.ActorClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "am-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
			Role: string(domain.RoleAreaManager),
		})
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		r, _ := authedRouter()
		token := signToken(t, middleware.ActorClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "x-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: "JANITOR",
		})
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	issue := func(role domain.Role) string {
		return signToken(t, middleware.ActorClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "u-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: string(role),
		})
	}

	cases := []struct {
		name string
		role domain.Role
		want int
	}{
		{"treasurer passes a treasurer gate", domain.RoleTreasurer, http.StatusOK},
		{"admin always passes", domain.RoleAdmin, http.StatusOK},
		{"area manager is rejected", domain.RoleAreaManager, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := authedRouter(middleware.RequireRoles(domain.RoleTreasurer))
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+issue(tc.role))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
