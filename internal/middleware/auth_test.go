package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/authz"
)

var testSecret = []byte("s3cret")

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func validClaims() Claims {
	return Claims{
		UserID:         7,
		Role:           "admin",
		OrganizationID: 3,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(testSecret, time.Second))
	r.GET("/me", RequireRoles(authz.RoleUser, authz.RoleAdmin), func(c *gin.Context) {
		caller, ok := CallerFrom(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": caller.ID, "role": caller.Role, "org": caller.OrganizationID})
	})
	r.GET("/admin", RequireRoles(authz.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func serve(r *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	r := newRouter()
	w := serve(r, "/me", "Bearer "+sign(t, jwt.SigningMethodHS256, testSecret, validClaims()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"role":"ADMIN","org":3}`, w.Body.String())
}

func TestAuthMiddlewareRejects(t *testing.T) {
	r := newRouter()

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	noOrg := validClaims()
	noOrg.OrganizationID = 0

	badRole := validClaims()
	badRole.Role = "OWNER"

	tests := []struct {
		name string
		auth string
	}{
		{name: "missing header", auth: ""},
		{name: "wrong scheme", auth: "Basic abc"},
		{name: "empty bearer", auth: "Bearer "},
		{name: "wrong secret", auth: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims())},
		{name: "expired", auth: "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, expired)},
		{name: "no expiry", auth: "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, noExpiry)},
		{name: "no organization", auth: "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, noOrg)},
		{name: "unknown role", auth: "Bearer " + sign(t, jwt.SigningMethodHS256, testSecret, badRole)},
		{name: "unsigned", auth: "Bearer " + sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, "/me", tt.auth)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	r := newRouter()
	user := validClaims()
	user.Role = "USER"

	w := serve(r, "/admin", "Bearer "+sign(t, jwt.SigningMethodHS256, testSecret, user))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, "/admin", "Bearer "+sign(t, jwt.SigningMethodHS256, testSecret, validClaims()))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPublicPathsSkipAuth(t *testing.T) {
	w := serve(newRouter(), "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
