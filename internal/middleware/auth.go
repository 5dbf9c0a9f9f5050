package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"taskdesk/internal/authz"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxOrgID  = "organization_id"
)

// Claims is the token payload issued by the external auth service.
type Claims struct {
	UserID         int64  `json:"user_id"`
	Role           string `json:"role"`
	OrganizationID int64  `json:"organization_id"`
	jwt.RegisteredClaims
}

func isPublicPath(path string) bool {
	return strings.HasPrefix(path, "/swagger") || strings.HasPrefix(path, "/healthz")
}

// AuthMiddleware validates the bearer token and puts the caller into the
// gin context.
func AuthMiddleware(secret []byte, leeway time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return secret, nil
		}, jwt.WithLeeway(leeway), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}
		if claims.UserID <= 0 || claims.OrganizationID <= 0 || !authz.IsKnownRole(claims.Role) {
			abortUnauthorized(c, "Token is missing caller identity")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, authz.NormalizeRole(claims.Role))
		c.Set(ctxOrgID, claims.OrganizationID)
		c.Next()
	}
}

// CallerFrom reads the identity AuthMiddleware stored in the context.
func CallerFrom(c *gin.Context) (authz.Caller, bool) {
	id, ok1 := c.Get(ctxUserID)
	role, ok2 := c.Get(ctxRole)
	org, ok3 := c.Get(ctxOrgID)
	if !ok1 || !ok2 || !ok3 {
		return authz.Caller{}, false
	}
	caller := authz.Caller{}
	caller.ID, _ = id.(int64)
	caller.Role, _ = role.(string)
	caller.OrganizationID, _ = org.(int64)
	return caller, caller.ID > 0
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": msg, "code": "UNAUTHORIZED"}})
}
