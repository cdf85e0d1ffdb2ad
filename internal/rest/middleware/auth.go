package middleware

import (
	"net/http"
	"strings"

	"github.com/facturio/facturio/internal/config"
	"github.com/facturio/facturio/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// AuthClaims are the identity claims carried by bearer tokens.
type AuthClaims struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware resolves the bearer token into tenant, actor and role
// context values. Requests without a valid token are rejected.
func AuthMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing bearer token",
			})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &AuthClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.Auth.Secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid bearer token",
			})
			return
		}

		role := types.Role(claims.Role)
		if claims.TenantID == "" || claims.UserID == "" || !role.Validate() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "token is missing identity claims",
			})
			return
		}

		ctx := c.Request.Context()
		ctx = types.SetTenantID(ctx, claims.TenantID)
		ctx = types.SetUserID(ctx, claims.UserID)
		ctx = types.SetRole(ctx, role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
