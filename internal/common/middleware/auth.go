package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hotelstay/service-booking/internal/common/auth"
	"github.com/hotelstay/service-booking/internal/common/response"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "user_role"
)

// AuthMiddleware requires a valid bearer token and stores its identity on the context.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			response.Unauthorized(c, "missing bearer token")
			return
		}

		claims, err := jwtManager.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				response.Unauthorized(c, "token expired")
				return
			}
			response.Unauthorized(c, "invalid token")
			return
		}

		userID, _ := claims.UserID()
		c.Set(ctxUserID, userID)
		c.Set(ctxRole, claims.EffectiveRole())
		c.Next()
	}
}

// RequireRole rejects requests whose role is not in roles.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			response.Unauthorized(c, "unauthorized")
			return
		}
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "insufficient permissions")
	}
}

// GetUserID returns the authenticated user's ID.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetUserRole returns the authenticated user's role.
func GetUserRole(c *gin.Context) (auth.Role, bool) {
	v, ok := c.Get(ctxRole)
	if !ok {
		return "", false
	}
	role, ok := v.(auth.Role)
	return role, ok
}
