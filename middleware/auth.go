package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"autoapply/services"
	"autoapply/utils"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// TokenValidator is satisfied by services.JWTService.
type TokenValidator interface {
	ValidateToken(token string) (*services.Claims, error)
}

// RequireAuth accepts "Authorization: Bearer <jwt>" and stores the caller's
// id and email on the context.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			utils.UnauthorizedError(c, "Authorization header required")
			return
		}

		claims, err := validator.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			utils.UnauthorizedError(c, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}
