package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID      = "user_id"
	ContextUsername    = "username"
	ContextRole        = "role"
	ContextToken       = "token"
	ContextTokenExpiry = "token_expiry"
)

// AccountChecker reports the stored role of a user and whether the account is
// still usable. A missing user is reported as unusable, not as an error.
type AccountChecker interface {
	AccountStatus(ctx context.Context, userID uint) (models.Role, bool, error)
}

// AuthMiddleware validates the bearer token. With a non-nil accounts checker
// the stored role replaces the token role and deactivated users are refused.
func AuthMiddleware(accounts AccountChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("authorization header missing"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid authorization format"))
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}

		role := claims.Role
		if accounts != nil {
			stored, active, err := accounts.AccountStatus(c.Request.Context(), claims.UserID)
			if err != nil {
				utils.ErrorLogger.WithFields(logrus.Fields{
					"user_id": claims.UserID,
					"error":   err,
				}).Error("account lookup failed")
				utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
				c.Abort()
				return
			}
			if !active {
				utils.RespondError(c, http.StatusUnauthorized, errors.New("account is disabled"))
				c.Abort()
				return
			}
			role = string(stored)
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextRole, role)
		c.Set(ContextToken, tokenString)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExpiry, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}
