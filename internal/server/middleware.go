package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/MaxLisniak/commerce/internal/auth"
	"github.com/MaxLisniak/commerce/services/bidding/helpers"
	"github.com/MaxLisniak/commerce/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	}
	if userID := helpers.CurrentUserID(c); userID != "" {
		fields["user_id"] = userID
	}
	utils.Info("HTTP Request", fields)
}

// IdentityMiddleware resolves an optional bearer token into the caller's id.
// Requests without a token pass through anonymously; a bad token is rejected.
func IdentityMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			utils.JSONError(c, http.StatusUnauthorized, auth.ErrInvalidToken, "unauthorized")
			return
		}

		userID, err := auth.GetUserIDFromToken(token, secret)
		if err != nil {
			status, message := helpers.MapErrorToHTTP(err)
			utils.JSONError(c, status, err, message)
			utils.Warn("IdentityMiddleware: rejected token", map[string]any{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			return
		}

		c.Set(helpers.UserIDKey, userID)
		c.Next()
	}
}

// RequireUser rejects anonymous requests
func RequireUser(c *gin.Context) {
	if helpers.CurrentUserID(c) == "" {
		utils.JSONError(c, http.StatusUnauthorized, nil, "unauthorized")
		return
	}
	c.Next()
}
