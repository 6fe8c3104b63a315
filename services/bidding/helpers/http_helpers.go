package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MaxLisniak/commerce/internal/auth"
	"github.com/MaxLisniak/commerce/internal/biddingerrors"
	"github.com/MaxLisniak/commerce/utils"

	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key the auth middleware stores the caller's id under
const UserIDKey = "user_id"

// CurrentUserID returns the authenticated caller, or "" for anonymous requests
func CurrentUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	var validationErr *biddingerrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, validationErr.Message
	case errors.Is(err, biddingerrors.ErrInvalidBid), errors.Is(err, biddingerrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, biddingerrors.ErrListingNotFound),
		errors.Is(err, biddingerrors.ErrNotificationNotFound),
		errors.Is(err, biddingerrors.ErrCategoryNotFound),
		errors.Is(err, biddingerrors.ErrUserNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, biddingerrors.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, biddingerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid username and/or password."
	case errors.Is(err, biddingerrors.ErrUsernameTaken):
		return http.StatusConflict, "username already taken"
	case errors.Is(err, biddingerrors.ErrCategoryExists):
		return http.StatusConflict, "category already exists"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError writes the mapped error and logs it at a level fitting the status
func RespondError(c *gin.Context, handlerName, logMessage string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["status"] = status
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": "+logMessage, fields)
		return
	}
	utils.Warn(handlerName+": "+logMessage, fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
