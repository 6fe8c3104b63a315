package utils

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every successful JSON response. Data is always
// present, null when there is nothing to return.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorEnvelope is the body of every failed JSON response
type ErrorEnvelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, Envelope{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// JSONError sends a structured error response and stops the handler chain
func JSONError(c *gin.Context, status int, err error, message string) {
	body := ErrorEnvelope{Status: status, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
