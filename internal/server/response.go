package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the error envelope: a single human-readable message.
type ErrorBody struct {
	Error string `json:"error"`
}

// RespondError writes status with an error envelope.
func RespondError(c *gin.Context, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorBody{Error: msg})
}

// RespondOK writes payload with status 200.
func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
