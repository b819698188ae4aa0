package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"library-gateway/internal/infrastructure/backend"
)

// The frontend reads bare payloads on success and {"error": "..."} on failure,
// so there is no success/data envelope here.

type ErrorBody struct {
	Error string `json:"error"`
}

type MessageBody struct {
	Message string `json:"message"`
}

const MsgServiceUnavailable = "Service unavailable"

// Success responses
func JSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, MessageBody{Message: message})
}

// Error responses
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorBody{Error: message})
}

func BadRequest(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusNotFound, message)
}

func InternalServerError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, message)
}

// BackendError maps a failed backend call onto the gateway's HTTP contract:
// a backend rejection becomes rejectedStatus with the backend's own message,
// anything else is reported as 500 "Service unavailable".
func BackendError(c *gin.Context, err error, rejectedStatus int) {
	if msg, ok := backend.RejectionMessage(err); ok {
		ErrorResponse(c, rejectedStatus, msg)
		return
	}

	event := log.Error()
	if errors.Is(err, backend.ErrUnavailable) {
		event = log.Warn()
	}
	event.
		Err(err).
		Str("request_id", c.GetString("request_id")).
		Str("path", c.FullPath()).
		Msg("Backend call failed")

	InternalServerError(c, MsgServiceUnavailable)
}
