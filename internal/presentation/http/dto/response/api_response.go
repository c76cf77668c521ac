package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/pkg/apperror"
	"github.com/sangkips/studio-ledger/pkg/pagination"
)

// APIResponse is the envelope every ledger endpoint answers with. Kind
// carries the machine-readable ledger error kind when there is one.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Kind    string      `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta contains metadata about the response
type Meta struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

func newMeta(c *gin.Context) *Meta {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &Meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	}
}

func write(c *gin.Context, code int, body APIResponse) {
	body.Meta = newMeta(c)
	c.JSON(code, body)
}

// OK sends a 200 response carrying data
func OK(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusOK, APIResponse{Success: true, Message: message, Data: data})
}

// Created sends a 201 response carrying the new resource
func Created(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusCreated, APIResponse{Success: true, Message: message, Data: data})
}

// SuccessWithPagination sends a page of items with its pagination block
func SuccessWithPagination[T any](c *gin.Context, statusCode int, message string, result *pagination.PaginatedResult[T]) {
	write(c, statusCode, APIResponse{Success: true, Message: message, Data: result})
}

// Error maps err to its status code and ledger error kind
func Error(c *gin.Context, err error) {
	appErr := apperror.GetAppError(err)
	write(c, appErr.Code, APIResponse{
		Message: appErr.Message,
		Kind:    string(appErr.Kind),
		Errors:  appErr.Errors,
	})
}

// ErrorWithCode sends a failure envelope with an explicit status code
func ErrorWithCode(c *gin.Context, statusCode int, message string) {
	write(c, statusCode, APIResponse{Message: message})
}

// Abort sends a failure envelope and stops the handler chain. Middleware
// rejecting a request uses this.
func Abort(c *gin.Context, statusCode int, message string) {
	c.Abort()
	ErrorWithCode(c, statusCode, message)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusUnauthorized, message)
}
