// Package response writes the uniform JSON envelope every endpoint returns.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EgehanKilicarslan/taskmanager/backend-go/internal/apperr"
)

// Envelope is the body of every JSON response
type Envelope struct {
	StatusCode    int    `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
	Data          any    `json:"data,omitempty"`
	Error         string `json:"error,omitempty"`
}

// New builds an envelope for the given status
func New(status int, data any, errMessage string) Envelope {
	return Envelope{
		StatusCode:    status,
		StatusMessage: http.StatusText(status),
		Data:          data,
		Error:         errMessage,
	}
}

// Success writes data under the given status
func Success(c *gin.Context, status int, data any) {
	c.JSON(status, New(status, data, ""))
}

// OK writes data with 200
func OK(c *gin.Context, data any) {
	Success(c, http.StatusOK, data)
}

// Created writes data with 201
func Created(c *gin.Context, data any) {
	Success(c, http.StatusCreated, data)
}

// NoContent answers 204 with an empty body
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes err as "<Kind>: <message>" under the kind's status.
// Unclassified errors are reported as internal with a generic message.
func Error(c *gin.Context, err error) {
	appErr := apperr.From(err)
	status := appErr.Kind.Status()
	c.JSON(status, New(status, nil, appErr.Error()))
}

// Abort is Error for middleware; it stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
