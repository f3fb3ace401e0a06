package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the id of the current request.
const RequestIDKey = "request_id"

// JSONResponse is the envelope every endpoint answers with.
type JSONResponse struct {
	Status    bool        `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError writes a failed envelope tagged with the request id and records
// err on the context so the access log reports it.
func RespondError(c *gin.Context, code int, err error) {
	if err == nil {
		err = errors.New(http.StatusText(code))
	}
	_ = c.Error(err)
	c.JSON(code, JSONResponse{
		Status:    false,
		Message:   err.Error(),
		RequestID: c.GetString(RequestIDKey),
	})
}
