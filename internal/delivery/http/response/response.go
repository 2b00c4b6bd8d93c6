package response

import (
	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope for every API reply.
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Error     any    `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func Success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString("RequestID"),
	})
}

// Error writes a failure envelope. detail is optional and must be safe to
// show to clients.
func Error(c *gin.Context, code int, message string, detail any) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     detail,
		RequestID: c.GetString("RequestID"),
	})
}
