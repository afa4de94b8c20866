package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/lukewarren/accountd/pkg/errors"
)

// MessageBody is the envelope used for plain status responses and all errors.
type MessageBody struct {
	Message string `json:"message"`
}

// Message writes a JSON {message} body with the given status code.
func Message(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, MessageBody{Message: message})
}

// Resource writes the resource itself as the JSON body.
func Resource(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Error renders an error as a {message} body using the AppError status code.
// Unexpected errors become 500s carrying their raw message.
func Error(c *gin.Context, err error) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	c.JSON(status, MessageBody{Message: appErr.Message})
}
