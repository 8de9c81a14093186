package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Success wraps payload in the standard success envelope.
func Success(c *gin.Context, status int, payload interface{}) {
	JSON(c, status, gin.H{"success": true, "data": payload})
}

// OK writes a 200 OK success envelope.
func OK(c *gin.Context, payload interface{}) {
	Success(c, http.StatusOK, payload)
}
