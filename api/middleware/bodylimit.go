package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/domhash/models"
)

// BodyLimit caps request bodies at maxBytes. Bodies that declare a larger
// Content-Length are rejected outright; chunked bodies fail on read, which
// JSON binding reports as INVALID_INPUT. maxBytes <= 0 disables the cap.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	if maxBytes <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "request body too large",
				},
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
