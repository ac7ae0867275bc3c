package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl marks responses as cacheable for the given lifetime.
func CacheControl(lifetime time.Duration) gin.HandlerFunc {
	header := fmt.Sprintf("public, max-age=%d", int(lifetime.Seconds()))
	return func(c *gin.Context) {
		c.Header("Cache-Control", header)
		c.Next()
	}
}
