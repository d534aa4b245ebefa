package middleware

import "github.com/gin-gonic/gin"

// NoStoreMiddleware marks responses as uncacheable. Location and
// enforcement state are time-sensitive; a cached copy is a wrong copy.
func NoStoreMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
