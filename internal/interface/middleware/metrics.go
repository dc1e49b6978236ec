package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver records finished requests.
type HTTPObserver interface {
	ObserveHTTP(route, method string, status int, d time.Duration)
}

// Metrics reports every request to obs labelled by its route template.
func Metrics(obs HTTPObserver) gin.HandlerFunc {
	if obs == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		obs.ObserveHTTP(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}
