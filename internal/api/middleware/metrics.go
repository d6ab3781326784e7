package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stitts-dev/nfl-dfs-optimizer/pkg/metrics"
)

// Metrics counts requests by matched route so path parameters do not explode cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()))
	}
}
