// ABOUTME: Gin middleware for caller identity and request metrics
// ABOUTME: Identity comes from X-User-ID, set by the fronting auth proxy
package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harper/voicenotes/internal/metrics"
)

const (
	// UserHeader carries the authenticated caller's id
	UserHeader = "X-User-ID"

	userKey = "userID"
)

// requireUser rejects requests without a caller identity
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(userKey, userID)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userKey)
}

// recordRequests counts and times every request by route template
func recordRequests(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start).Seconds())
	}
}
