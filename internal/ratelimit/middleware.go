package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dollydang/sprint-portfolio-analytics/internal/monitoring"
)

// IPRateLimitMiddleware creates middleware for IP-based rate limiting.
// Blocked requests are counted on metrics when one is provided.
func (rl *RateLimiter) IPRateLimitMiddleware(metrics *monitoring.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		result := rl.AllowIP(ip)

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))

		if !result.Allowed {
			if metrics != nil {
				metrics.IncrementRateLimitIPBlock()
			}

			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded for IP",
				"message":     fmt.Sprintf("You have exceeded the rate limit of %d requests per minute", result.Limit),
				"retry_after": int(result.RetryAfter.Seconds()),
				"reset_at":    result.ResetAt.Unix(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
