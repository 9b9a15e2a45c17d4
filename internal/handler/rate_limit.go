package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/okhomenko/plantkeeper/internal/service"
)

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(rateLimiter *service.RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		allowed, retryAfter, err := rateLimiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis trouble should not take the API down, let the request pass.
			c.Next()
			return
		}

		remaining, _ := rateLimiter.GetRemainingRequests(c.Request.Context(), key, limit, window)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.Header("X-RateLimit-Retry-After", strconv.Itoa(retryAfterSeconds(retryAfter)))
			respondError(c, http.StatusTooManyRequests, "Rate limit exceeded, try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

// retryAfterSeconds converts the limiter's wait into whole seconds, rounding
// up so clients never retry before the window opens.
func retryAfterSeconds(wait time.Duration) int {
	seconds := int((wait + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// IPBasedKey extracts rate limit key from client IP
func IPBasedKey(c *gin.Context) string {
	// X-Forwarded-For can contain multiple IPs, take the first one
	ip := c.GetHeader("X-Forwarded-For")
	if ip != "" {
		ips := strings.Split(ip, ",")
		return strings.TrimSpace(ips[0])
	}
	return c.ClientIP()
}

// AuthEndpointKey rates login/register by client IP to slow brute force
// attempts regardless of which emails they try.
func AuthEndpointKey(c *gin.Context) string {
	return IPBasedKey(c)
}
