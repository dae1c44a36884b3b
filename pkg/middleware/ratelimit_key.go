package middleware

import "github.com/gin-gonic/gin"

// rateLimitKey prefers the resolved identity (per-user, NAT friendly) and
// falls back to the client IP.
func rateLimitKey(c *gin.Context, prefix string) string {
	if id, ok := GetIdentity(c); ok {
		return prefix + "user:" + id.Name()
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return prefix + "ip:" + ip
}
