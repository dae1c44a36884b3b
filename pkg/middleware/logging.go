package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamsteps/teamsteps/pkg/logger"
)

// RequestLogger logs one line per request through pkg/logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infof("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
