package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const requestTimeKey = "requestTime"

// RequestLogger stamps the start time on the context and logs one line per
// request once the chain has finished.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Set(requestTimeKey, start)

		c.Next()

		entry := logrus.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})
		if c.Writer.Status() >= 500 {
			entry.Warn("Request completed")
			return
		}
		entry.Info("Request completed")
	}
}

// RequestTime returns when RequestLogger saw the request, or the zero time.
func RequestTime(c *gin.Context) time.Time {
	v, ok := c.Get(requestTimeKey)
	if !ok {
		return time.Time{}
	}
	t, _ := v.(time.Time)
	return t
}
