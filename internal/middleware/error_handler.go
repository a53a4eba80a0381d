package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultErrorMessage = "server error"

type statusCoder interface {
	StatusCode() int
}

// ErrorHandler is the single place failures forwarded with c.Error end up.
// The response status comes from the error's StatusCode() when it has one.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		var sc statusCoder
		if errors.As(err, &sc) && sc.StatusCode() != 0 {
			status = sc.StatusCode()
		}

		message := err.Error()
		if message == "" {
			message = defaultErrorMessage
		}

		fields := logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		}
		if start := RequestTime(c); !start.IsZero() {
			fields["latency"] = time.Since(start).String()
		}
		logrus.WithError(err).WithFields(fields).Error("Request failed")

		if c.Writer.Written() {
			return
		}
		c.JSON(status, gin.H{"error": message})
	}
}
