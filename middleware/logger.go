package middleware

import (
	"time"

	"gamecatalog/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs all incoming HTTP requests
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		statusCode := c.Writer.Status()

		fields := logrus.Fields{
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"route":         c.FullPath(),
			"status":        statusCode,
			"duration_ms":   time.Since(startTime).Milliseconds(),
			"ip":            c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
			"query":         c.Request.URL.RawQuery,
			"response_size": c.Writer.Size(),
		}

		switch {
		case statusCode >= 500:
			utils.LogError("HTTP Request", fields)
		case statusCode >= 400:
			utils.LogWarn("HTTP Request", fields)
		default:
			utils.LogInfo("HTTP Request", fields)
		}
	}
}

// ErrorLogger logs errors attached to the context with c.Error.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, err := range c.Errors {
			utils.LogError("Request error occurred", logrus.Fields{
				"error":  err.Error(),
				"type":   err.Type,
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			})
		}
	}
}
