package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"auction-engine/utils"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"route":   c.FullPath(),
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	}
	if len(c.Errors) > 0 {
		fields["errors"] = c.Errors.String()
	}

	if c.Writer.Status() >= 500 {
		utils.Warn("HTTP Request", fields)
		return
	}
	utils.Info("HTTP Request", fields)
}
