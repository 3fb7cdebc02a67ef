package handler

import (
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags each request with an ID, attaches a request-scoped logger
// to its context and logs the outcome.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		start := time.Now()
		c.Next()

		var event *zerolog.Event
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request handled")
	}
}

// NotFound serves files from staticDir for unmatched GET requests and answers
// everything else with a JSON 404.
func NotFound(staticDir string) gin.HandlerFunc {
	fs := http.Dir(staticDir)

	return func(c *gin.Context) {
		method := c.Request.Method
		if staticDir != "" && (method == http.MethodGet || method == http.MethodHead) && hasFile(fs, c.Request.URL.Path) {
			c.FileFromFS(c.Request.URL.Path, fs)
			return
		}

		c.JSON(http.StatusNotFound, ErrorResponse{Success: false, Error: "Route not found"})
	}
}

func hasFile(fs http.FileSystem, name string) bool {
	f, err := fs.Open(name)
	if err != nil {
		return false
	}
	stat, err := f.Stat()
	f.Close()
	if err != nil {
		return false
	}
	if !stat.IsDir() {
		return true
	}

	index, err := fs.Open(path.Join(name, "index.html"))
	if err != nil {
		return false
	}
	index.Close()
	return true
}
