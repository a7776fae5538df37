package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const redacted = "********"

// LoggerConfig controls what the request logger captures.
type LoggerConfig struct {
	LogRequestBody  bool
	LogResponseBody bool  // response bodies of errors are always logged
	MaxBodySize     int64 // bytes
	SkipPaths       []string
	// Body and query fields whose lower-cased name contains one of these
	// are replaced before logging.
	SensitiveFields []string
}

func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		LogRequestBody:  true,
		LogResponseBody: false,
		MaxBodySize:     2048,
		SkipPaths:       []string{"/health", "/ping"},
		SensitiveFields: []string{
			"password", "token", "secret", "key", "auth", "credential",
			"studentname", "studentcontact",
		},
	}
}

func Logger(logger *zap.Logger) gin.HandlerFunc {
	return LoggerWithConfig(logger, DefaultLoggerConfig())
}

func LoggerWithConfig(logger *zap.Logger, config LoggerConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(config.SkipPaths))
	for _, p := range config.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skip[path]; ok {
			c.Next()
			return
		}

		start := time.Now()

		var requestBody string
		if config.LogRequestBody && c.Request.Body != nil && c.Request.ContentLength > 0 {
			if c.Request.ContentLength > config.MaxBodySize {
				requestBody = "[Request body too large to log]"
			} else {
				bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, config.MaxBodySize))
				if err == nil {
					c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
					requestBody = config.sanitizeBody(bodyBytes, c.ContentType())
				}
			}
		}

		writer := &limitedResponseWriter{
			ResponseWriter: c.Writer,
			maxSize:        config.MaxBodySize,
		}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int64("size", writer.size),
			zap.String("ip", c.ClientIP()),
		}
		if q := config.sanitizeQuery(c.Request.URL.RawQuery); q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if requestBody != "" {
			fields = append(fields, zap.String("body", requestBody))
		}
		if uid := c.GetString("userID"); uid != "" {
			fields = append(fields, zap.String("uid", uid))
		}
		if email := c.GetString("email"); email != "" {
			fields = append(fields, zap.String("email", email))
		}
		if writer.body.Len() > 0 && (config.LogResponseBody || status >= 400) {
			fields = append(fields, zap.String("response", truncateString(writer.body.String(), 500)))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		logger.Log(levelFor(status), "HTTP request", fields...)
	}
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

// limitedResponseWriter keeps at most maxSize bytes of the response for logging.
type limitedResponseWriter struct {
	gin.ResponseWriter
	body    bytes.Buffer
	size    int64
	maxSize int64
}

func (w *limitedResponseWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)

	if w.size+int64(len(b)) <= w.maxSize {
		w.body.Write(b[:n])
	}
	w.size += int64(n)

	return n, err
}

func (config LoggerConfig) sanitizeBody(body []byte, contentType string) string {
	if len(body) == 0 {
		return ""
	}

	if strings.Contains(contentType, "application/json") {
		var jsonData interface{}
		if json.Unmarshal(body, &jsonData) == nil {
			if formatted, err := json.Marshal(config.hideSensitiveFields(jsonData)); err == nil {
				return truncateString(string(formatted), 1024)
			}
		}
	}
	if strings.Contains(contentType, "multipart/") {
		return "[multipart body]"
	}

	return truncateString(string(body), 200)
}

func (config LoggerConfig) sanitizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return "[unparseable query]"
	}
	for key := range values {
		if config.isSensitiveField(key) {
			values.Set(key, redacted)
		}
	}
	return truncateString(values.Encode(), 200)
}

func (config LoggerConfig) hideSensitiveFields(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if config.isSensitiveField(key) {
				result[key] = redacted
			} else {
				result[key] = config.hideSensitiveFields(value)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = config.hideSensitiveFields(item)
		}
		return result
	default:
		return v
	}
}

func (config LoggerConfig) isSensitiveField(field string) bool {
	lower := strings.ToLower(field)
	for _, s := range config.SensitiveFields {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
