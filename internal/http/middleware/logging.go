// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides request correlation, structured access logging, and a
// panic-safe recovery handler for the assistant API:
//
//   - RequestID() gives every request a stable correlation ID, propagated via
//     X-Request-ID and stored in the Gin context. Chat clients echo it back
//     when reporting a bad reply, which makes transcript debugging tractable.
//   - Logger() emits one structured zerolog line per request with method,
//     route, status, latency and sizes, and attaches a request-scoped logger
//     so services can tag their own lines with the same correlation ID.
//   - Recovery() converts panics into a JSON 500 carrying the request ID.
//   - LoggerFrom() fetches the request-scoped logger inside handlers
//     (e.g., lg.Info().Str("conversation_id", id).Msg("…")).
//
// Compose RequestID() first, then a logger (Logger or RedactingLogger), then
// Recovery(), so panics and errors are logged with the correlation ID. Raw
// query strings are capped before logging; chat payloads travel in request
// bodies, which are never logged here.
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// requestIDKey is the Gin context key holding the correlation ID.
	requestIDKey = "requestID"
	// requestIDHeader carries the correlation ID on requests and responses.
	requestIDHeader = "X-Request-ID"
	// maxQueryLogLength bounds how much of the raw query string is logged.
	maxQueryLogLength = 2048
)

// RequestID attaches (or propagates) a correlation identifier per request.
//
// An incoming X-Request-ID is reused when present (header lookup is
// case-insensitive); otherwise a fresh UUIDv4 is generated. The ID is stored
// in the Gin context and mirrored onto the response header so clients can
// quote it when a conversation goes wrong.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Logger writes a structured access log line for each request.
//
// Level tracks the outcome: error for 5xx or when the Gin context collected
// errors, warn for 4xx, info otherwise. The route pattern (c.FullPath) is
// preferred for the path field so /api/v1/assistant/chat stays a single
// series in log aggregation; unmatched routes fall back to the raw URL path.
//
// A request-scoped zerolog.Logger preloaded with the same fields is stored
// under the "logger" context key for handlers and services to use. Install
// after RequestID() so the correlation ID is available.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		rid, _ := c.Get(requestIDKey)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("referer", c.Request.Referer()).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogLength)).
			// ContentLength is -1 when unknown (chunked audio uploads).
			Int64("bytes_in", c.Request.ContentLength).
			Logger()

		c.Set("logger", &l)

		c.Next()

		ev := l.With().
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			ev.Error().Str("errors", c.Errors.String()).Msg("request")
		case status >= 500:
			ev.Error().Msg("request")
		case status >= 400:
			ev.Warn().Msg("request")
		default:
			ev.Info().Msg("request")
		}
	}
}

// Recovery intercepts panics, logs the stack, and answers with a JSON 500.
//
// The body matches the error envelope the handlers produce:
//
//	{ "request_id": "...", "code": "internal_error", "message": "internal server error" }
//
// When the handler already wrote part of a response (streams, partial TTS
// payloads), only the status is aborted; no JSON is appended to a half-sent
// body. Install after Logger() so the panic line carries request context.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rid, _ := c.Get(requestIDKey)
				log.Error().
					Interface("panic", rec).
					Bytes("stack", debug.Stack()).
					Str("request_id", asString(rid)).
					Msg("panic recovered")

				if !c.Writer.Written() {
					c.Header("Content-Type", "application/json")
					c.Header(requestIDHeader, asString(rid))
					c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
						"request_id": asString(rid),
						"code":       "internal_error",
						"message":    "internal server error",
					})
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped zerolog.Logger attached by Logger().
// Without one it falls back to the global logger, so callers never need a
// nil check.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get("logger"); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// asString reads a context value as a string, empty for anything else.
func asString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// truncate caps s at max bytes and appends an ellipsis; max <= 0 disables
// the cap. Byte-based truncation is fine for log output.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
