// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger used in front of
// the assistant endpoints. Visitors routinely paste their email address or
// phone number into chat messages and widget integrations have been seen
// putting contact details into query parameters, so the logger scrubs those
// patterns before anything reaches the log sink:
//
//   - request and response bodies are never logged, which keeps chat
//     transcripts and audio payloads out of log storage entirely
//   - emails, phone numbers, and UUID-shaped identifiers are replaced with
//     typed placeholders in query strings and header values
//   - sensitive headers (Authorization, Cookie, Set-Cookie, plus any listed
//     in RedactOptions.MaskHeaders) are masked outright
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders: []string{"X-API-Key"},
//	}))
//
// Scrubbing is best effort. Clients should still keep personal data out of
// URLs and headers; the chat payload belongs in the request body.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Patterns are ordered loosest-last: UUIDs first so the phone pattern cannot
// latch onto the digit runs inside one, then emails, then phones.
var (
	redactUUIDRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	redactEmailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits only, so hex segments of already-redacted IDs stay untouched.
	// Matches "+1 212-555-1212", "212 555 1212", "(212) 555-1212".
	redactPhoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// scrubPII replaces identifier-shaped substrings with typed placeholders.
func scrubPII(s string) string {
	if s == "" {
		return s
	}
	s = redactUUIDRE.ReplaceAllString(s, "[REDACTED:id]")
	s = redactEmailRE.ReplaceAllString(s, "[REDACTED:email]")
	s = redactPhoneRE.ReplaceAllString(s, "[REDACTED:phone]")
	return s
}

// RedactOptions configures extra scrub behavior for RedactingLogger.
//
// MaskHeaders lists additional header names whose values are replaced with
// "[REDACTED]" wholesale. Matching is case-insensitive and merged with the
// built-in set (Authorization, Cookie, Set-Cookie).
type RedactOptions struct {
	MaskHeaders []string
}

// RedactingLogger returns a Gin middleware that logs each request with
// sensitive values scrubbed.
//
// It records method, route path, query string, status, response size,
// latency, and request headers, applying scrubPII to the query and to every
// non-masked header value. The log level follows the response status: info
// below 400, warn for 4xx, error for 5xx. The request_id field prefers the
// response header set by RequestID() and falls back to the request header.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	masked := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			masked[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := scrubPII(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			val := strings.Join(vv, ", ")
			if _, ok := masked[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = scrubPII(val)
		}

		c.Next()

		status := c.Writer.Status()

		rid := c.Writer.Header().Get("X-Request-ID")
		if rid == "" {
			rid = c.GetHeader("X-Request-ID")
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
