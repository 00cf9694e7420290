// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders, which hardens the JSON responses of an
// API that is called cross-origin from embedded chat widgets. It covers HSTS
// (opt-in, HTTPS only), cache suppression for conversation payloads, and
// browser feature policies. No CSP is set here; the API never serves HTML.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures the headers emitted by SecurityHeaders.
//
// EnableHSTS turns on Strict-Transport-Security for HTTPS requests. Only
// enable it when traffic is HTTPS end-to-end, including the hop between the
// reverse proxy and the app; the header is never sent for plain HTTP.
//
// HSTSMaxAge sets the HSTS lifetime and defaults to 180 days when zero.
//
// NoStore adds Cache-Control: no-store (plus legacy Pragma/Expires) so chat
// replies, which can quote a visitor's own messages, are never cached by
// intermediaries.
//
// EnablePolicy adds Permissions-Policy and X-Permitted-Cross-Domain-Policies.
// Both only matter to browsers and are harmless for other clients.
type SecurityOptions struct {
	EnableHSTS   bool
	HSTSMaxAge   time.Duration
	NoStore      bool
	EnablePolicy bool
}

// SecurityHeaders returns a Gin middleware that attaches conservative
// security headers to every response.
//
// Always set: X-Content-Type-Options: nosniff, X-Frame-Options: DENY,
// Referrer-Policy: no-referrer. The optional groups follow SecurityOptions.
// The Permissions-Policy keeps microphone=(self) rather than denying it,
// since the voice chat widget records audio in the browser before posting it
// to the audio endpoint.
//
// When a X-Request-ID response header is present it is appended to
// Access-Control-Expose-Headers so cross-origin widget code can read the
// correlation ID. Safe to combine with CORS and the logging middleware.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hstsValue := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "camera=(), geolocation=(), microphone=(self), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hstsValue)
		}

		if rid := h.Get("X-Request-ID"); rid != "" {
			const hdr = "Access-Control-Expose-Headers"
			switch cur := h.Get(hdr); {
			case cur == "":
				h.Set(hdr, "X-Request-ID")
			case !strings.Contains(cur, "X-Request-ID"):
				h.Set(hdr, cur+", X-Request-ID")
			}
		}

		c.Next()
	}
}

// isHTTPS reports whether the request arrived over HTTPS, either directly
// (r.TLS != nil) or via a proxy that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
