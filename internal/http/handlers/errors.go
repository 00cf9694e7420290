// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request) mirror common HTTP status semantics.
//   - Domain-specific codes (e.g., policy_rejected, upstream_failed) are reserved
//     for pipeline errors that cannot be conveyed by status alone.
//   - All error responses must include both an HTTP status and one of these codes.
package handlers

const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeRateLimited = "too_many_requests"
	ErrCodeInternal    = "internal_error"

	// Domain-specific:
	ErrCodePolicyRejected   = "policy_rejected"
	ErrCodeUpstreamFailed   = "upstream_failed"
	ErrCodeGenerationFailed = "generation_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
