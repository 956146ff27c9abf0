package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// OTP / captcha flow errors. These are terminal for the current attempt
	// and must reach the caller with their specific kind intact.
	ErrCaptchaRejected   = errors.New("captcha rejected")
	ErrMissingCredential = errors.New("missing credential")
	ErrCooldownActive    = errors.New("resend cooldown active")
	ErrOTPExpired        = errors.New("otp expired")
	ErrOTPMismatch       = errors.New("otp mismatch")

	// ErrUpstream covers collaborator network and non-2xx failures that have
	// no more specific classification.
	ErrUpstream = errors.New("upstream unavailable")
)
