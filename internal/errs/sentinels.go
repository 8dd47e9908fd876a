// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates input rejected before or by the store (blank content, bad enum, check constraint).
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates missing or failed authentication.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates a row-level policy rejected the write.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates temporary sign-in lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")
)
