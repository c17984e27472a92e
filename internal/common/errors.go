// Package common defines shared constants and sentinel errors used across
// docsync components. Callers should use errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Store-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors: the item was rejected before any I/O happened.
	ErrValidation = errors.New("validation error")

	// Encoding errors: source content could not be converted to a payload.
	ErrEncoding = errors.New("encoding error")

	// Remote tier errors. Adapters wrap every transport, auth or quota
	// failure in this sentinel and never retry internally.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// Local tier capacity errors.
	ErrCapacityExceeded = errors.New("local cache capacity exceeded")
)

// ErrQuotaExceeded is the platform-level storage quota case of
// ErrCapacityExceeded, detected from the underlying driver error signal.
// It matches both itself and ErrCapacityExceeded under errors.Is.
var ErrQuotaExceeded = fmt.Errorf("storage quota exhausted: %w", ErrCapacityExceeded)
