package engine

import (
	"errors"

	"github.com/warp/pay-structure/factory"
	"github.com/warp/pay-structure/grading"
	"github.com/warp/pay-structure/point"
)

var (
	// ErrSessionNotFound is returned by stores for an unknown session ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidConfig is returned for company settings the engine cannot use.
	ErrInvalidConfig = errors.New("invalid session config")
)

// IsClientError extends grading.IsClientError with session-level input errors.
func IsClientError(err error) bool {
	return grading.IsClientError(err) ||
		errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, point.ErrInvalidFactor) ||
		errors.Is(err, factory.ErrUnknownTemplate)
}

// IsNotFound extends grading.IsNotFound with missing sessions and factors.
func IsNotFound(err error) bool {
	return grading.IsNotFound(err) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, point.ErrFactorNotFound)
}
