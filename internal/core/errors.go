// Package core defines sentinel errors.
package core

import "errors"

// Sentinel errors for decode failures. Callers use errors.Is to
// distinguish them; all of them are local and non-fatal to capture.
var (
	// Frame/header decoding errors
	ErrFrameTooShort       = errors.New("framewatch: frame too short")
	ErrInvalidVersion      = errors.New("framewatch: invalid IP version")
	ErrInvalidHeaderLength = errors.New("framewatch: invalid IPv4 header length")

	// Capture errors
	ErrSourceNotFound   = errors.New("framewatch: capture source not found")
	ErrSourceNotStarted = errors.New("framewatch: capture source not started")

	// Configuration errors
	ErrConfigInvalid = errors.New("framewatch: invalid configuration")

	// Analyzer errors
	ErrAnalyzerDisabled = errors.New("framewatch: analyzer disabled")
)
