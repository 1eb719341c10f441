// Package core defines sentinel errors.
package core

import "errors"

var (
	// Packet codec errors
	ErrMalformedHeader    = errors.New("argus: malformed primary header")
	ErrTruncatedPacket    = errors.New("argus: truncated packet")
	ErrDataLengthMismatch = errors.New("argus: packet data field length mismatch")

	// Decommutation errors
	ErrUnknownAPID   = errors.New("argus: no parameter definitions for apid")
	ErrShortUserData = errors.New("argus: field outside user data")

	// Calibration errors
	ErrCalibrationTypeMismatch = errors.New("argus: raw value is not numeric")

	// Sink errors
	ErrSinkFailure = errors.New("argus: sink write failed")

	// Plugin errors
	ErrPluginNotFound   = errors.New("argus: plugin not found")
	ErrPluginInitFailed = errors.New("argus: plugin init failed")

	// Configuration errors
	ErrConfigInvalid = errors.New("argus: invalid configuration")
)
