package javaobj

import (
	"errors"
	"fmt"
)

var (
	ErrStreamHeader       = errors.New("invalid stream header")
	ErrUnexpectedOpcode   = errors.New("unexpected type code")
	ErrUnknownOpcode      = errors.New("unknown type code")
	ErrUnsupportedFeature = errors.New("unsupported feature")
	ErrTruncatedStream    = errors.New("truncated stream")
	ErrMalformedStream    = errors.New("malformed stream")
	ErrHandleResolution   = errors.New("invalid handle")
	ErrUnknownFieldType   = errors.New("unknown field type")
	ErrDepthExceeded      = errors.New("nesting too deep")
	ErrInvalidValue       = errors.New("invalid value")
)

// A DecodeError is returned when a stream cannot be decoded. Offset is the
// cursor position at which decoding stopped. Err wraps one of the Err*
// sentinels above.
type DecodeError struct {
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("javaobj: decode failed at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
