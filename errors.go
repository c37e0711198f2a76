package imgcodec

import (
	"errors"
	"fmt"
)

var (
	// ErrCodecNotImplemented indicates no codec definition is registered
	// for a given identifier.
	ErrCodecNotImplemented = errors.New("codec not implemented")

	// ErrStageViolation indicates an operation was invoked outside the
	// stage it requires (spec §5, invariants I1–I3).
	ErrStageViolation = errors.New("operation invalid in current stage")

	// ErrMissingSurface indicates read-frame was called without the
	// caller having installed a pixel buffer (spec §4.3/§7).
	ErrMissingSurface = errors.New("caller pixel surface not installed")

	// ErrRowBufferTooSmall indicates the caller's surface is smaller
	// than stride*height (spec §4.8).
	ErrRowBufferTooSmall = errors.New("pixel buffer smaller than stride*height")
)

// CodecNotImplementedError wraps ErrCodecNotImplemented with the
// offending identifier.
type CodecNotImplementedError struct {
	ID CodecID
}

func (e *CodecNotImplementedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodecNotImplemented.Error(), e.ID)
}

func (e *CodecNotImplementedError) Unwrap() error { return ErrCodecNotImplemented }

// StageError wraps ErrStageViolation with the stage observed and the
// stage required.
type StageError struct {
	Op       string
	Have     Stage
	Required Stage
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s requires stage %s, have %s", ErrStageViolation.Error(), e.Op, e.Required, e.Have)
}

func (e *StageError) Unwrap() error { return ErrStageViolation }

// DecodeError wraps a lower-level codec library failure with the
// codec identifier and the underlying cause.
type DecodeError struct {
	ID    CodecID
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode failed: %v", e.ID, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// EncodeError wraps a lower-level codec library failure encountered
// while encoding.
type EncodeError struct {
	ID    CodecID
	Cause error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("%s: encode failed: %v", e.ID, e.Cause)
}

func (e *EncodeError) Unwrap() error { return e.Cause }

// RowBufferError wraps ErrRowBufferTooSmall with the sizes observed.
type RowBufferError struct {
	BufferSize, Stride, Height int
}

func (e *RowBufferError) Error() string {
	return fmt.Sprintf("%s: buffer=%d stride=%d height=%d", ErrRowBufferTooSmall.Error(), e.BufferSize, e.Stride, e.Height)
}

func (e *RowBufferError) Unwrap() error { return ErrRowBufferTooSmall }
