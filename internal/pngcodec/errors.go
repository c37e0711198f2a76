package pngcodec

import "errors"

var (
	// ErrStageViolation indicates an operation was invoked outside the
	// stage it requires (spec §5, invariants I1–I3).
	ErrStageViolation = errors.New("pngcodec: operation invalid in current stage")

	// ErrUnexpectedFormat indicates libpng produced an output channel
	// count other than the 4 (BGRA) the transform chain always requests.
	ErrUnexpectedFormat = errors.New("pngcodec: unexpected output channel count")
)
