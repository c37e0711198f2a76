package jpegcodec

import "errors"

var (
	// ErrStageViolation indicates an operation was invoked outside the
	// stage it requires (spec §5, invariants I1–I3).
	ErrStageViolation = errors.New("jpegcodec: operation invalid in current stage")

	// ErrUnexpectedFormat indicates libjpeg produced an output component
	// count other than the 4 (BGRA) begin-read always requests.
	ErrUnexpectedFormat = errors.New("jpegcodec: unexpected output component count")
)
