// Package jpegcodec implements the JPEG decoder state machine of
// spec §4.4, driving libjpeg-turbo via cgo.
package jpegcodec

import (
	"runtime/cgo"
	"unsafe"
)

// Stage mirrors imgcodec.Stage without importing the root package
// (which imports jpegcodec): the not-started, begin-read, finish-read
// and failed stages of spec §3's state machine. It has no null member;
// the facade maps any other value to imgcodec.StageNull.
type Stage int

const (
	StageNotStarted Stage = iota
	StageBeginRead
	StageFinishRead
	StageFailed
)

// sizeUnset is the "not-yet-sized" sentinel for pixelSize (spec §9,
// resolved open question iii: a signed sentinel instead of -1 read as
// an unsigned capacity).
const sizeUnset = -1

// State is the JPEG decoder state (spec §3). The underlying
// jpeg_decompress_struct, its error manager (jpeg_error_mgr MUST be
// its first field — spec §4.4/§9, enforced in decoder.go's go_error_mgr
// layout) and its source manager are allocated fresh for each
// begin-read and torn down at finish-read or on error; between those
// calls State holds them together with the geometry and stage.
type State struct {
	stage Stage

	input []byte

	width, height int
	components    int
	stride        int
	gamma         float64

	pixelSize int

	lastErr error

	// cCinfo/cErrMgr are the malloc'd jpeg_decompress_struct and
	// go_error_mgr (decoder.go) kept alive across begin-read and
	// finish-read; srcHandle pins the boundSource registered for the
	// current begin-read. All three are released together in
	// releaseLibHandles (decoder.go), which reset also calls.
	cCinfo    unsafe.Pointer
	cErrMgr   unsafe.Pointer
	cSrcMgr   unsafe.Pointer
	srcHandle cgo.Handle
	hasSrc    bool
}

// NewState creates a fresh decoder state wired to buf, in
// StageNotStarted (spec §4.2 acquire-on-buffer, decoder branch).
func NewState(buf []byte) *State {
	s := &State{}
	s.reset(buf)
	return s
}

// reset is the idempotent release-and-rewind routine of spec §4.3's
// "Reset" paragraph, generalized to JPEG: clear geometry, rewind to
// not-started. Called on entry to begin-read and on error (spec I4).
func (s *State) reset(buf []byte) {
	s.releaseLibHandles()
	s.stage = StageNotStarted
	s.input = buf
	s.width, s.height, s.components, s.stride = 0, 0, 0, 0
	s.gamma = 0
	s.pixelSize = sizeUnset
	s.lastErr = nil
}

// Dispose is the resource-buffer teardown hook (spec §9, resolved
// open question i): always wired, so a host that frees the
// ResourceBuffer without an explicit read-frame/error path still
// quarantines the state instead of leaking the in-flight cgo handles
// a begin-read left installed.
func (s *State) Dispose() {
	s.reset(nil)
	s.stage = StageFailed
}

// Stage returns the current stage (spec invariant I1).
func (s *State) Stage() Stage { return s.stage }

// LastErr returns the most recently recorded failure, if any.
func (s *State) LastErr() error { return s.lastErr }
