// Package pngcodec implements the PNG decoder and encoder state
// machines of spec §4.3/§4.5, driving libpng via cgo. Its shape
// mirrors internal/jpegcodec deliberately: no PNG-specific teacher
// file exists in the pack, so the JPEG cgo-binding pattern (malloc'd
// C struct pair, setjmp-protected begin/finish split, row-pointer
// scanline I/O) is reapplied here against libpng's API instead of
// libjpeg-turbo's.
package pngcodec

import (
	"unsafe"

	"github.com/imgcodec-core/imgcodec/internal/colorprofile"
)

type Stage int

const (
	StageNotStarted Stage = iota
	StageBeginRead
	StageFinishRead
	StageFailed
)

const sizeUnset = -1

// defaultGamma is the PNG spec §4.3 fallback when neither an sRGB
// chunk nor a gAMA chunk is present (≈ 1/2.2).
const defaultGamma = 0.45455

// ProfileSource records which of spec §4.6's recorded-source branches
// produced the state's color profile; an sRGB chunk or a bare gAMA
// value only adjusts gamma and isn't itself a recorded source.
type ProfileSource int

const (
	ProfileNone ProfileSource = iota
	ProfileICCP
	ProfileICCPGray
	ProfileGAMAChroma
)

// State is the PNG decoder state (spec §4.3). The underlying
// png_structp/png_infop pair is created fresh per begin-read and
// released at finish-read or on error. Begin-read and finish-read each
// allocate their own longjmp buffer, and finish-read points libpng's
// error hook at its own before decoding.
type State struct {
	stage Stage

	input []byte

	width, height int
	bitDepth      int
	colorType     int
	stride        int
	gamma         float64
	profileSource ProfileSource
	iccProfile    []byte
	profile       *colorprofile.Profile

	pixelSize int

	lastErr error

	cPng    unsafe.Pointer
	cInfo   unsafe.Pointer
	hasCPng bool
}

// NewState creates a fresh decoder state wired to buf, in
// StageNotStarted (spec §4.2).
func NewState(buf []byte) *State {
	s := &State{}
	s.reset(buf)
	return s
}

// reset is the idempotent release-and-rewind routine of spec §4.3's
// "Reset" paragraph: clear geometry, rewind to not-started, default
// gamma back to 0.45455. Called on entry to begin-read and on error.
func (s *State) reset(buf []byte) {
	s.releaseLibHandles()
	if s.profile != nil {
		s.profile.Close()
		s.profile = nil
	}
	s.stage = StageNotStarted
	s.input = buf
	s.width, s.height, s.bitDepth, s.colorType, s.stride = 0, 0, 0, 0, 0
	s.gamma = defaultGamma
	s.profileSource = ProfileNone
	s.iccProfile = nil
	s.pixelSize = sizeUnset
	s.lastErr = nil
}

// Dispose quarantines the state (spec §9, resolved open question i):
// always wired so a resource-buffer teardown releases in-flight
// library handles even without an explicit finish-read.
func (s *State) Dispose() {
	s.reset(nil)
	s.stage = StageFailed
}

func (s *State) Stage() Stage { return s.stage }

func (s *State) LastErr() error { return s.lastErr }

// Width, Height, Gamma, ProfileSource, ICCProfile expose the geometry
// and color-profile fields computed during begin-read so the root
// facade and internal/colorprofile can act on them without poking at
// unexported state directly.
func (s *State) Width() int                   { return s.width }
func (s *State) Height() int                  { return s.height }
func (s *State) Gamma() float64               { return s.gamma }
func (s *State) ProfileSource() ProfileSource { return s.profileSource }
func (s *State) ICCProfile() []byte           { return s.iccProfile }
func (s *State) Stride() int                  { return s.stride }

// Profile returns the resolved color profile to apply in
// Transform-to-sRGB (spec §4.6), or nil when no profile is held
// (profileSource none or ICCP-GRAY).
func (s *State) Profile() *colorprofile.Profile { return s.profile }
