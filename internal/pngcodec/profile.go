package pngcodec

import "github.com/imgcodec-core/imgcodec/internal/colorprofile"

// colorProfileInputs carries the raw libpng chunk fields go_png_begin_read
// extracted, so recoverColorProfile can apply spec §4.6's precedence
// rules without reaching back into cgo.
type colorProfileInputs struct {
	hasSRGB   bool
	hasGAMA   bool
	fileGamma float64

	hasCHRM                                   bool
	whiteX, whiteY                            float64
	redX, redY, greenX, greenY, blueX, blueY float64

	isColorImage bool

	iccData    []byte
	iccIsColor bool
	iccIsGray  bool
}

// recoverColorProfile sets gamma from the sRGB/gAMA chunks, then
// applies spec §4.6's recorded-source precedence: ICC profile (RGB) >
// ICC profile (gray, released unused) > gAMA+cHRM synthesis > none.
func recoverColorProfile(s *State, in colorProfileInputs) {
	if in.hasSRGB {
		s.gamma = defaultGamma
	} else if in.hasGAMA {
		s.gamma = in.fileGamma
	}

	switch {
	case len(in.iccData) > 0 && in.isColorImage && in.iccIsColor:
		prof, err := colorprofile.OpenEmbedded(in.iccData)
		if err != nil {
			s.profileSource = ProfileNone
			return
		}
		s.profile = prof
		s.iccProfile = in.iccData
		s.profileSource = ProfileICCP

	case len(in.iccData) > 0 && !in.isColorImage && in.iccIsGray:
		// ICCP-GRAY: recorded but the profile itself is released
		// unused (spec §4.6 case 3 — gray transform is not performed).
		s.profileSource = ProfileICCPGray

	case !in.hasSRGB && in.isColorImage && in.hasGAMA && in.hasCHRM:
		prof, err := colorprofile.SynthesizeFromChromaticity(
			in.whiteX, in.whiteY, in.redX, in.redY, in.greenX, in.greenY, in.blueX, in.blueY,
			1.0/s.gamma,
		)
		if err != nil {
			s.profileSource = ProfileNone
			return
		}
		s.profile = prof
		s.profileSource = ProfileGAMAChroma

	default:
		s.profileSource = ProfileNone
	}
}
