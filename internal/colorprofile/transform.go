package colorprofile

/*
#cgo pkg-config: lcms2
#include <stdlib.h>
#include <lcms2.h>

static cmsHPROFILE go_open_profile(unsigned char *data, unsigned int len) {
	return cmsOpenProfileFromMem(data, len);
}

static cmsHPROFILE go_srgb_profile(void) {
	return cmsCreate_sRGBProfile();
}

// go_synthesize_rgb_profile builds the gAMA+cHRM-derived profile of
// spec §4.6 case 4: white point and three primaries from the cHRM
// chunk (Y forced to 1 on each, matching how lcms2's cmsCIExyY
// already omits Y from chromaticity-only chunks), and a single tone
// curve of 1/gamma applied to all three channels.
static cmsHPROFILE go_synthesize_rgb_profile(
	double wx, double wy, double rx, double ry, double gx, double gy, double bx, double by,
	double gamma
) {
	cmsCIExyY white = {wx, wy, 1.0};
	cmsCIExyYTRIPLE primaries = {
		{rx, ry, 1.0},
		{gx, gy, 1.0},
		{bx, by, 1.0},
	};
	cmsToneCurve *curve = cmsBuildGamma(NULL, gamma);
	if (!curve) {
		return NULL;
	}
	cmsToneCurve *curves[3] = {curve, curve, curve};
	cmsHPROFILE prof = cmsCreateRGBProfile(&white, &primaries, curves);
	cmsFreeToneCurve(curve);
	return prof;
}

static cmsHTRANSFORM go_create_transform(cmsHPROFILE src, cmsUInt32Number srcFormat, cmsHPROFILE dst, cmsUInt32Number dstFormat) {
	return cmsCreateTransform(src, srcFormat, dst, dstFormat, INTENT_PERCEPTUAL, 0);
}

static void go_do_transform(cmsHTRANSFORM xform, void *in, void *out, unsigned int n) {
	cmsDoTransform(xform, in, out, n);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// SurfaceFormat names the channel layout of a decoded pixel surface,
// mirroring the root imgcodec.PixelFormat values this package
// transforms in place.
type SurfaceFormat int

const (
	FormatBGRA32 SurfaceFormat = iota
	FormatBGR24
	FormatGray8
)

func cmsFormat(f SurfaceFormat) (C.cmsUInt32Number, int, error) {
	switch f {
	case FormatBGRA32:
		return C.TYPE_BGRA_8, 4, nil
	case FormatBGR24:
		return C.TYPE_BGR_8, 3, nil
	case FormatGray8:
		return C.TYPE_GRAY_8, 1, nil
	default:
		return 0, 0, fmt.Errorf("colorprofile: unknown surface format %v", f)
	}
}

// Profile wraps an lcms2 profile handle owned by this package.
type Profile struct {
	handle C.cmsHPROFILE
}

// OpenEmbedded parses an in-memory ICC profile blob (spec §4.6 cases
// 2/3, ICCP/ICCP-GRAY).
func OpenEmbedded(data []byte) (*Profile, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("colorprofile: empty profile data")
	}
	h := C.go_open_profile((*C.uchar)(unsafe.Pointer(&data[0])), C.uint(len(data)))
	if h == nil {
		return nil, fmt.Errorf("colorprofile: lcms2 failed to open embedded profile")
	}
	return &Profile{handle: h}, nil
}

// SynthesizeFromChromaticity builds the gAMA+cHRM-derived profile of
// spec §4.6 case 4.
func SynthesizeFromChromaticity(whiteX, whiteY, redX, redY, greenX, greenY, blueX, blueY, gamma float64) (*Profile, error) {
	h := C.go_synthesize_rgb_profile(
		C.double(whiteX), C.double(whiteY),
		C.double(redX), C.double(redY),
		C.double(greenX), C.double(greenY),
		C.double(blueX), C.double(blueY),
		C.double(gamma),
	)
	if h == nil {
		return nil, fmt.Errorf("colorprofile: out of memory synthesizing profile")
	}
	return &Profile{handle: h}, nil
}

// Close releases the underlying lcms2 profile handle.
func (p *Profile) Close() {
	if p == nil || p.handle == nil {
		return
	}
	C.cmsCloseProfile(p.handle)
	p.handle = nil
}

// TransformToSRGB applies a perceptual transform from p to sRGB, in
// place, over pixels laid out per format (spec §4.6
// "Transform-to-sRGB"). stride is the caller's actual row pitch in
// bytes (collaborators.go: Stride >= Width*Format.BytesPerPixel());
// rows are transformed one at a time rather than as one contiguous
// block so row padding never gets pulled into the pixel data.
func (p *Profile) TransformToSRGB(pixels []byte, format SurfaceFormat, width, height, stride int) error {
	if p == nil || p.handle == nil {
		return fmt.Errorf("colorprofile: transform requested on nil profile")
	}
	if len(pixels) == 0 || width <= 0 || height <= 0 {
		return nil
	}

	fmtCode, bpp, err := cmsFormat(format)
	if err != nil {
		return err
	}
	rowWidth := width * bpp
	if stride < rowWidth {
		return fmt.Errorf("colorprofile: stride %d smaller than row width %d", stride, rowWidth)
	}
	if len(pixels) < stride*height {
		return fmt.Errorf("colorprofile: buffer too small: have %d, need %d (stride=%d height=%d)", len(pixels), stride*height, stride, height)
	}

	dst := C.go_srgb_profile()
	if dst == nil {
		return fmt.Errorf("colorprofile: out of memory creating sRGB destination profile")
	}
	defer C.cmsCloseProfile(dst)

	xform := C.go_create_transform(p.handle, fmtCode, dst, fmtCode)
	if xform == nil {
		return fmt.Errorf("colorprofile: out of memory creating transform")
	}
	defer C.cmsDeleteTransform(xform)

	for row := 0; row < height; row++ {
		rowBytes := pixels[row*stride : row*stride+rowWidth]
		ptr := unsafe.Pointer(&rowBytes[0])
		C.go_do_transform(xform, ptr, ptr, C.uint(width))
	}
	return nil
}
