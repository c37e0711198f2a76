package pngcodec

/*
#cgo pkg-config: libpng
#include <stdlib.h>
#include <string.h>
#include <setjmp.h>
#include <png.h>

// go_png_error_mgr carries the longjmp target and a copy of the last
// error message across the read callback boundary (spec §4.3's
// "install an error-exit hook... returns control to a saved
// non-local-return marker"), the same shape as libjpeg's error_mgr in
// internal/jpegcodec/decoder.go, reapplied to libpng's jmpbuf API.
typedef struct {
	jmp_buf setjmp_buffer;
	char message[256];
} go_png_error_mgr;

extern void goPNGReadCallback(uintptr_t handle, unsigned char *out, size_t count);

static void go_png_error_fn(png_structp png_ptr, png_const_charp msg) {
	go_png_error_mgr *err = (go_png_error_mgr *)png_get_error_ptr(png_ptr);
	strncpy(err->message, msg, sizeof(err->message) - 1);
	err->message[sizeof(err->message) - 1] = '\0';
	longjmp(err->setjmp_buffer, 1);
}

static void go_png_warning_fn(png_structp png_ptr, png_const_charp msg) {
	// PNG warnings are non-fatal; spec §4.3 only wires the error exit.
}

static void go_png_read_fn(png_structp png_ptr, png_bytep data, png_size_t length) {
	uintptr_t handle = (uintptr_t)png_get_io_ptr(png_ptr);
	goPNGReadCallback(handle, (unsigned char *)data, (size_t)length);
}

// go_png_begin_read performs spec §4.3's begin-read: create the
// read/info structs, install the error hook and read callback, parse
// the header, then configure the pixel-transform chain so rows come
// out uniformly BGRA/8bpc/non-interlaced, and call
// png_read_update_info. Returns 0 on success, -1 on any libpng error
// (message left in err->message).
static int go_png_begin_read(
	png_structp *out_png, png_infop *out_info,
	go_png_error_mgr *err,
	uintptr_t src_handle,
	int *width, int *height, int *bit_depth, int *color_type,
	int *channels, size_t *row_bytes,
	int *has_srgb, double *file_gamma, int *has_gama,
	int *has_chrm,
	double *wx, double *wy, double *rx, double *ry, double *gx, double *gy, double *bx, double *by,
	unsigned char **icc_profile, unsigned int *icc_len
) {
	png_structp png_ptr = png_create_read_struct(PNG_LIBPNG_VER_STRING, err, go_png_error_fn, go_png_warning_fn);
	if (!png_ptr) {
		return -1;
	}
	png_infop info_ptr = png_create_info_struct(png_ptr);
	if (!info_ptr) {
		png_destroy_read_struct(&png_ptr, NULL, NULL);
		return -1;
	}

	if (setjmp(err->setjmp_buffer)) {
		png_destroy_read_struct(&png_ptr, &info_ptr, NULL);
		return -1;
	}

	png_set_read_fn(png_ptr, (png_voidp)src_handle, go_png_read_fn);
	png_read_info(png_ptr, info_ptr);

	png_uint_32 w, h;
	int bitdepth, colortype, interlace, compression, filter;
	png_get_IHDR(png_ptr, info_ptr, &w, &h, &bitdepth, &colortype, &interlace, &compression, &filter);

	*width = (int)w;
	*height = (int)h;
	*bit_depth = bitdepth;
	*color_type = colortype;

	*has_srgb = png_get_valid(png_ptr, info_ptr, PNG_INFO_sRGB) ? 1 : 0;
	*has_gama = png_get_gAMA(png_ptr, info_ptr, file_gamma) ? 1 : 0;
	*has_chrm = png_get_cHRM(png_ptr, info_ptr, wx, wy, rx, ry, gx, gy, bx, by) ? 1 : 0;

	png_charp name;
	int compression_type;
	png_bytep profile;
	png_uint_32 proflen;
	if (png_get_iCCP(png_ptr, info_ptr, &name, &compression_type, &profile, &proflen)) {
		*icc_profile = (unsigned char *)malloc(proflen);
		memcpy(*icc_profile, profile, proflen);
		*icc_len = proflen;
	} else {
		*icc_profile = NULL;
		*icc_len = 0;
	}

	// spec §4.3 pre-decode transform chain.
	if (!(colortype & PNG_COLOR_MASK_ALPHA)) {
		if (colortype == PNG_COLOR_TYPE_PALETTE) {
			png_set_palette_to_rgb(png_ptr);
		}
		if (colortype == PNG_COLOR_TYPE_GRAY && bitdepth < 8) {
			png_set_expand_gray_1_2_4_to_8(png_ptr);
		}
		if (png_get_valid(png_ptr, info_ptr, PNG_INFO_tRNS)) {
			png_set_tRNS_to_alpha(png_ptr);
		}
		png_set_filler(png_ptr, 0xFFFF, PNG_FILLER_AFTER);
	}
	if (bitdepth == 16) {
		png_set_strip_16(png_ptr);
	}
	if (!(colortype & PNG_COLOR_MASK_COLOR)) {
		png_set_gray_to_rgb(png_ptr);
	}
	png_set_bgr(png_ptr);
	png_set_interlace_handling(png_ptr);

	png_read_update_info(png_ptr, info_ptr);

	*channels = png_get_channels(png_ptr, info_ptr);
	*row_bytes = png_get_rowbytes(png_ptr, info_ptr);

	*out_png = png_ptr;
	*out_info = info_ptr;
	return 0;
}

// go_png_finish_read performs spec §4.3's finish-read: build a
// height-sized row pointer array over the caller's buffer (done
// Go-side via internal/rowptr and passed in as rows), request bulk
// decode, signal end-of-image, then release handles.
static int go_png_finish_read(
	png_structp png_ptr, png_infop info_ptr, go_png_error_mgr *err,
	unsigned char **rows, int height
) {
	png_set_error_fn(png_ptr, err, go_png_error_fn, go_png_warning_fn);
	if (setjmp(err->setjmp_buffer)) {
		png_destroy_read_struct(&png_ptr, &info_ptr, NULL);
		return -1;
	}
	png_read_image(png_ptr, rows);
	png_read_end(png_ptr, NULL);
	png_destroy_read_struct(&png_ptr, &info_ptr, NULL);
	return 0;
}

static uintptr_t go_png_io_handle(png_structp png_ptr) {
	return (uintptr_t)png_get_io_ptr(png_ptr);
}

static void go_png_destroy_read(png_structp png_ptr, png_infop info_ptr) {
	if (png_ptr) {
		png_destroy_read_struct(&png_ptr, &info_ptr, NULL);
	}
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"runtime/cgo"
	"unsafe"

	"github.com/imgcodec-core/imgcodec/internal/colorprofile"
	"github.com/imgcodec-core/imgcodec/internal/memsrc"
	"github.com/imgcodec-core/imgcodec/internal/rowptr"
)

//export goPNGReadCallback
func goPNGReadCallback(handle C.uintptr_t, out *C.uchar, count C.size_t) {
	cursor := cgo.Handle(handle).Value().(*memsrc.Cursor)
	n := int(count)
	if avail := cursor.Remaining(); n > avail {
		n = avail
	}
	if n > 0 {
		dst := unsafe.Slice((*byte)(unsafe.Pointer(out)), int(count))
		cursor.Read(dst[:n])
	}
	// A short read (n < count) leaves the tail of dst untouched;
	// libpng's own CRC/length checks then surface the truncation as
	// a decode error through go_png_error_fn, matching spec §4.7's
	// "fails gracefully rather than blocking" philosophy for JPEG,
	// generalized to PNG's pull model.
}

func (s *State) releaseLibHandles() {
	if s.hasCPng {
		cgo.Handle(C.go_png_io_handle((C.png_structp)(s.cPng))).Delete()
		C.go_png_destroy_read((C.png_structp)(s.cPng), (C.png_infop)(s.cInfo))
		s.cPng = nil
		s.cInfo = nil
		s.hasCPng = false
	}
}

// GetFrameInfo drives begin-read on first call (spec §4.3), including
// color-profile recovery (spec §4.6, finished by internal/colorprofile
// from the raw fields this returns).
func (s *State) GetFrameInfo() (width, height int, err error) {
	switch s.stage {
	case StageFailed:
		return 0, 0, fmt.Errorf("pngcodec: get-frame-info on failed state: %w", ErrStageViolation)
	case StageBeginRead, StageFinishRead:
		return s.width, s.height, nil
	}

	s.reset(s.input)

	cursor := memsrc.NewCursor(s.input)
	// libpng keeps this handle as its io pointer until finish-read or
	// releaseLibHandles deletes it: png_read_image pulls the rest of
	// the stream through goPNGReadCallback.
	handle := cgo.NewHandle(cursor)

	errMgr := (*C.go_png_error_mgr)(C.malloc(C.size_t(unsafe.Sizeof(C.go_png_error_mgr{}))))
	defer C.free(unsafe.Pointer(errMgr))

	var pngPtr C.png_structp
	var infoPtr C.png_infop
	var cW, cH, cBitDepth, cColorType, cChannels C.int
	var cRowBytes C.size_t
	var cHasSRGB, cHasGAMA, cHasCHRM C.int
	var cFileGamma C.double
	var cWx, cWy, cRx, cRy, cGx, cGy, cBx, cBy C.double
	var cICCProfile *C.uchar
	var cICCLen C.uint

	rc := C.go_png_begin_read(
		&pngPtr, &infoPtr, errMgr, C.uintptr_t(handle),
		&cW, &cH, &cBitDepth, &cColorType, &cChannels, &cRowBytes,
		&cHasSRGB, &cFileGamma, &cHasGAMA, &cHasCHRM,
		&cWx, &cWy, &cRx, &cRy, &cGx, &cGy, &cBx, &cBy,
		&cICCProfile, &cICCLen,
	)
	if rc != 0 {
		handle.Delete()
		msg := C.GoString((*C.char)(unsafe.Pointer(&errMgr.message[0])))
		e := fmt.Errorf("pngcodec: %s", msg)
		s.failAndRelease(e)
		return 0, 0, e
	}

	if int(cChannels) != 4 {
		C.go_png_destroy_read(pngPtr, infoPtr)
		handle.Delete()
		if cICCProfile != nil {
			C.free(unsafe.Pointer(cICCProfile))
		}
		e := fmt.Errorf("pngcodec: unexpected channel count %d after transform, want 4 (BGRA): %w", cChannels, ErrUnexpectedFormat)
		s.failAndRelease(e)
		return 0, 0, e
	}

	s.width = int(cW)
	s.height = int(cH)
	s.bitDepth = int(cBitDepth)
	s.colorType = int(cColorType)
	s.stride = int(cRowBytes)
	s.pixelSize = s.stride * s.height

	var iccData []byte
	var iccIsColor, iccIsGray bool
	if cICCProfile != nil {
		iccData = C.GoBytes(unsafe.Pointer(cICCProfile), C.int(cICCLen))
		C.free(unsafe.Pointer(cICCProfile))
		if hdr, err := colorprofile.ParseHeader(iccData); err == nil {
			iccIsColor = hdr.IsRGB()
			iccIsGray = hdr.IsGray()
		}
	}

	recoverColorProfile(s, colorProfileInputs{
		hasSRGB:   cHasSRGB != 0,
		hasGAMA:   cHasGAMA != 0,
		fileGamma: float64(cFileGamma),
		hasCHRM:   cHasCHRM != 0,
		whiteX:    float64(cWx), whiteY: float64(cWy),
		redX: float64(cRx), redY: float64(cRy),
		greenX: float64(cGx), greenY: float64(cGy),
		blueX: float64(cBx), blueY: float64(cBy),
		isColorImage: cColorType&C.PNG_COLOR_MASK_COLOR != 0,
		iccData:      iccData,
		iccIsColor:   iccIsColor,
		iccIsGray:    iccIsGray,
	})

	s.cPng = unsafe.Pointer(pngPtr)
	s.cInfo = unsafe.Pointer(infoPtr)
	s.hasCPng = true
	s.stage = StageBeginRead
	return s.width, s.height, nil
}

// ReadFrame drives finish-read (spec §4.3): builds row pointers over
// the caller's buffer, requests bulk decode, and releases handles.
func (s *State) ReadFrame(pixels []byte, stride int) error {
	if s.stage != StageBeginRead {
		return fmt.Errorf("pngcodec: read-frame requires stage begin-read, have %v: %w", s.stage, ErrStageViolation)
	}
	if pixels == nil {
		return fmt.Errorf("pngcodec: read-frame: caller pixel surface not installed")
	}

	rows, err := rowptr.Build(pixels, stride, s.height)
	if err != nil {
		s.failAndRelease(err)
		return err
	}

	var pinner runtime.Pinner
	pinner.Pin(&pixels[0])
	defer pinner.Unpin()

	cRows := make([]*C.uchar, len(rows))
	for i, p := range rows {
		cRows[i] = (*C.uchar)(p)
	}

	errMgr := (*C.go_png_error_mgr)(C.malloc(C.size_t(unsafe.Sizeof(C.go_png_error_mgr{}))))
	defer C.free(unsafe.Pointer(errMgr))

	ioHandle := cgo.Handle(C.go_png_io_handle((C.png_structp)(s.cPng)))
	rc := C.go_png_finish_read(
		(C.png_structp)(s.cPng), (C.png_infop)(s.cInfo), errMgr,
		(**C.uchar)(unsafe.Pointer(&cRows[0])), C.int(s.height),
	)
	ioHandle.Delete()
	s.hasCPng = false
	s.cPng = nil
	s.cInfo = nil

	if rc != 0 {
		msg := C.GoString((*C.char)(unsafe.Pointer(&errMgr.message[0])))
		e := fmt.Errorf("pngcodec: %s", msg)
		s.failAndRelease(e)
		return e
	}

	s.stage = StageFinishRead
	return nil
}

func (s *State) failAndRelease(err error) {
	s.reset(s.input)
	s.lastErr = err
	s.stage = StageFailed
}
