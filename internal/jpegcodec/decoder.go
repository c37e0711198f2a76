package jpegcodec

/*
#cgo pkg-config: libjpeg
#include <stdlib.h>
#include <string.h>
#include <setjmp.h>
#include <stdint.h>
#include <jpeglib.h>

// go_error_mgr mirrors dicom/pixel/jpeg_lossless.go's my_error_mgr,
// generalized: a jpeg_error_mgr MUST be the first field so a pointer
// to it coerces to a pointer to this struct (spec §4.4/§9) when
// libjpeg calls our error_exit hook with only cinfo->err in hand.
typedef struct {
	struct jpeg_error_mgr pub;
	jmp_buf setjmp_buffer;
	uintptr_t handle;
	char message[JMSG_LENGTH_MAX];
} go_error_mgr;

// go_src_mgr extends jpeg_source_mgr with a handle to the Go-side
// boundSource (source.go), the same "extra fields after the vtable"
// pattern libjpeg's own jpeg_mem_src uses internally.
typedef struct {
	struct jpeg_source_mgr pub;
	uintptr_t handle;
} go_src_mgr;

extern boolean goSourceFill(uintptr_t handle, unsigned char **next_input_byte, unsigned long *bytes_in_buffer);
extern void goSourceSkip(uintptr_t handle, long num_bytes, unsigned char **next_input_byte, unsigned long *bytes_in_buffer);

static void go_jpeg_error_exit(j_common_ptr cinfo) {
	go_error_mgr *err = (go_error_mgr *)cinfo->err;
	(*cinfo->err->format_message)(cinfo, err->message);
	longjmp(err->setjmp_buffer, 1);
}

static void go_src_init(j_decompress_ptr cinfo) {
	// no-op: initial state already exposes the whole byte range (§4.7).
}

static boolean go_src_fill(j_decompress_ptr cinfo) {
	go_src_mgr *src = (go_src_mgr *)cinfo->src;
	return goSourceFill(src->handle, &src->pub.next_input_byte, &src->pub.bytes_in_buffer);
}

static void go_src_skip(j_decompress_ptr cinfo, long num_bytes) {
	go_src_mgr *src = (go_src_mgr *)cinfo->src;
	goSourceSkip(src->handle, num_bytes, &src->pub.next_input_byte, &src->pub.bytes_in_buffer);
}

static void go_src_term(j_decompress_ptr cinfo) {
	// no-op (§4.7).
}

// go_jpeg_begin_read performs §4.4's begin-read entirely inside one
// setjmp-protected call, the same shape as jpeg_lossless.go's
// decompress_jpeg_lossless: create the decompressor, install the
// bounded source manager, parse the header, request BGRA output
// (libjpeg-turbo's JCS_EXT_BGRA extension — this IS the "set output
// color space to BGRA" step of spec §4.4), and start decompression.
static int go_jpeg_begin_read(
	struct jpeg_decompress_struct *cinfo,
	go_error_mgr *err,
	go_src_mgr *src,
	unsigned char *data,
	unsigned long data_len,
	uintptr_t src_handle,
	int *width, int *height, int *components, int *stride, double *gamma
) {
	if (setjmp(err->setjmp_buffer)) {
		return -1;
	}

	cinfo->err = &err->pub;
	jpeg_create_decompress(cinfo);

	src->pub.init_source = go_src_init;
	src->pub.fill_input_buffer = go_src_fill;
	src->pub.skip_input_data = go_src_skip;
	src->pub.resync_to_restart = jpeg_resync_to_restart;
	src->pub.term_source = go_src_term;
	src->pub.next_input_byte = data;
	src->pub.bytes_in_buffer = (size_t)data_len;
	src->handle = src_handle;
	cinfo->src = &src->pub;

	jpeg_read_header(cinfo, TRUE);
	cinfo->out_color_space = JCS_EXT_BGRA;
	jpeg_start_decompress(cinfo);

	*width = cinfo->output_width;
	*height = cinfo->output_height;
	*components = cinfo->output_components;
	*stride = cinfo->output_width * cinfo->output_components;
	*gamma = cinfo->output_gamma;
	return 0;
}

// go_jpeg_finish_read drives the scanline loop of spec §4.4: loop
// until output_scanline reaches output_height (spec §9, resolved open
// question ii — the library's own cursor, not a fixed `h`-at-a-time
// request), treating a zero-scanline return as failure, then
// finalizes the decompressor.
static int go_jpeg_finish_read(
	struct jpeg_decompress_struct *cinfo,
	go_error_mgr *err,
	unsigned char **rows,
	int height,
	int *scanlines_read
) {
	if (setjmp(err->setjmp_buffer)) {
		return -1;
	}

	*scanlines_read = 0;
	while (cinfo->output_scanline < (unsigned int)height) {
		int before = cinfo->output_scanline;
		int got = jpeg_read_scanlines(cinfo, rows + cinfo->output_scanline, height - cinfo->output_scanline);
		if (got == 0 && cinfo->output_scanline == (unsigned int)before) {
			return -1;
		}
		*scanlines_read += got;
	}

	jpeg_finish_decompress(cinfo);
	return 0;
}

static void go_jpeg_destroy(struct jpeg_decompress_struct *cinfo) {
	jpeg_destroy_decompress(cinfo);
}

static go_error_mgr *go_jpeg_alloc_error_mgr(uintptr_t handle) {
	go_error_mgr *err = (go_error_mgr *)malloc(sizeof(go_error_mgr));
	jpeg_std_error(&err->pub);
	err->pub.error_exit = go_jpeg_error_exit;
	err->handle = handle;
	return err;
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"runtime/cgo"
	"unsafe"

	"github.com/imgcodec-core/imgcodec/internal/rowptr"
)

// releaseLibHandles tears down the malloc'd cinfo/error-manager and
// releases the source cgo.Handle, exactly once per begin-read, no
// matter whether the call is from an explicit reset or from the
// error-exit path (spec invariant I4: "every owned underlying handle
// and allocation is released exactly once").
func (s *State) releaseLibHandles() {
	if s.cCinfo != nil {
		C.go_jpeg_destroy((*C.struct_jpeg_decompress_struct)(s.cCinfo))
		C.free(s.cCinfo)
		s.cCinfo = nil
	}
	if s.cErrMgr != nil {
		C.free(s.cErrMgr)
		s.cErrMgr = nil
	}
	if s.cSrcMgr != nil {
		C.free(s.cSrcMgr)
		s.cSrcMgr = nil
	}
	if s.hasSrc {
		s.srcHandle.Delete()
		s.hasSrc = false
	}
}

// GetFrameInfo drives begin-read on first call (spec §4.4, invariant
// I2): subsequent calls return the cached geometry.
func (s *State) GetFrameInfo() (width, height int, gamma float64, err error) {
	switch s.stage {
	case StageFailed:
		return 0, 0, 0, fmt.Errorf("jpegcodec: get-frame-info on failed state: %w", ErrStageViolation)
	case StageBeginRead, StageFinishRead:
		return s.width, s.height, s.gamma, nil
	}

	s.reset(s.input)

	_, srcHandle := newBoundSource(s.input)

	cinfo := C.malloc(C.size_t(unsafe.Sizeof(C.struct_jpeg_decompress_struct{})))
	errMgr := unsafe.Pointer(C.go_jpeg_alloc_error_mgr(C.uintptr_t(0)))
	srcMgr := C.malloc(C.size_t(unsafe.Sizeof(C.go_src_mgr{})))

	// The error manager's handle field carries the boundSource handle;
	// nothing reads it. The Go wrappers below take the formatted
	// message from the error manager after the C call returns, per the
	// teacher's "error manager carries context" shape
	// (my_error_mgr.message).
	(*C.go_error_mgr)(errMgr).handle = C.uintptr_t(srcHandle)

	cinfoTyped := (*C.struct_jpeg_decompress_struct)(cinfo)
	var cW, cH, cComponents, cStride C.int
	var cGamma C.double

	var dataPtr *C.uchar
	if len(s.input) > 0 {
		dataPtr = (*C.uchar)(unsafe.Pointer(&s.input[0]))
	}

	rc := C.go_jpeg_begin_read(
		cinfoTyped,
		(*C.go_error_mgr)(errMgr),
		(*C.go_src_mgr)(srcMgr),
		dataPtr,
		C.ulong(len(s.input)),
		C.uintptr_t(srcHandle),
		&cW, &cH, &cComponents, &cStride, &cGamma,
	)

	// From here on, ownership of cinfo/errMgr/srcMgr/srcHandle is
	// tracked on s so releaseLibHandles/failAndRelease can retire them
	// uniformly whether begin-read succeeded, failed, or produced an
	// unexpected color space.
	s.cCinfo = cinfo
	s.cErrMgr = errMgr
	s.cSrcMgr = unsafe.Pointer(srcMgr)
	s.srcHandle = srcHandle
	s.hasSrc = true

	if rc != 0 {
		msg := C.GoString((*C.char)(unsafe.Pointer(&(*C.go_error_mgr)(errMgr).message[0])))
		e := fmt.Errorf("jpegcodec: %s", msg)
		s.failAndRelease(e)
		return 0, 0, 0, e
	}

	if int(cComponents) != 4 {
		e := fmt.Errorf("jpegcodec: unexpected component count %d, want 4 (BGRA): %w", cComponents, ErrUnexpectedFormat)
		s.failAndRelease(e)
		return 0, 0, 0, e
	}

	s.width = int(cW)
	s.height = int(cH)
	s.components = int(cComponents)
	s.stride = int(cStride)
	s.gamma = float64(cGamma)
	if s.gamma == 0 {
		s.gamma = 1.0
	}
	s.pixelSize = s.stride * s.height
	s.stage = StageBeginRead
	return s.width, s.height, s.gamma, nil
}

// ReadFrame drives finish-read (spec §4.4, invariant I3): builds row
// pointers over the caller's buffer, reads scanlines until the
// library's cursor reaches the image height, finalizes and destroys
// the decompressor.
func (s *State) ReadFrame(pixels []byte, stride int) error {
	if s.stage != StageBeginRead {
		return fmt.Errorf("jpegcodec: read-frame requires stage begin-read, have %v: %w", s.stage, ErrStageViolation)
	}
	if pixels == nil {
		return fmt.Errorf("jpegcodec: read-frame: caller pixel surface not installed")
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

	var scanlinesRead C.int
	rc := C.go_jpeg_finish_read(
		(*C.struct_jpeg_decompress_struct)(s.cCinfo),
		(*C.go_error_mgr)(s.cErrMgr),
		(**C.uchar)(unsafe.Pointer(&cRows[0])),
		C.int(s.height),
		&scanlinesRead,
	)

	if rc != 0 {
		msg := C.GoString((*C.char)(unsafe.Pointer(&(*C.go_error_mgr)(s.cErrMgr).message[0])))
		e := fmt.Errorf("jpegcodec: %s", msg)
		s.failAndRelease(e)
		return e
	}
	if int(scanlinesRead) == 0 {
		e := fmt.Errorf("jpegcodec: zero scanlines read")
		s.failAndRelease(e)
		return e
	}

	s.releaseLibHandles()
	s.stage = StageFinishRead
	return nil
}

func (s *State) failAndRelease(err error) {
	s.reset(s.input)
	s.lastErr = err
	s.stage = StageFailed
}
