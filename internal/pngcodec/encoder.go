package pngcodec

/*
#cgo pkg-config: libpng
#include <stdlib.h>
#include <string.h>
#include <setjmp.h>
#include <png.h>

typedef struct {
	jmp_buf setjmp_buffer;
	char message[256];
} go_png_write_error_mgr;

// go_png_write_buf is a growable buffer the write callback appends
// each emitted chunk to, per spec §4.5 "a write callback that appends
// each chunk to a growing buffer (allocate-or-reallocate-then-append;
// reallocation failure triggers the error-exit hook)".
typedef struct {
	unsigned char *data;
	size_t len;
	size_t cap;
	go_png_write_error_mgr *err;
} go_png_write_buf;

static void go_png_write_error_fn(png_structp png_ptr, png_const_charp msg) {
	go_png_write_error_mgr *err = (go_png_write_error_mgr *)png_get_error_ptr(png_ptr);
	strncpy(err->message, msg, sizeof(err->message) - 1);
	err->message[sizeof(err->message) - 1] = '\0';
	longjmp(err->setjmp_buffer, 1);
}

static void go_png_write_warning_fn(png_structp png_ptr, png_const_charp msg) {}

static void go_png_write_fn(png_structp png_ptr, png_bytep data, png_size_t length) {
	go_png_write_buf *buf = (go_png_write_buf *)png_get_io_ptr(png_ptr);
	if (buf->len + length > buf->cap) {
		size_t newcap = buf->cap ? buf->cap * 2 : 4096;
		while (newcap < buf->len + length) {
			newcap *= 2;
		}
		unsigned char *grown = (unsigned char *)realloc(buf->data, newcap);
		if (!grown) {
			longjmp(buf->err->setjmp_buffer, 1);
		}
		buf->data = grown;
		buf->cap = newcap;
	}
	memcpy(buf->data + buf->len, data, length);
	buf->len += length;
}

static void go_png_flush_fn(png_structp png_ptr) {}

// go_png_write_frame performs spec §4.5's write-frame entirely inside
// one setjmp-protected call: create the writer, install the growing
// write buffer, configure fast pixel compression and default text
// compression, set the header (width, height, 8bpc RGBA, no
// interlace), tag sRGB perceptual intent, and write the image with a
// single pass that swaps BGR to RGB order at emit time.
static int go_png_write_frame(
	go_png_write_buf *buf,
	unsigned char **rows, int width, int height
) {
	png_structp png_ptr = png_create_write_struct(PNG_LIBPNG_VER_STRING, buf->err, go_png_write_error_fn, go_png_write_warning_fn);
	if (!png_ptr) {
		return -1;
	}
	png_infop info_ptr = png_create_info_struct(png_ptr);
	if (!info_ptr) {
		png_destroy_write_struct(&png_ptr, NULL);
		return -1;
	}

	if (setjmp(buf->err->setjmp_buffer)) {
		png_destroy_write_struct(&png_ptr, &info_ptr);
		return -1;
	}

	png_set_write_fn(png_ptr, buf, go_png_write_fn, go_png_flush_fn);
	png_set_compression_level(png_ptr, 1);
	png_set_text_compression_level(png_ptr, Z_DEFAULT_COMPRESSION);

	png_set_IHDR(
		png_ptr, info_ptr, width, height, 8,
		PNG_COLOR_TYPE_RGB_ALPHA, PNG_INTERLACE_NONE,
		PNG_COMPRESSION_TYPE_DEFAULT, PNG_FILTER_TYPE_DEFAULT
	);
	png_set_sRGB(png_ptr, info_ptr, PNG_sRGB_INTENT_PERCEPTUAL);
	png_set_bgr(png_ptr);

	png_write_info(png_ptr, info_ptr);
	png_write_image(png_ptr, rows);
	png_write_end(png_ptr, info_ptr);

	png_destroy_write_struct(&png_ptr, &info_ptr);
	return 0;
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/imgcodec-core/imgcodec/internal/rowptr"
)

// WriteFrame implements spec §4.5's PNG encoder: reset the output
// buffer, drive a single-pass write of surface's BGRA pixels to a
// growable in-memory buffer, and return the resulting PNG bytes.
func WriteFrame(surface []byte, width, height, stride int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("pngcodec: write-frame: invalid dimensions %dx%d", width, height)
	}

	rows, err := rowptr.Build(surface, stride, height)
	if err != nil {
		return nil, err
	}
	var pinner runtime.Pinner
	pinner.Pin(&surface[0])
	defer pinner.Unpin()
	cRows := make([]*C.uchar, len(rows))
	for i, p := range rows {
		cRows[i] = (*C.uchar)(p)
	}

	errMgr := (*C.go_png_write_error_mgr)(C.malloc(C.size_t(unsafe.Sizeof(C.go_png_write_error_mgr{}))))
	defer C.free(unsafe.Pointer(errMgr))

	buf := (*C.go_png_write_buf)(C.malloc(C.size_t(unsafe.Sizeof(C.go_png_write_buf{}))))
	buf.data = nil
	buf.len = 0
	buf.cap = 0
	buf.err = errMgr
	defer C.free(unsafe.Pointer(buf))

	rc := C.go_png_write_frame(buf, (**C.uchar)(unsafe.Pointer(&cRows[0])), C.int(width), C.int(height))
	if rc != 0 {
		msg := C.GoString((*C.char)(unsafe.Pointer(&errMgr.message[0])))
		if buf.data != nil {
			C.free(unsafe.Pointer(buf.data))
		}
		return nil, fmt.Errorf("pngcodec: %s", msg)
	}

	out := C.GoBytes(unsafe.Pointer(buf.data), C.int(buf.len))
	if buf.data != nil {
		C.free(unsafe.Pointer(buf.data))
	}
	return out, nil
}
