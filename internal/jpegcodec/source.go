package jpegcodec

/*
#include <stdint.h>
#include <jpeglib.h>
*/
import "C"

import (
	"runtime/cgo"
	"unsafe"

	"github.com/imgcodec-core/imgcodec/internal/memsrc"
)

// eoiMarker is the one-byte substitute buffer injected when the
// decoder asks for more bytes than remain (spec §4.7): a literal JPEG
// end-of-image marker byte. libjpeg's own fill_input_buffer contract
// prescribes supplying a fake EOI this way rather than erroring, so
// truncated input degrades to a short decode instead of an abort.
var eoiMarker = [1]byte{0xD9}

// boundSource is the Go-side state behind a go_src_mgr (declared in
// decoder.go's preamble, which owns the jpeg_source_mgr vtable and the
// single setjmp-protected begin-read call): a bounded cursor over the
// resource buffer's bytes, registered with a runtime/cgo.Handle so the
// shim functions there can recover it from C.
type boundSource struct {
	cursor    *memsrc.Cursor
	exhausted bool
}

func newBoundSource(data []byte) (*boundSource, cgo.Handle) {
	bs := &boundSource{cursor: memsrc.NewCursor(data)}
	return bs, cgo.NewHandle(bs)
}

//export goSourceFill
func goSourceFill(handle C.uintptr_t, nextInputByte **C.uchar, bytesInBuffer *C.ulong) C.boolean {
	bs := cgo.Handle(handle).Value().(*boundSource)

	// §4.7: fill is only invoked once the decoder has exhausted the
	// buffer we installed; substitute the single-byte EOI marker so
	// the library terminates gracefully instead of looping forever
	// asking for more bytes that will never come.
	bs.exhausted = true
	*nextInputByte = (*C.uchar)(unsafe.Pointer(&eoiMarker[0]))
	*bytesInBuffer = 1
	return C.TRUE
}

//export goSourceSkip
func goSourceSkip(handle C.uintptr_t, numBytes C.long, nextInputByte **C.uchar, bytesInBuffer *C.ulong) {
	bs := cgo.Handle(handle).Value().(*boundSource)

	if numBytes <= 0 {
		return
	}
	n := int(numBytes)
	if !bs.exhausted {
		// libjpeg consumes the installed buffer directly; bring the
		// cursor up to its current read position before skipping.
		bs.cursor.Pos = len(bs.cursor.Data) - int(*bytesInBuffer)
	}
	if !bs.exhausted && n <= bs.cursor.Remaining() {
		bs.cursor.Skip(n)
		rest := bs.cursor.Data[bs.cursor.Pos:]
		if len(rest) > 0 {
			*nextInputByte = (*C.uchar)(unsafe.Pointer(&rest[0]))
		}
		*bytesInBuffer = C.ulong(len(rest))
		return
	}

	// Requested skip exceeds what remains: replace the buffer with
	// the same one-byte end-of-image marker fill uses (§4.7).
	bs.cursor.Skip(bs.cursor.Remaining())
	bs.exhausted = true
	*nextInputByte = (*C.uchar)(unsafe.Pointer(&eoiMarker[0]))
	*bytesInBuffer = 1
}
