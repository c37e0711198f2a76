package imgcodec

import "testing"

func TestAcquireDecoderOverBufferIsIdempotent(t *testing.T) {
	rb := NewResourceBuffer([]byte{0xFF, 0xD8, 0xFF, 0xDB})
	ec := &LastErrorContext{}
	alloc := HeapAllocator{}

	st1, err := AcquireDecoderOverBuffer(alloc, ec, rb, CodecDecodeJPEG)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st2, err := AcquireDecoderOverBuffer(alloc, ec, rb, CodecDecodeJPEG)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st1 != st2 {
		t.Fatal("expected acquire-on-buffer to return the same state on repeated calls")
	}
}

func TestAcquireDecoderOverBufferUnknownCodec(t *testing.T) {
	rb := NewResourceBuffer([]byte{0x00})
	ec := &LastErrorContext{}
	alloc := HeapAllocator{}

	_, err := AcquireDecoderOverBuffer(alloc, ec, rb, CodecNull)
	if err == nil {
		t.Fatal("expected error acquiring over an unregistered identifier")
	}
	if ec.LastError() != ErrNotImplemented {
		t.Fatalf("got error kind %s, want %s", ec.LastError(), ErrNotImplemented)
	}
}

func TestDecoderReadFrameWrongType(t *testing.T) {
	ec := &LastErrorContext{}
	err := DecoderReadFrame(ec, "not a decoder", CodecDecodePNG, nil)
	if err == nil {
		t.Fatal("expected error for non-Decoder state")
	}
}
