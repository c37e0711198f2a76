package imgcodec

import "testing"

func TestSelectCodecPNG(t *testing.T) {
	buf := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00}
	if got := SelectCodec(buf); got != CodecDecodePNG {
		t.Fatalf("got %s, want %s", got, CodecDecodePNG)
	}
}

func TestSelectCodecJPEGVariants(t *testing.T) {
	cases := [][]byte{
		{0xFF, 0xD8, 0xFF, 0xDB},
		{0xFF, 0xD8, 0xFF, 0xE0},
		{0xFF, 0xD8, 0xFF, 0xE1},
	}
	for _, buf := range cases {
		if got := SelectCodec(buf); got != CodecDecodeJPEG {
			t.Fatalf("buf=% x: got %s, want %s", buf, got, CodecDecodeJPEG)
		}
	}
}

func TestSelectCodecUnknown(t *testing.T) {
	if got := SelectCodec([]byte("not an image")); got != CodecNull {
		t.Fatalf("got %s, want %s", got, CodecNull)
	}
}

func TestSelectCodecTooShort(t *testing.T) {
	if got := SelectCodec([]byte{0x89, 'P'}); got != CodecNull {
		t.Fatalf("got %s, want %s", got, CodecNull)
	}
}
