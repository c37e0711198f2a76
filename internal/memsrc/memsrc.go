// Package memsrc presents a bounded in-memory byte range to a codec
// library whose native interface expects a pull-style read callback
// (spec §4 component 4). It backs both the PNG read callback and, via
// the JPEG-specific wrapping in internal/jpegcodec, the bounded source
// manager of spec §4.7.
package memsrc

// Cursor is a bounded, forward-only view over a byte slice.
type Cursor struct {
	Data []byte
	Pos  int
}

// NewCursor wraps buf starting at offset 0.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{Data: buf}
}

// Remaining returns how many bytes are left to read.
func (c *Cursor) Remaining() int {
	if c.Pos >= len(c.Data) {
		return 0
	}
	return len(c.Data) - c.Pos
}

// Read copies up to len(dst) bytes into dst, advancing the cursor, and
// returns the number of bytes copied. It never blocks and never
// returns an error: running out of input just yields fewer bytes,
// which is how the PNG read callback signals EOF to libpng (a short
// read triggers the library's own error path).
func (c *Cursor) Read(dst []byte) int {
	n := copy(dst, c.Data[c.Pos:])
	c.Pos += n
	return n
}

// Skip advances the cursor by n bytes, clamped to the remaining
// length, and returns how many bytes were actually skipped.
func (c *Cursor) Skip(n int) int {
	if n < 0 {
		n = 0
	}
	if n > c.Remaining() {
		n = c.Remaining()
	}
	c.Pos += n
	return n
}
