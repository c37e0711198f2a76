package inspect

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/imgcodec-core/imgcodec"
)

// ConvertCmd decodes one file through any registered decode codec and
// re-encodes the resulting surface as PNG (spec §4.5/§4.9
// bitmap-write-png), exercising the encode-png vtable entry end to
// end rather than just inspecting headers.
type ConvertCmd struct {
	Input  string `arg:"" type:"existingfile" help:"Source image file"`
	Output string `arg:"" help:"Destination PNG path"`
}

func (c *ConvertCmd) Run() error {
	logger := log.Default()

	data, err := os.ReadFile(c.Input)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	id := imgcodec.SelectCodec(data)
	if id == imgcodec.CodecNull {
		return fmt.Errorf("unrecognized image format: %s", c.Input)
	}

	alloc := imgcodec.HeapAllocator{}
	ec := &imgcodec.LastErrorContext{}
	rb := imgcodec.NewResourceBuffer(data)

	state, err := imgcodec.AcquireDecoderOverBuffer(alloc, ec, rb, id)
	if err != nil {
		return fmt.Errorf("acquire decoder: %w", err)
	}
	defer imgcodec.Dispose(state)

	info, err := imgcodec.DecoderGetFrameInfo(ec, state, id)
	if err != nil {
		return fmt.Errorf("get frame info: %w", err)
	}

	stride := info.Width * info.Format.BytesPerPixel()
	pix, err := alloc.Allocate(stride * info.Height)
	if err != nil {
		return fmt.Errorf("allocate pixel surface: %w", err)
	}
	surface := &imgcodec.PixelSurface{
		Width: info.Width, Height: info.Height, Stride: stride,
		Format: info.Format, Pix: pix,
	}
	if err := imgcodec.DecoderReadFrame(ec, state, id, surface); err != nil {
		return fmt.Errorf("read frame: %w", err)
	}

	outRB := imgcodec.NewResourceBuffer(nil)
	if err := imgcodec.BitmapWritePNG(alloc, ec, outRB, surface); err != nil {
		return fmt.Errorf("write png: %w", err)
	}

	if err := os.WriteFile(c.Output, outRB.Bytes, 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	logger.Info("converted", "input", c.Input, "output", c.Output, "bytes", len(outRB.Bytes))
	return nil
}
