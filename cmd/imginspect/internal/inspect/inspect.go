// Package inspect drives the imgcodec facade against real files on
// disk, grounded on cmd/radx/internal/dicom/commands/dump.go's
// collect-files/process-each-file/report shape.
package inspect

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/imgcodec-core/imgcodec"
)

// Report summarizes one inspected file.
type Report struct {
	Path   string
	Codec  imgcodec.CodecID
	Width  int
	Height int
	Err    error
}

// Cmd implements the imginspect `inspect` subcommand: decode every
// named file's header (and, if requested, full pixel data) and print
// a summary line per file.
type Cmd struct {
	Paths        []string `arg:"" type:"existingfile" help:"Image files to inspect"`
	DecodePixels bool     `name:"decode-pixels" help:"Fully decode pixel data, not just the header"`
}

// Run executes the inspect command.
func (c *Cmd) Run() error {
	logger := log.Default()
	logger.Info("inspecting files", "count", len(c.Paths))

	reports := make([]Report, 0, len(c.Paths))
	for _, path := range c.Paths {
		logger.Debug("reading file", "path", filepath.Base(path))
		r := inspectOne(path, c.DecodePixels)
		reports = append(reports, r)
		if r.Err != nil {
			logger.Error("inspect failed", "file", r.Path, "error", r.Err)
			continue
		}
		logger.Info("inspected", "file", r.Path, "codec", r.Codec, "width", r.Width, "height", r.Height)
	}

	for _, r := range reports {
		if r.Err != nil {
			fmt.Printf("%s: error: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Printf("%s: %s %dx%d\n", r.Path, r.Codec, r.Width, r.Height)
	}
	return nil
}

func inspectOne(path string, decodePixels bool) Report {
	r := Report{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		r.Err = fmt.Errorf("read file: %w", err)
		return r
	}

	id := imgcodec.SelectCodec(data)
	r.Codec = id
	if id == imgcodec.CodecNull {
		r.Err = fmt.Errorf("unrecognized image format")
		return r
	}

	alloc := imgcodec.HeapAllocator{}
	ec := &imgcodec.LastErrorContext{}
	rb := imgcodec.NewResourceBuffer(data)

	state, err := imgcodec.AcquireDecoderOverBuffer(alloc, ec, rb, id)
	if err != nil {
		r.Err = fmt.Errorf("acquire decoder: %w", err)
		return r
	}
	defer imgcodec.Dispose(state)

	info, err := imgcodec.DecoderGetFrameInfo(ec, state, id)
	if err != nil {
		r.Err = fmt.Errorf("get frame info: %w (callstack %v)", err, ec.Callstack())
		return r
	}
	r.Width, r.Height = info.Width, info.Height

	if !decodePixels {
		return r
	}

	stride := info.Width * info.Format.BytesPerPixel()
	pix, err := alloc.Allocate(stride * info.Height)
	if err != nil {
		r.Err = fmt.Errorf("allocate pixel surface: %w", err)
		return r
	}
	surface := &imgcodec.PixelSurface{
		Width: info.Width, Height: info.Height, Stride: stride,
		Format: info.Format, Pix: pix,
	}
	if err := imgcodec.DecoderReadFrame(ec, state, id, surface); err != nil {
		r.Err = fmt.Errorf("read frame: %w (callstack %v)", err, ec.Callstack())
		return r
	}
	return r
}
