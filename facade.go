package imgcodec

import (
	"errors"

	"github.com/imgcodec-core/imgcodec/internal/colorprofile"
	"github.com/imgcodec-core/imgcodec/internal/jpegcodec"
	"github.com/imgcodec-core/imgcodec/internal/pngcodec"
	"github.com/imgcodec-core/imgcodec/internal/rowptr"
)

// mapPNGStage/mapJPEGStage translate the internal packages' own Stage
// enums (kept import-cycle-free from the root package) to the root
// Stage spec §7's ErrorContext reporting is phrased in terms of.
func mapPNGStage(s pngcodec.Stage) Stage {
	switch s {
	case pngcodec.StageNotStarted:
		return StageNotStarted
	case pngcodec.StageBeginRead:
		return StageBeginRead
	case pngcodec.StageFinishRead:
		return StageFinishRead
	case pngcodec.StageFailed:
		return StageFailed
	default:
		return StageNull
	}
}

func mapJPEGStage(s jpegcodec.Stage) Stage {
	switch s {
	case jpegcodec.StageNotStarted:
		return StageNotStarted
	case jpegcodec.StageBeginRead:
		return StageBeginRead
	case jpegcodec.StageFinishRead:
		return StageFinishRead
	case jpegcodec.StageFailed:
		return StageFailed
	default:
		return StageNull
	}
}

// classifyDecodeErr maps an internal decoder error to the ErrorContext
// kind spec §7 assigns it: stage-order violations and undersized pixel
// buffers are invalid-internal-state, never the blanket codec-failure
// kind that only a genuine library decoding error should carry.
// surface may be nil when no pixel buffer is involved (get-frame-info).
func classifyDecodeErr(ec ErrorContext, op string, id CodecID, defaultKind ErrorKind, err error, stageViolation error, have, required Stage, surface *PixelSurface) error {
	// Deferred so the frame lands after SetLastError, which starts a
	// fresh callstack.
	defer ec.AppendCallstackFrame(op)
	switch {
	case errors.Is(err, stageViolation):
		ec.SetLastError(ErrInvalidInternalState)
		return &StageError{Op: op, Have: have, Required: required}
	case surface != nil && errors.Is(err, rowptr.ErrInvalidBuffer):
		ec.SetLastError(ErrInvalidInternalState)
		return &RowBufferError{BufferSize: len(surface.Pix), Stride: surface.Stride, Height: surface.Height}
	case errors.Is(err, pngcodec.ErrUnexpectedFormat), errors.Is(err, jpegcodec.ErrUnexpectedFormat):
		ec.SetLastError(ErrInvalidInternalState)
		return &DecodeError{ID: id, Cause: err}
	default:
		ec.SetLastError(defaultKind)
		return &DecodeError{ID: id, Cause: err}
	}
}

// pngDecodeState adapts internal/pngcodec.State to the Decoder
// interface, translating its plain Go errors into ErrorContext calls
// (spec §4.9: "appends a callstack frame on failure").
type pngDecodeState struct {
	inner *pngcodec.State
}

func acquirePNGDecoder(alloc Allocator, ec ErrorContext, rb *ResourceBuffer) (interface{}, error) {
	return &pngDecodeState{inner: pngcodec.NewState(rb.Bytes)}, nil
}

func (p *pngDecodeState) GetFrameInfo(ec ErrorContext) (FrameInfo, error) {
	w, h, err := p.inner.GetFrameInfo()
	if err != nil {
		const op = "decoder-get-frame-info"
		return FrameInfo{}, classifyDecodeErr(ec, op, CodecDecodePNG, ErrPNGDecodingFailed, err,
			pngcodec.ErrStageViolation, mapPNGStage(p.inner.Stage()), StageNotStarted, nil)
	}
	return FrameInfo{Width: w, Height: h, Format: FormatBGRA32}, nil
}

func (p *pngDecodeState) ReadFrame(ec ErrorContext, surface *PixelSurface) error {
	if surface == nil || surface.Pix == nil {
		ec.SetLastError(ErrInvalidInternalState)
		ec.AppendCallstackFrame("decoder-read-frame")
		return ErrMissingSurface
	}
	if err := p.inner.ReadFrame(surface.Pix, surface.Stride); err != nil {
		const op = "decoder-read-frame"
		return classifyDecodeErr(ec, op, CodecDecodePNG, ErrPNGDecodingFailed, err,
			pngcodec.ErrStageViolation, mapPNGStage(p.inner.Stage()), StageBeginRead, surface)
	}

	if prof := p.inner.Profile(); prof != nil {
		if err := prof.TransformToSRGB(surface.Pix, colorprofile.FormatBGRA32, surface.Width, surface.Height, surface.Stride); err != nil {
			ec.SetLastError(ErrOutOfMemory)
			ec.AppendCallstackFrame("transform-to-srgb")
			return &DecodeError{ID: CodecDecodePNG, Cause: err}
		}
	}
	return nil
}

func (p *pngDecodeState) Dispose() { p.inner.Dispose() }

// pngEncodeState adapts internal/pngcodec's stateless WriteFrame to
// the Encoder interface, holding the resource buffer it writes its
// result back into (spec §4.5: "copy the resulting buffer and size to
// the attached output resource").
type pngEncodeState struct {
	rb *ResourceBuffer
}

func acquirePNGEncoder(alloc Allocator, ec ErrorContext, rb *ResourceBuffer) (interface{}, error) {
	return &pngEncodeState{rb: rb}, nil
}

func (p *pngEncodeState) WriteFrame(ec ErrorContext, surface *PixelSurface) error {
	if surface == nil || surface.Pix == nil {
		ec.SetLastError(ErrInvalidInternalState)
		ec.AppendCallstackFrame("encoder-write-frame")
		return ErrMissingSurface
	}
	out, err := pngcodec.WriteFrame(surface.Pix, surface.Width, surface.Height, surface.Stride)
	if err != nil {
		ec.SetLastError(ErrPNGEncodingFailed)
		ec.AppendCallstackFrame("encoder-write-frame")
		return &EncodeError{ID: CodecEncodePNG, Cause: err}
	}
	p.rb.Bytes = out
	return nil
}

func (p *pngEncodeState) Dispose() {}

// jpegDecodeState adapts internal/jpegcodec.State to the Decoder
// interface.
type jpegDecodeState struct {
	inner *jpegcodec.State
}

func acquireJPEGDecoder(alloc Allocator, ec ErrorContext, rb *ResourceBuffer) (interface{}, error) {
	return &jpegDecodeState{inner: jpegcodec.NewState(rb.Bytes)}, nil
}

func (j *jpegDecodeState) GetFrameInfo(ec ErrorContext) (FrameInfo, error) {
	w, h, _, err := j.inner.GetFrameInfo()
	if err != nil {
		const op = "decoder-get-frame-info"
		return FrameInfo{}, classifyDecodeErr(ec, op, CodecDecodeJPEG, ErrJPEGDecodingFailed, err,
			jpegcodec.ErrStageViolation, mapJPEGStage(j.inner.Stage()), StageNotStarted, nil)
	}
	return FrameInfo{Width: w, Height: h, Format: FormatBGRA32}, nil
}

func (j *jpegDecodeState) ReadFrame(ec ErrorContext, surface *PixelSurface) error {
	if surface == nil || surface.Pix == nil {
		ec.SetLastError(ErrInvalidInternalState)
		ec.AppendCallstackFrame("decoder-read-frame")
		return ErrMissingSurface
	}
	if err := j.inner.ReadFrame(surface.Pix, surface.Stride); err != nil {
		const op = "decoder-read-frame"
		return classifyDecodeErr(ec, op, CodecDecodeJPEG, ErrJPEGDecodingFailed, err,
			jpegcodec.ErrStageViolation, mapJPEGStage(j.inner.Stage()), StageBeginRead, surface)
	}
	return nil
}

func (j *jpegDecodeState) Dispose() { j.inner.Dispose() }

// AcquireDecoderOverBuffer implements spec §4.9's
// acquire-decoder-over-buffer: returns the resource buffer's attached
// codec state, creating it via the identifier's vtable entry if none
// is attached yet (spec §4.2, idempotent).
func AcquireDecoderOverBuffer(alloc Allocator, ec ErrorContext, rb *ResourceBuffer, id CodecID) (interface{}, error) {
	def, err := getCodecDefinition(id)
	if err != nil {
		ec.SetLastError(ErrNotImplemented)
		ec.AppendCallstackFrame("acquire-decoder-over-buffer")
		return nil, err
	}
	st, err := rb.setStateIfAbsent(func() (interface{}, error) {
		return def.acquire(alloc, ec, rb)
	})
	if err != nil {
		ec.SetLastError(ErrOutOfMemory)
		ec.AppendCallstackFrame("acquire-decoder-over-buffer")
		return nil, err
	}
	return st, nil
}

// DecoderGetFrameInfo implements spec §4.9's decoder-get-frame-info.
func DecoderGetFrameInfo(ec ErrorContext, state interface{}, id CodecID) (FrameInfo, error) {
	dec, ok := state.(Decoder)
	if !ok {
		ec.SetLastError(ErrNotImplemented)
		ec.AppendCallstackFrame("decoder-get-frame-info")
		return FrameInfo{}, &CodecNotImplementedError{ID: id}
	}
	return dec.GetFrameInfo(ec)
}

// DecoderReadFrame implements spec §4.9's decoder-read-frame.
func DecoderReadFrame(ec ErrorContext, state interface{}, id CodecID, surface *PixelSurface) error {
	dec, ok := state.(Decoder)
	if !ok {
		ec.SetLastError(ErrNotImplemented)
		ec.AppendCallstackFrame("decoder-read-frame")
		return &CodecNotImplementedError{ID: id}
	}
	return dec.ReadFrame(ec, surface)
}

// BitmapWritePNG implements spec §4.9's bitmap-write-png: acquires the
// PNG encoder state over rb (creating it if absent) and writes surface
// through it.
func BitmapWritePNG(alloc Allocator, ec ErrorContext, rb *ResourceBuffer, surface *PixelSurface) error {
	state, err := AcquireDecoderOverBuffer(alloc, ec, rb, CodecEncodePNG)
	if err != nil {
		return err
	}
	enc, ok := state.(Encoder)
	if !ok {
		ec.SetLastError(ErrNotImplemented)
		ec.AppendCallstackFrame("bitmap-write-png")
		return &CodecNotImplementedError{ID: CodecEncodePNG}
	}
	return enc.WriteFrame(ec, surface)
}

// Dispose releases a codec state's owned resources, if it implements
// Disposer (spec §9, resolved open question i: always wired).
func Dispose(state interface{}) {
	if d, ok := state.(Disposer); ok {
		d.Dispose()
	}
}
