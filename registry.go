package imgcodec

// codecTable is the static, ordered, immutable vtable of spec §3/§9
// ("no mutable global state"): each entry's acquire function builds
// the wrapper codec state (pngDecodeState/pngEncodeState/jpegDecodeState)
// over the internal cgo-backed package that implements it.
var codecTable = []codecDef{
	{id: CodecDecodePNG, name: "decode-png", acquire: acquirePNGDecoder},
	{id: CodecEncodePNG, name: "encode-png", acquire: acquirePNGEncoder},
	{id: CodecDecodeJPEG, name: "decode-jpeg", acquire: acquireJPEGDecoder},
}

// getCodecDefinition looks up a codec's static vtable entry (spec
// §4.9): propagates a missing definition as not-implemented.
func getCodecDefinition(id CodecID) (*codecDef, error) {
	for i := range codecTable {
		if codecTable[i].id == id {
			return &codecTable[i], nil
		}
	}
	return nil, &CodecNotImplementedError{ID: id}
}
