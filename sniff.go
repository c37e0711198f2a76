package imgcodec

// magicTable is the process-wide, immutable content-sniffing table
// (spec §4.1). Rules are tried in declaration order; first match
// wins. This stays a plain ordered slice rather than the
// registry-map-with-RWMutex pattern dicom/pixel/decoder.go uses for
// its (unordered, mutable) transfer-syntax registry: spec §4.1 and
// property P1 require table order and no mutable global state (§9).
var magicTable = []magicRule{
	{id: CodecDecodePNG, prefix: []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A}},
	{id: CodecDecodeJPEG, prefix: []byte{0xFF, 0xD8, 0xFF, 0xDB}},
	{id: CodecDecodeJPEG, prefix: []byte{0xFF, 0xD8, 0xFF, 0xE0}},
	{id: CodecDecodeJPEG, prefix: []byte{0xFF, 0xD8, 0xFF, 0xE1}},
}

// SelectCodec scans the magic-byte rule table in declaration order
// and returns the first matching codec identifier, or CodecNull if no
// rule matches or the input is shorter than every rule's prefix
// (spec §4.1, property P1). Pure function; never fails.
func SelectCodec(buf []byte) CodecID {
	for _, rule := range magicTable {
		if len(buf) < len(rule.prefix) {
			continue
		}
		if hasPrefix(buf, rule.prefix) {
			return rule.id
		}
	}
	return CodecNull
}

func hasPrefix(buf, prefix []byte) bool {
	for i, b := range prefix {
		if buf[i] != b {
			return false
		}
	}
	return true
}
