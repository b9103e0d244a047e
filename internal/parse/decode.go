package parse

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts data to UTF-8 and names the detected encoding. A BOM selects
// UTF-8 or UTF-16; otherwise invalid UTF-8 is read as Windows-1252, the usual
// encoding of legacy hospital exports.
func Decode(data []byte) ([]byte, string) {
	var (
		dec  *encoding.Decoder
		name string
	)
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		dec, name = unicode.UTF8BOM.NewDecoder(), "utf-8-bom"
	case bytes.HasPrefix(data, bomUTF16LE):
		dec, name = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder(), "utf-16le"
	case bytes.HasPrefix(data, bomUTF16BE):
		dec, name = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder(), "utf-16be"
	case utf8.Valid(data):
		return data, "utf-8"
	default:
		dec, name = charmap.Windows1252.NewDecoder(), "windows-1252"
	}

	out, err := dec.Bytes(data)
	if err != nil {
		// Decoders replace invalid sequences, so this only trips on truncated
		// input; keep the raw bytes rather than lose the file.
		return data, "utf-8"
	}
	return out, name
}
