// encoding.go - Character encodings named by the header encoding byte
package format

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// TextEncoding converts stored text to UTF-8.
type TextEncoding struct {
	Code uint8
	Name string
	enc  encoding.Encoding // nil when bytes are already UTF-8 compatible
}

var textEncodings = map[uint8]TextEncoding{
	20: {Code: 20, Name: "UTF-8"},
	28: {Code: 28, Name: "US-ASCII"},
	29: {Code: 29, Name: "ISO-8859-1", enc: charmap.ISO8859_1},
	60: {Code: 60, Name: "WINDOWS-1250", enc: charmap.Windows1250},
	61: {Code: 61, Name: "WINDOWS-1251", enc: charmap.Windows1251},
	62: {Code: 62, Name: "WINDOWS-1252", enc: charmap.Windows1252},
}

// EncodingFor returns the encoding registered for code. Unknown codes,
// including 0, pass bytes through unchanged.
func EncodingFor(code uint8) TextEncoding {
	if e, ok := textEncodings[code]; ok {
		return e
	}
	return TextEncoding{Code: code, Name: "UNSPECIFIED"}
}

// Decode converts b to a string, dropping trailing padding.
func (e TextEncoding) Decode(b []byte) string {
	s := string(b)
	if e.enc != nil {
		if out, err := e.enc.NewDecoder().Bytes(b); err == nil {
			s = string(out)
		}
	}
	return strings.TrimRight(s, " \x00")
}
