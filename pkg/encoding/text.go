// Package encoding converts legacy-encoded scene text (OBJ and MTL files
// exported by older tools) to UTF-8.
package encoding

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// UTF8 is the name of the pass-through encoding.
const UTF8 = "utf-8"

var encodings = map[string]encoding.Encoding{
	"utf-8":        unicode.UTF8,
	"utf8":         unicode.UTF8,
	"euc-kr":       korean.EUCKR,
	"euckr":        korean.EUCKR,
	"cp949":        korean.EUCKR,
	"shift-jis":    japanese.ShiftJIS,
	"shift_jis":    japanese.ShiftJIS,
	"sjis":         japanese.ShiftJIS,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
}

// Lookup returns the encoding registered under name. Names are case
// insensitive; an empty name means UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return unicode.UTF8, nil
	}
	enc, ok := encodings[key]
	if !ok {
		return nil, fmt.Errorf("unknown text encoding %q", name)
	}
	return enc, nil
}

// Names returns the canonical names accepted by Lookup.
func Names() []string {
	return []string{"utf-8", "euc-kr", "shift-jis", "windows-1252", "iso-8859-1"}
}

// ToUTF8 converts data from enc to a UTF-8 string.
// Returns the original bytes as a string if conversion fails.
func ToUTF8(enc encoding.Encoding, data []byte) string {
	if enc == nil || enc == unicode.UTF8 {
		return string(data)
	}
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// NewReader wraps r so it yields UTF-8 decoded from enc.
func NewReader(r io.Reader, enc encoding.Encoding) io.Reader {
	if enc == nil || enc == unicode.UTF8 {
		return r
	}
	return transform.NewReader(r, enc.NewDecoder())
}

// NormalizePath converts Windows separators so texture references written
// on other platforms resolve locally.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}
