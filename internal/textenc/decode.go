// Package textenc decodes uploaded statement bytes into text.
//
// Bank and card exports are inconsistently encoded: most card portals serve UTF-8
// while several banks still serve Shift_JIS. Decode never fails; a lossy decode with
// replacement characters is returned rather than blocking an import.
package textenc

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding identifies which decoding tier produced the text
type Encoding string

const (
	UTF8      Encoding = "utf-8"
	ShiftJIS  Encoding = "shift_jis"
	UTF8Lossy Encoding = "utf-8-lossy"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw statement bytes to a string.
// Tiers, in order: strict UTF-8 (BOM stripped), Shift_JIS, lossy UTF-8.
func Decode(b []byte) (string, Encoding) {
	if utf8.Valid(b) {
		return string(bytes.TrimPrefix(b, utf8BOM)), UTF8
	}

	// The Shift_JIS decoder never errors on bad input; it emits U+FFFD instead.
	// Treat any replacement as a failed attempt so that binary garbage falls through.
	if s, err := decodeWith(japanese.ShiftJIS.NewDecoder(), b); err == nil && !strings.ContainsRune(s, utf8.RuneError) {
		return s, ShiftJIS
	}

	// The x/text UTF-8 decoder substitutes U+FFFD for invalid sequences.
	s, err := decodeWith(unicode.UTF8.NewDecoder(), b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, []byte("\uFFFD"))), UTF8Lossy
	}
	return s, UTF8Lossy
}

func decodeWith(t transform.Transformer, b []byte) (string, error) {
	out, _, err := transform.Bytes(t, b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// EncodeShiftJIS is the inverse of the Shift_JIS tier.
func EncodeShiftJIS(s string) ([]byte, error) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(s))
	if err != nil {
		return nil, err
	}
	return out, nil
}
