package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// amountPattern accepts an optional sign, digits, and a fractional tail that is dropped
var amountPattern = regexp.MustCompile(`^([+-]?\d+)(?:\.\d*)?$`)

// ParseAmount parses a yen amount such as "¥12,345", "-500", "680円" or "１，２００".
// Empty and unparseable input both return 0; callers that must tell them apart
// use ParseAmountStrict.
func ParseAmount(s string) int64 {
	n, _ := ParseAmountStrict(s)
	return n
}

// ParseAmountStrict is ParseAmount reporting whether s held a number.
//
// Commas, yen signs and whitespace are removed, full-width characters are folded
// to their ASCII forms and a trailing 円 unit is dropped before parsing. A fractional
// part is truncated.
func ParseAmountStrict(s string) (int64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || r == '¥' || r == '￥' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, width.Narrow.String(s))
	cleaned = strings.TrimSuffix(cleaned, "円")

	m := amountPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseAmountField parses an optional monetary cell. A blank cell is zero; ok is false
// only when the cell holds something that is not a number.
func ParseAmountField(s string) (int64, bool) {
	if IsBlank(s) {
		return 0, true
	}
	return ParseAmountStrict(s)
}

// IsBlank reports whether a raw field carries no value at all
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
