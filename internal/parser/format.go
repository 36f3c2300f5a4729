package parser

import (
	"fmt"
	"strings"
)

// BankFormat identifies a supported bank statement layout
type BankFormat int

const (
	BankUnknown BankFormat = iota
	// BankFormatA is a single signed amount column plus balance (楽天銀行)
	BankFormatA
	// BankFormatB has separate withdrawal and deposit columns (みずほ銀行)
	BankFormatB
)

// CardFormat identifies a supported credit card statement layout
type CardFormat int

const (
	CardUnknown CardFormat = iota
	// CardFormatA is a single amount column where negatives are refunds (楽天カード)
	CardFormatA
	// CardFormatB has separate usage and refund columns (セゾンカード)
	CardFormatB
)

var (
	bankTags = map[BankFormat]string{
		BankUnknown: "unknown",
		BankFormatA: "bank-format-a",
		BankFormatB: "bank-format-b",
	}
	cardTags = map[CardFormat]string{
		CardUnknown: "unknown-card",
		CardFormatA: "card-format-a",
		CardFormatB: "card-format-b",
	}

	// Institution names accepted at the boundary for compatibility with older clients.
	bankAliases = map[string]BankFormat{
		"rakuten-bank": BankFormatA,
		"mizuho-bank":  BankFormatB,
	}
	cardAliases = map[string]CardFormat{
		"rakuten-card": CardFormatA,
		"saison-card":  CardFormatB,
	}
)

// String returns the serialization tag
func (f BankFormat) String() string {
	if tag, ok := bankTags[f]; ok {
		return tag
	}
	return fmt.Sprintf("bank-format(%d)", int(f))
}

// MarshalText implements encoding.TextMarshaler
func (f BankFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *BankFormat) UnmarshalText(text []byte) error {
	parsed, ok := ParseBankFormat(string(text))
	if !ok {
		return fmt.Errorf("unknown bank format %q", text)
	}
	*f = parsed
	return nil
}

// ParseBankFormat resolves a tag or institution alias. The unknown sentinel parses
// successfully to BankUnknown.
func ParseBankFormat(tag string) (BankFormat, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for f, t := range bankTags {
		if t == tag {
			return f, true
		}
	}
	if f, ok := bankAliases[tag]; ok {
		return f, true
	}
	return BankUnknown, false
}

// String returns the serialization tag
func (f CardFormat) String() string {
	if tag, ok := cardTags[f]; ok {
		return tag
	}
	return fmt.Sprintf("card-format(%d)", int(f))
}

// MarshalText implements encoding.TextMarshaler
func (f CardFormat) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (f *CardFormat) UnmarshalText(text []byte) error {
	parsed, ok := ParseCardFormat(string(text))
	if !ok {
		return fmt.Errorf("unknown card format %q", text)
	}
	*f = parsed
	return nil
}

// ParseCardFormat resolves a tag or institution alias
func ParseCardFormat(tag string) (CardFormat, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	for f, t := range cardTags {
		if t == tag {
			return f, true
		}
	}
	if f, ok := cardAliases[tag]; ok {
		return f, true
	}
	return CardUnknown, false
}
