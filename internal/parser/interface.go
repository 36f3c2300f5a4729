// Package parser defines the statement parser contracts and the shared building blocks
// (dates, amounts, column mapping, results) used by every institution format.
package parser

// BankParser is the strategy interface for bank statement formats
type BankParser interface {
	// Format returns the format identity (e.g. BankFormatA)
	Format() BankFormat

	// Name returns the institution display name
	Name() string

	// CanParse reports whether the logical lines were produced by this institution.
	// Must be conservative: a false positive causes a mis-parse on auto-detect.
	CanParse(lines []string) bool

	// Parse extracts transactions. Malformed input is reported in the result, never
	// as a panic or error.
	Parse(content string) *BankResult
}

// CardParser is the strategy interface for credit card statement formats
type CardParser interface {
	Format() CardFormat
	Name() string
	CanParse(lines []string) bool
	Parse(content string) *CardResult
}
