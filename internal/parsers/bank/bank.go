// Package bank provides the bank statement parsers
package bank

import (
	"fmt"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/csvtext"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
)

// parseRows runs convert over every data row after headerIndex and aggregates the result
func parseRows(format parser.BankFormat, lines []string, headerIndex int, convert parser.RowFunc[*parser.Transaction]) *parser.BankResult {
	result := parser.NewBankResult(format)

	for _, row := range parser.DataRows(lines, headerIndex) {
		txn, msg := parser.GuardRow(row.Fields, convert)
		if msg != "" {
			result.AddError(row.Number, msg, row.Line)
			continue
		}
		if txn != nil {
			result.Add(*txn)
		}
	}

	return result.Finish()
}

// headerMapping splits the header line and maps it
func headerMapping(line string, rules []parser.ColumnRule) *parser.ColumnMapping {
	return parser.BuildMapping(csvtext.SplitFields(line), rules)
}

// rowDate parses the date column. ok is false with an empty message when the
// date is blank and the row should be skipped.
func rowDate(m *parser.ColumnMapping, fields []string) (parser.Date, string, bool) {
	raw := m.Value(fields, parser.RoleDate)
	date, ok := parser.ParseDate(raw)
	if ok {
		return date, "", true
	}
	if parser.IsBlank(raw) {
		return parser.Date{}, "", false
	}
	return parser.Date{}, invalidDate(raw), false
}

func invalidDate(raw string) string {
	return fmt.Sprintf(parser.MsgInvalidDate, raw)
}

func invalidAmount(raw string) string {
	return fmt.Sprintf(parser.MsgInvalidAmount, raw)
}

func description(m *parser.ColumnMapping, fields []string) string {
	if d := m.Value(fields, parser.RoleDescription); d != "" {
		return d
	}
	return parser.NoBankDescription
}

// balance returns the parsed balance, or nil when the column is absent or blank
func balance(m *parser.ColumnMapping, fields []string) *int64 {
	raw := m.Value(fields, parser.RoleBalance)
	if parser.IsBlank(raw) {
		return nil
	}
	b := parser.ParseAmount(raw)
	return &b
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
