// Package card provides the credit card statement parsers
package card

import (
	"fmt"
	"strings"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/csvtext"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
)

// Card statements share these header labels; "ご利用日" etc. contain them too
const (
	dateLabel   = "利用日"
	storeLabel  = "利用店"
	amountLabel = "利用金額"
)

// saisonSignature tokens only appear in format B headers
var saisonSignature = []string{"支払区分", "今回お支払", "ご請求"}

// hasCardHeader reports whether the lower-cased first line carries the common card labels
func hasCardHeader(lines []string) (string, bool) {
	if len(lines) == 0 {
		return "", false
	}
	header := strings.ToLower(lines[0])
	return header, parser.ContainsAll(header, dateLabel, storeLabel, amountLabel)
}

// parseRows flat-maps convert over every data row and aggregates the result.
// convert may return zero, one or two records for a row.
func parseRows(format parser.CardFormat, lines []string, convert parser.RowFunc[[]parser.CardTransaction]) *parser.CardResult {
	result := parser.NewCardResult(format)

	for _, row := range parser.DataRows(lines, 0) {
		txns, msg := parser.GuardRow(row.Fields, convert)
		if msg != "" {
			result.AddError(row.Number, msg, row.Line)
			continue
		}
		for _, txn := range txns {
			result.Add(txn)
		}
	}

	return result.Finish()
}

// parseHeader splits and maps the first line, failing when date or amount is unresolved
func parseHeader(format parser.CardFormat, lines []string, rules []parser.ColumnRule) (*parser.ColumnMapping, *parser.CardResult) {
	if len(lines) == 0 {
		return nil, parser.CardFailure(format, parser.MsgEmptyFile, "")
	}

	m := parser.BuildMapping(csvtext.SplitFields(lines[0]), rules)
	if !m.Has(parser.RoleDate) || !m.Has(parser.RoleAmount) {
		return nil, parser.CardFailure(format, "必須カラム（利用日、利用金額）が見つかりません", lines[0])
	}
	return m, nil
}

// rowDate parses the date column. A blank date marks a summary row and is skipped
// without an error.
func rowDate(m *parser.ColumnMapping, fields []string) (parser.Date, string, bool) {
	raw := m.Value(fields, parser.RoleDate)
	date, ok := parser.ParseDate(raw)
	if ok {
		return date, "", true
	}
	if parser.IsBlank(raw) {
		return parser.Date{}, "", false
	}
	return parser.Date{}, fmt.Sprintf(parser.MsgInvalidDate, raw), false
}

func description(m *parser.ColumnMapping, fields []string) string {
	if d := m.Value(fields, parser.RoleDescription); d != "" {
		return d
	}
	return parser.NoCardDescription
}
