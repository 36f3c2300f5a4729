package bank

import (
	"strings"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/csvtext"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
)

// rakutenColumns maps the 楽天銀行 export header:
// 取引日,入出金(円),残高(円),入出金先内容
var rakutenColumns = []parser.ColumnRule{
	{Role: parser.RoleDate, Include: []string{"取引日", "日付"}},
	{Role: parser.RoleAmount, Include: []string{"入出金"}, Exclude: []string{"先"}},
	{Role: parser.RoleBalance, Include: []string{"残高"}},
	{Role: parser.RoleDescription, Include: []string{"入出金先", "摘要", "内容"}},
}

// RakutenParser parses bank format A: one signed amount column plus balance.
// Stateless and safe for concurrent use.
type RakutenParser struct{}

// NewRakutenParser returns a bank format A parser
func NewRakutenParser() *RakutenParser {
	return &RakutenParser{}
}

// Format returns BankFormatA
func (p *RakutenParser) Format() parser.BankFormat {
	return parser.BankFormatA
}

// Name returns the institution display name
func (p *RakutenParser) Name() string {
	return "楽天銀行"
}

// CanParse checks the first line for 取引日 and 入出金 plus 残高 or 入出金先
func (p *RakutenParser) CanParse(lines []string) bool {
	if len(lines) == 0 {
		return false
	}
	header := strings.ToLower(lines[0])
	return parser.ContainsAll(header, "取引日", "入出金") &&
		parser.ContainsAny(header, "残高", "入出金先")
}

// Parse extracts transactions. Non-negative amounts are income, negative are expense.
func (p *RakutenParser) Parse(content string) *parser.BankResult {
	lines := csvtext.SplitLines(content)
	if len(lines) == 0 {
		return parser.BankFailure(p.Format(), parser.MsgEmptyFile, "")
	}

	m := headerMapping(lines[0], rakutenColumns)
	if !m.Has(parser.RoleDate) || !m.Has(parser.RoleAmount) {
		return parser.BankFailure(p.Format(), "必須カラム（取引日、入出金）が見つかりません", lines[0])
	}

	return parseRows(p.Format(), lines, 0, func(fields []string) (*parser.Transaction, string) {
		date, msg, ok := rowDate(m, fields)
		if !ok {
			return nil, msg
		}

		raw := m.Value(fields, parser.RoleAmount)
		amount, ok := parser.ParseAmountStrict(raw)
		if !ok {
			return nil, invalidAmount(raw)
		}
		if amount == 0 {
			return nil, ""
		}

		txnType := parser.Income
		if amount < 0 {
			txnType = parser.Expense
		}

		return &parser.Transaction{
			Date:        date,
			Description: description(m, fields),
			Amount:      abs(amount),
			Type:        txnType,
			Balance:     balance(m, fields),
			RawData:     m.RawData(fields),
		}, ""
	})
}
