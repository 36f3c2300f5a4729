package card

import (
	"fmt"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/csvtext"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
)

// rakutenColumns maps the 楽天カード e-NAVI export header:
// 利用日,利用店名・商品名,利用者,支払方法,利用金額,支払手数料,支払総額
var rakutenColumns = []parser.ColumnRule{
	{Role: parser.RoleDate, Include: []string{dateLabel}},
	{Role: parser.RoleDescription, Include: []string{storeLabel, "商品名"}},
	{Role: parser.RoleUser, Include: []string{"利用者"}},
	{Role: parser.RolePaymentMethod, Include: []string{"支払方法"}},
	{Role: parser.RoleAmount, Include: []string{amountLabel}},
}

// RakutenParser parses card format A: one amount column where negatives are refunds
type RakutenParser struct{}

// NewRakutenParser returns a card format A parser
func NewRakutenParser() *RakutenParser {
	return &RakutenParser{}
}

func (p *RakutenParser) Format() parser.CardFormat {
	return parser.CardFormatA
}

func (p *RakutenParser) Name() string {
	return "楽天カード"
}

// CanParse matches the common card labels, rejecting headers with format B
// signature columns so the two card detectors never both accept a file.
func (p *RakutenParser) CanParse(lines []string) bool {
	header, ok := hasCardHeader(lines)
	return ok && !parser.ContainsAny(header, saisonSignature...)
}

// Parse extracts card transactions. Zero and blank amounts are skipped.
func (p *RakutenParser) Parse(content string) *parser.CardResult {
	lines := csvtext.SplitLines(content)
	m, failed := parseHeader(p.Format(), lines, rakutenColumns)
	if failed != nil {
		return failed
	}

	return parseRows(p.Format(), lines, func(fields []string) ([]parser.CardTransaction, string) {
		date, msg, ok := rowDate(m, fields)
		if !ok {
			return nil, msg
		}

		raw := m.Value(fields, parser.RoleAmount)
		amount, ok := parser.ParseAmountField(raw)
		if !ok {
			return nil, fmt.Sprintf(parser.MsgInvalidAmount, raw)
		}
		if amount == 0 {
			return nil, ""
		}

		txn := parser.CardTransaction{
			Date:          date,
			Description:   description(m, fields),
			Amount:        amount,
			Type:          parser.Expense,
			PaymentMethod: m.Value(fields, parser.RolePaymentMethod),
			RawData:       m.RawData(fields),
		}
		if amount < 0 {
			txn.Amount, txn.Type = -amount, parser.Refund
		}
		return []parser.CardTransaction{txn}, ""
	})
}
