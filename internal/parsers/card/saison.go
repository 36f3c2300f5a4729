package card

import (
	"fmt"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/csvtext"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
)

// saisonColumns maps the セゾンカード Netアンサー export header:
// ご利用日,ご利用店名,ご利用金額,返金金額,支払区分,今回お支払金額
var saisonColumns = []parser.ColumnRule{
	{Role: parser.RoleDate, Include: []string{dateLabel}},
	{Role: parser.RoleDescription, Include: []string{storeLabel}},
	{Role: parser.RoleAmount, Include: []string{amountLabel}, Exclude: []string{"返金"}},
	{Role: parser.RoleRefund, Include: []string{"返金"}},
	{Role: parser.RolePaymentMethod, Include: []string{"支払区分"}},
}

// rivalBrand tokens identify format A exports
var rivalBrand = []string{"楽天", "e-navi"}

// SaisonParser parses card format B: separate usage and refund columns.
// One row can yield a refund and an expense.
type SaisonParser struct{}

// NewSaisonParser returns a card format B parser
func NewSaisonParser() *SaisonParser {
	return &SaisonParser{}
}

func (p *SaisonParser) Format() parser.CardFormat {
	return parser.CardFormatB
}

func (p *SaisonParser) Name() string {
	return "セゾンカード"
}

// CanParse requires the common card labels, a format B signature column and no
// format A brand token.
func (p *SaisonParser) CanParse(lines []string) bool {
	header, ok := hasCardHeader(lines)
	return ok &&
		!parser.ContainsAny(header, rivalBrand...) &&
		parser.ContainsAny(header, saisonSignature...)
}

// Parse extracts card transactions
func (p *SaisonParser) Parse(content string) *parser.CardResult {
	lines := csvtext.SplitLines(content)
	m, failed := parseHeader(p.Format(), lines, saisonColumns)
	if failed != nil {
		return failed
	}

	return parseRows(p.Format(), lines, func(fields []string) ([]parser.CardTransaction, string) {
		date, msg, ok := rowDate(m, fields)
		if !ok {
			return nil, msg
		}
		return splitRow(m, fields, date)
	})
}

// splitRow produces up to two records: the refund first, then the usage amount.
// A row yielding neither reports an unreadable amount cell when it has one.
func splitRow(m *parser.ColumnMapping, fields []string, date parser.Date) ([]parser.CardTransaction, string) {
	rawAmount := m.Value(fields, parser.RoleAmount)
	rawRefund := m.Value(fields, parser.RoleRefund)
	amount, amountOK := parser.ParseAmountField(rawAmount)
	refund, refundOK := parser.ParseAmountField(rawRefund)

	base := parser.CardTransaction{
		Date:          date,
		Description:   description(m, fields),
		PaymentMethod: m.Value(fields, parser.RolePaymentMethod),
		RawData:       m.RawData(fields),
	}

	out := make([]parser.CardTransaction, 0, 2)
	if refund > 0 {
		txn := base
		txn.Amount, txn.Type = refund, parser.Refund
		out = append(out, txn)
	}
	if amount > 0 {
		txn := base
		txn.Amount, txn.Type = amount, parser.Expense
		out = append(out, txn)
	}
	if len(out) == 0 {
		if !amountOK {
			return nil, fmt.Sprintf(parser.MsgInvalidAmount, rawAmount)
		}
		if !refundOK {
			return nil, fmt.Sprintf(parser.MsgInvalidAmount, rawRefund)
		}
	}
	return out, ""
}
