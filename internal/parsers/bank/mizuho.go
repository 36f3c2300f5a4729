package bank

import (
	"strings"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/csvtext"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
)

// headerScanLimit bounds the search for the header past the account preamble
const headerScanLimit = 20

// mizuhoColumns maps the みずほ銀行 export header:
// 日付,摘要,お支払金額,お預り金額,残高
var mizuhoColumns = []parser.ColumnRule{
	{Role: parser.RoleDate, Include: []string{"日付", "取引日"}},
	{Role: parser.RoleDescription, Include: []string{"摘要", "お取引内容", "内容"}},
	{Role: parser.RoleWithdrawal, Include: []string{"お支払", "出金", "支払"}},
	{Role: parser.RoleDeposit, Include: []string{"お預り", "入金", "預入"}},
	{Role: parser.RoleBalance, Include: []string{"残高"}},
}

// MizuhoParser parses bank format B: separate withdrawal and deposit columns,
// with the header possibly preceded by account metadata rows.
type MizuhoParser struct{}

// NewMizuhoParser returns a bank format B parser
func NewMizuhoParser() *MizuhoParser {
	return &MizuhoParser{}
}

// Format returns BankFormatB
func (p *MizuhoParser) Format() parser.BankFormat {
	return parser.BankFormatB
}

// Name returns the institution display name
func (p *MizuhoParser) Name() string {
	return "みずほ銀行"
}

// CanParse reports whether a header line appears within the first lines
func (p *MizuhoParser) CanParse(lines []string) bool {
	return findMizuhoHeader(lines) >= 0
}

// findMizuhoHeader returns the index of the first line carrying a date label,
// a description label and a money-direction label, or -1
func findMizuhoHeader(lines []string) int {
	for i, line := range lines {
		if i >= headerScanLimit {
			break
		}
		l := strings.ToLower(line)
		if parser.ContainsAny(l, "日付", "取引日") &&
			parser.ContainsAny(l, "摘要", "お取引内容") &&
			parser.ContainsAny(l, "お支払", "お預り", "出金", "入金") {
			return i
		}
	}
	return -1
}

// locateMizuhoHeader prefers a fully qualifying header and otherwise accepts the first
// line carrying any known column label, so that a partial header is reported by the
// missing column it lacks
func locateMizuhoHeader(lines []string) int {
	if i := findMizuhoHeader(lines); i >= 0 {
		return i
	}
	for i, line := range lines {
		if i >= headerScanLimit {
			break
		}
		if parser.ContainsAny(line, "日付", "取引日", "摘要", "お取引内容") {
			return i
		}
	}
	return -1
}

// Parse extracts transactions. A deposit is income, otherwise a withdrawal is expense;
// rows with neither are skipped unless an amount cell held something unreadable.
func (p *MizuhoParser) Parse(content string) *parser.BankResult {
	lines := csvtext.SplitLines(content)
	if len(lines) == 0 {
		return parser.BankFailure(p.Format(), parser.MsgEmptyFile, "")
	}

	headerIndex := locateMizuhoHeader(lines)
	if headerIndex < 0 {
		return parser.BankFailure(p.Format(), parser.MsgHeaderNotFound, lines[0])
	}
	headerLine := lines[headerIndex]

	m := headerMapping(headerLine, mizuhoColumns)
	if !m.Has(parser.RoleDate) {
		return parser.BankFailure(p.Format(), "必須カラム（日付）が見つかりません", headerLine)
	}
	if !m.Has(parser.RoleWithdrawal) && !m.Has(parser.RoleDeposit) {
		return parser.BankFailure(p.Format(), "入金・出金カラムが見つかりません", headerLine)
	}

	return parseRows(p.Format(), lines, headerIndex, func(fields []string) (*parser.Transaction, string) {
		date, msg, ok := rowDate(m, fields)
		if !ok {
			return nil, msg
		}

		rawWithdrawal := m.Value(fields, parser.RoleWithdrawal)
		rawDeposit := m.Value(fields, parser.RoleDeposit)
		withdrawal, withdrawalOK := parser.ParseAmountField(rawWithdrawal)
		deposit, depositOK := parser.ParseAmountField(rawDeposit)
		withdrawal, deposit = abs(withdrawal), abs(deposit)

		txn := &parser.Transaction{
			Date:        date,
			Description: description(m, fields),
			Balance:     balance(m, fields),
			RawData:     m.RawData(fields),
		}
		switch {
		case deposit > 0:
			txn.Amount, txn.Type = deposit, parser.Income
		case withdrawal > 0:
			txn.Amount, txn.Type = withdrawal, parser.Expense
		case !depositOK:
			return nil, invalidAmount(rawDeposit)
		case !withdrawalOK:
			return nil, invalidAmount(rawWithdrawal)
		default:
			return nil, ""
		}
		return txn, ""
	})
}
