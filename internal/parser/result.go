package parser

import "fmt"

// TransactionType is the direction of a monetary flow
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
	Refund  TransactionType = "refund"
)

// Transaction is one bank statement record. Amount is always non-negative;
// direction is carried by Type.
type Transaction struct {
	Date        Date              `json:"date"`
	Description string            `json:"description"`
	Amount      int64             `json:"amount"`
	Type        TransactionType   `json:"type"`
	Balance     *int64            `json:"balance,omitempty"`
	RawData     map[string]string `json:"rawData"`
}

// CardTransaction is one credit card statement record
type CardTransaction struct {
	Date          Date              `json:"date"`
	Description   string            `json:"description"`
	Amount        int64             `json:"amount"`
	Type          TransactionType   `json:"type"`
	PaymentMethod string            `json:"paymentMethod,omitempty"`
	RawData       map[string]string `json:"rawData"`
}

// ParseError is a diagnostic tied to a 1-based row among the non-blank lines of the
// input, or to row 0 when it concerns the file as a whole.
type ParseError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
	RawLine string `json:"rawLine,omitempty"`
}

// String formats the error for display, e.g. "行3: 無効な日付形式: abc"
func (e ParseError) String() string {
	return fmt.Sprintf("行%d: %s", e.Row, e.Message)
}

// Messages shared by the format parsers
const (
	MsgEmptyFile          = "CSVファイルが空です"
	MsgHeaderNotFound     = "ヘッダー行が見つかりません"
	MsgInvalidDate        = "無効な日付形式: %s"
	MsgInvalidAmount      = "無効な金額: %s"
	MsgRowPanic           = "パースエラー: %v"
	NoBankDescription     = "（摘要なし）"
	NoCardDescription     = "（利用店名なし）"
	MsgUnknownBankFormat  = "対応する銀行フォーマットを検出できませんでした。楽天銀行またはみずほ銀行のCSVファイルをご使用ください。"
	MsgUnknownCardFormat  = "対応するカードフォーマットを検出できませんでした。楽天カードまたはセゾンカードのCSVファイルをご使用ください。"
	MsgUnsupportedBankTag = "未対応の銀行タイプ: %s"
	MsgUnsupportedCardTag = "未対応のカードタイプ: %s"
)

// BankResult is the outcome of parsing one bank statement
type BankResult struct {
	Success      bool          `json:"success"`
	Transactions []Transaction `json:"transactions"`
	Errors       []ParseError  `json:"errors"`
	BankType     BankFormat    `json:"bankType"`
	TotalIncome  int64         `json:"totalIncome"`
	TotalExpense int64         `json:"totalExpense"`
}

// NewBankResult returns an empty result for format
func NewBankResult(format BankFormat) *BankResult {
	return &BankResult{
		Transactions: []Transaction{},
		Errors:       []ParseError{},
		BankType:     format,
	}
}

// BankFailure returns a structural failure with a single row-0 error
func BankFailure(format BankFormat, message, rawLine string) *BankResult {
	r := NewBankResult(format)
	r.AddError(0, message, rawLine)
	return r.Finish()
}

// Add appends t and accumulates it into the matching total
func (r *BankResult) Add(t Transaction) {
	switch t.Type {
	case Income:
		r.TotalIncome += t.Amount
	case Expense:
		r.TotalExpense += t.Amount
	}
	r.Transactions = append(r.Transactions, t)
}

// AddError records a diagnostic
func (r *BankResult) AddError(row int, message, rawLine string) {
	r.Errors = append(r.Errors, ParseError{Row: row, Message: message, RawLine: rawLine})
}

// Finish computes Success: no errors, or at least one recovered transaction
func (r *BankResult) Finish() *BankResult {
	r.Success = len(r.Errors) == 0 || len(r.Transactions) > 0
	return r
}

// CardResult is the outcome of parsing one credit card statement
type CardResult struct {
	Success      bool              `json:"success"`
	Transactions []CardTransaction `json:"transactions"`
	Errors       []ParseError      `json:"errors"`
	CardType     CardFormat        `json:"cardType"`
	TotalExpense int64             `json:"totalExpense"`
	TotalRefund  int64             `json:"totalRefund"`
}

// NewCardResult returns an empty result for format
func NewCardResult(format CardFormat) *CardResult {
	return &CardResult{
		Transactions: []CardTransaction{},
		Errors:       []ParseError{},
		CardType:     format,
	}
}

// CardFailure returns a structural failure with a single row-0 error
func CardFailure(format CardFormat, message, rawLine string) *CardResult {
	r := NewCardResult(format)
	r.AddError(0, message, rawLine)
	return r.Finish()
}

// Add appends t and accumulates it into the matching total
func (r *CardResult) Add(t CardTransaction) {
	switch t.Type {
	case Expense:
		r.TotalExpense += t.Amount
	case Refund:
		r.TotalRefund += t.Amount
	}
	r.Transactions = append(r.Transactions, t)
}

// AddError records a diagnostic
func (r *CardResult) AddError(row int, message, rawLine string) {
	r.Errors = append(r.Errors, ParseError{Row: row, Message: message, RawLine: rawLine})
}

// Finish computes Success: no errors, or at least one recovered transaction
func (r *CardResult) Finish() *CardResult {
	r.Success = len(r.Errors) == 0 || len(r.Transactions) > 0
	return r
}
