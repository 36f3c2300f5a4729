package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
)

const rakutenHeader = "利用日,利用店名・商品名,利用者,支払方法,利用金額,支払手数料,支払総額"

const saisonHeader = "ご利用日,ご利用店名,ご利用金額,返金金額,支払区分,今回お支払金額"

func TestDetectors(t *testing.T) {
	rakuten := NewRakutenParser()
	saison := NewSaisonParser()

	tests := []struct {
		name   string
		header string
		wantA  bool
		wantB  bool
	}{
		{"format A header", rakutenHeader, true, false},
		{"format B header", saisonHeader, false, true},
		{"format B with billing label", "ご利用日,ご利用店名,ご利用金額,ご請求額", false, true},
		{"common labels only", "ご利用日,ご利用店名,ご利用金額", true, false},
		{"brand token blocks format B", "楽天 ご利用日,ご利用店名,ご利用金額,支払区分", false, false},
		{"e-NAVI token blocks format B", "利用日,利用店,利用金額,支払区分,E-NAVI", false, false},
		{"bank header", "取引日,入出金(円),残高(円),入出金先内容", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []string{tt.header}
			assert.Equal(t, tt.wantA, rakuten.CanParse(lines), "format A")
			assert.Equal(t, tt.wantB, saison.CanParse(lines), "format B")
		})
	}

	assert.False(t, rakuten.CanParse(nil))
	assert.False(t, saison.CanParse(nil))
}

func TestRakutenParse(t *testing.T) {
	content := rakutenHeader + "\n" +
		"2024/05/01,Amazon.co.jp,本人,1回払い,\"3,980\",0,\"3,980\"\n" +
		"2024/05/03,返品 Amazon.co.jp,本人,1回払い,-1200,0,-1200\n" +
		"# comment line\n" +
		"2024/05/04,ポイント利用,本人,1回払い,0,0,0\n" +
		",合計,,,\"2,780\",,\n" +
		"2024/05/06,スーパー,家族,,,0,\n"

	result := NewRakutenParser().Parse(content)

	require.True(t, result.Success)
	assert.Empty(t, result.Errors)
	assert.Equal(t, parser.CardFormatA, result.CardType)
	require.Len(t, result.Transactions, 2)

	expense := result.Transactions[0]
	assert.Equal(t, parser.Expense, expense.Type)
	assert.Equal(t, int64(3980), expense.Amount)
	assert.Equal(t, "1回払い", expense.PaymentMethod)
	assert.Equal(t, "本人", expense.RawData["利用者"])

	refund := result.Transactions[1]
	assert.Equal(t, parser.Refund, refund.Type)
	assert.Equal(t, int64(1200), refund.Amount)
	assert.Equal(t, "2024-05-03", refund.Date.String())

	assert.Equal(t, int64(3980), result.TotalExpense)
	assert.Equal(t, int64(1200), result.TotalRefund)
}

func TestRakutenParse_ErrorIsolation(t *testing.T) {
	content := rakutenHeader + "\n" +
		"2024/05/01,A,本人,1回払い,100,0,100\n" +
		"2024/5/xx,B,本人,1回払い,200,0,200\n" +
		"2024/05/03,C,本人,1回払い,三百,0,300\n" +
		"2024/05/04,,本人,,400,0,400\n"

	result := NewRakutenParser().Parse(content)

	assert.True(t, result.Success)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, "A", result.Transactions[0].Description)
	assert.Equal(t, parser.NoCardDescription, result.Transactions[1].Description)
	assert.Empty(t, result.Transactions[1].PaymentMethod)

	require.Len(t, result.Errors, 2)
	assert.Equal(t, parser.ParseError{Row: 3, Message: "無効な日付形式: 2024/5/xx", RawLine: "2024/5/xx,B,本人,1回払い,200,0,200"}, result.Errors[0])
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Equal(t, "無効な金額: 三百", result.Errors[1].Message)
}

func TestRakutenParse_MissingColumns(t *testing.T) {
	result := NewRakutenParser().Parse("利用日,利用店名\n2024/05/01,x\n")
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "必須カラム（利用日、利用金額）が見つかりません", result.Errors[0].Message)

	result = NewRakutenParser().Parse("")
	require.Len(t, result.Errors, 1)
	assert.Equal(t, parser.MsgEmptyFile, result.Errors[0].Message)
}

func TestSaisonParse_SplitRow(t *testing.T) {
	content := saisonHeader + "\n" +
		"2024/06/10,百貨店,\"5,000\",\"1,500\",1回,\"5,000\"\n"

	result := NewSaisonParser().Parse(content)

	require.True(t, result.Success)
	require.Len(t, result.Transactions, 2)

	refund, expense := result.Transactions[0], result.Transactions[1]
	assert.Equal(t, parser.Refund, refund.Type)
	assert.Equal(t, int64(1500), refund.Amount)
	assert.Equal(t, parser.Expense, expense.Type)
	assert.Equal(t, int64(5000), expense.Amount)

	assert.Equal(t, refund.Description, expense.Description)
	assert.Equal(t, refund.RawData, expense.RawData)
	assert.Equal(t, "1回", refund.PaymentMethod)

	assert.Equal(t, int64(5000), result.TotalExpense)
	assert.Equal(t, int64(1500), result.TotalRefund)
}

func TestSaisonParse(t *testing.T) {
	content := saisonHeader + "\n" +
		"2024/06/01,コンビニ,680,,1回,680\n" +
		"2024/06/02,返品,,2000,1回,\n" +
		"2024/06/03,調整,0,0,1回,0\n" +
		",,,,,\n" +
		",ご請求合計,680,2000,,\n" +
		"6月3日,書店,1200,,1回,1200\n"

	result := NewSaisonParser().Parse(content)

	assert.True(t, result.Success)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, parser.Expense, result.Transactions[0].Type)
	assert.Equal(t, parser.Refund, result.Transactions[1].Type)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, 7, result.Errors[0].Row)

	assert.Equal(t, int64(680), result.TotalExpense)
	assert.Equal(t, int64(2000), result.TotalRefund)
}

func TestSplitRow(t *testing.T) {
	m := parser.BuildMapping([]string{"ご利用日", "ご利用店名", "ご利用金額", "返金金額"}, saisonColumns)
	date := parser.NewDate(2024, 6, 1)

	tests := []struct {
		name   string
		fields []string
		want   []parser.TransactionType
	}{
		{"neither", []string{"2024/06/01", "x", "", ""}, []parser.TransactionType{}},
		{"usage only", []string{"2024/06/01", "x", "100", ""}, []parser.TransactionType{parser.Expense}},
		{"refund only", []string{"2024/06/01", "x", "", "100"}, []parser.TransactionType{parser.Refund}},
		{"both", []string{"2024/06/01", "x", "100", "50"}, []parser.TransactionType{parser.Refund, parser.Expense}},
		{"negative usage ignored", []string{"2024/06/01", "x", "-100", ""}, []parser.TransactionType{}},
		{"yen unit", []string{"2024/06/01", "x", "680円", ""}, []parser.TransactionType{parser.Expense}},
		{"junk refund beside usage", []string{"2024/06/01", "x", "100", "abc"}, []parser.TransactionType{parser.Expense}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := splitRow(m, tt.fields, date)
			assert.Empty(t, msg)
			types := make([]parser.TransactionType, 0, len(got))
			for _, txn := range got {
				types = append(types, txn.Type)
			}
			assert.Equal(t, tt.want, types)
		})
	}
}

func TestSaisonParse_InvalidAmounts(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		wantErr string
	}{
		{"junk usage", "2024/06/01,店,680yen,,1回,680", "無効な金額: 680yen"},
		{"junk refund", "2024/06/01,店,,返金済,1回,", "無効な金額: 返金済"},
		{"junk usage and zero refund", "2024/06/01,店,-,0,1回,", "無効な金額: -"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := saisonHeader + "\n" + tt.row + "\n" +
				"2024/06/02,書店,1200,,1回,1200\n"

			result := NewSaisonParser().Parse(content)

			assert.True(t, result.Success)
			require.Len(t, result.Transactions, 1)
			assert.Equal(t, "書店", result.Transactions[0].Description)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, 2, result.Errors[0].Row)
			assert.Equal(t, tt.wantErr, result.Errors[0].Message)
			assert.Equal(t, tt.row, result.Errors[0].RawLine)
		})
	}
}

func TestSaisonParse_YenUnit(t *testing.T) {
	result := NewSaisonParser().Parse(saisonHeader + "\n2024/06/01,店,680円,,1回,680円\n")

	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Transactions, 1)
	assert.Equal(t, int64(680), result.Transactions[0].Amount)
	assert.Equal(t, parser.Expense, result.Transactions[0].Type)
}
