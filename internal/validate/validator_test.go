package validate

import (
	"testing"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
)

func validBankResult() *parser.BankResult {
	r := parser.NewBankResult(parser.BankFormatB)
	r.Add(parser.Transaction{Date: parser.NewDate(2024, 4, 18), Amount: 280000, Type: parser.Income})
	r.Add(parser.Transaction{Date: parser.NewDate(2024, 4, 19), Amount: 8200, Type: parser.Expense})
	return r.Finish()
}

func TestValidateBankResult_Valid(t *testing.T) {
	if errs := ValidateBankResult(validBankResult()); len(errs) != 0 {
		t.Errorf("valid result should have no errors, got %v", errs)
	}

	failure := parser.BankFailure(parser.BankUnknown, "x", "")
	if errs := ValidateBankResult(failure); len(errs) != 0 {
		t.Errorf("structural failure should be consistent, got %v", errs)
	}
}

func TestValidateBankResult_Inconsistent(t *testing.T) {
	r := validBankResult()
	r.TotalIncome++
	r.Success = false
	r.Transactions = append(r.Transactions,
		parser.Transaction{Amount: -1, Type: parser.Refund},
	)

	errs := ValidateBankResult(r)

	fields := make(map[string]int)
	for _, e := range errs {
		fields[e.Field]++
	}
	for _, f := range []string{"TotalIncome", "Success", "Type", "Date", "Amount"} {
		if fields[f] != 1 {
			t.Errorf("Expected one %s error, got %d (%v)", f, fields[f], errs)
		}
	}
	if fields["TotalExpense"] != 0 {
		t.Errorf("TotalExpense should still match, got %v", errs)
	}
}

func TestValidateCardResult(t *testing.T) {
	r := parser.NewCardResult(parser.CardFormatB)
	r.Add(parser.CardTransaction{Date: parser.NewDate(2024, 6, 10), Amount: 1500, Type: parser.Refund})
	r.Add(parser.CardTransaction{Date: parser.NewDate(2024, 6, 10), Amount: 5000, Type: parser.Expense})
	r.Finish()

	if errs := ValidateCardResult(r); len(errs) != 0 {
		t.Errorf("valid result should have no errors, got %v", errs)
	}

	r.Transactions = append(r.Transactions, parser.CardTransaction{Date: parser.NewDate(2024, 6, 11), Amount: 10, Type: parser.Income})
	r.TotalRefund = 0

	errs := ValidateCardResult(r)
	if len(errs) != 2 {
		t.Fatalf("Expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Field != "Type" || errs[1].Field != "TotalRefund" {
		t.Errorf("Unexpected errors %v", errs)
	}
	if errs[1].Error() != "result.TotalRefund: total does not match transactions: sum is 1500" {
		t.Errorf("Unexpected message %q", errs[1].Error())
	}
}

func TestValidateEntries(t *testing.T) {
	tree := domain.DefaultCategoryTree()
	entries := []domain.Entry{
		{ID: "a", Date: "2024-04-18", Amount: 100, Type: domain.TransactionTypeIncome, CategoryID: "cat-income-salary", Fingerprint: "fp1"},
		{ID: "b", Date: "2024-04-18", Amount: 100, Type: domain.TransactionTypeIncome, Fingerprint: "fp1"},
		{ID: "a", Date: "2024/04/18", Amount: 0, Type: "refund"},
		{ID: "", Date: "2024-04-20", Amount: 5, Type: domain.TransactionTypeExpense, CategoryID: "cat-missing"},
		{ID: "c", Date: "2024-04-21", Amount: 5, Type: domain.TransactionTypeExpense, CategoryID: "cat-income-bonus"},
	}

	result := ValidateEntries(entries, tree)

	if len(result.Errors) != 6 {
		for _, e := range result.Errors {
			t.Logf("  - %s", e.Error())
		}
		t.Fatalf("Expected 6 errors, got %d", len(result.Errors))
	}
	if len(result.Warnings) != 2 {
		t.Errorf("Expected 2 warnings, got %d: %+v", len(result.Warnings), result.Warnings)
	}

	clean := ValidateEntries(entries[:1], nil)
	if len(clean.Errors) != 0 || len(clean.Warnings) != 0 {
		t.Errorf("Expected clean result, got %+v", clean)
	}
}
