// Package validate checks parse results and ledger entries for internal consistency
package validate

import (
	"fmt"
	"time"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
)

// ValidationResult contains all validation errors and warnings for a set of entries
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// ValidationError represents a validation error
type ValidationError struct {
	Entity  string // "result", "transaction", "entry"
	ID      string
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s.%s: %s", e.Entity, e.Field, e.Message)
	}
	return fmt.Sprintf("%s %s.%s: %s", e.Entity, e.ID, e.Field, e.Message)
}

// ValidationWarning represents a non-critical validation issue
type ValidationWarning struct {
	Entity  string
	ID      string
	Field   string
	Value   string
	Message string
}

// ValidateBankResult checks that totals equal the per-type sums, that Success agrees
// with the error and transaction counts, and that every transaction is well formed.
func ValidateBankResult(r *parser.BankResult) []ValidationError {
	var errs []ValidationError
	var income, expense int64

	for i, txn := range r.Transactions {
		id := fmt.Sprintf("#%d", i)
		errs = append(errs, checkTransaction(id, txn.Date, txn.Amount)...)
		switch txn.Type {
		case parser.Income:
			income += txn.Amount
		case parser.Expense:
			expense += txn.Amount
		default:
			errs = append(errs, ValidationError{
				Entity:  "transaction",
				ID:      id,
				Field:   "Type",
				Value:   string(txn.Type),
				Message: "bank transaction must be income or expense",
			})
		}
	}

	errs = append(errs, checkTotal("TotalIncome", r.TotalIncome, income)...)
	errs = append(errs, checkTotal("TotalExpense", r.TotalExpense, expense)...)
	errs = append(errs, checkSuccess(r.Success, len(r.Errors), len(r.Transactions))...)
	return errs
}

// ValidateCardResult is ValidateBankResult for card statements
func ValidateCardResult(r *parser.CardResult) []ValidationError {
	var errs []ValidationError
	var expense, refund int64

	for i, txn := range r.Transactions {
		id := fmt.Sprintf("#%d", i)
		errs = append(errs, checkTransaction(id, txn.Date, txn.Amount)...)
		switch txn.Type {
		case parser.Expense:
			expense += txn.Amount
		case parser.Refund:
			refund += txn.Amount
		default:
			errs = append(errs, ValidationError{
				Entity:  "transaction",
				ID:      id,
				Field:   "Type",
				Value:   string(txn.Type),
				Message: "card transaction must be expense or refund",
			})
		}
	}

	errs = append(errs, checkTotal("TotalExpense", r.TotalExpense, expense)...)
	errs = append(errs, checkTotal("TotalRefund", r.TotalRefund, refund)...)
	errs = append(errs, checkSuccess(r.Success, len(r.Errors), len(r.Transactions))...)
	return errs
}

func checkTransaction(id string, date parser.Date, amount int64) []ValidationError {
	var errs []ValidationError
	if date.IsZero() {
		errs = append(errs, ValidationError{
			Entity:  "transaction",
			ID:      id,
			Field:   "Date",
			Message: "date is not set",
		})
	}
	if amount < 0 {
		errs = append(errs, ValidationError{
			Entity:  "transaction",
			ID:      id,
			Field:   "Amount",
			Value:   fmt.Sprintf("%d", amount),
			Message: "amount must be non-negative",
		})
	}
	return errs
}

func checkTotal(field string, got, want int64) []ValidationError {
	if got == want {
		return nil
	}
	return []ValidationError{{
		Entity:  "result",
		Field:   field,
		Value:   fmt.Sprintf("%d", got),
		Message: fmt.Sprintf("total does not match transactions: sum is %d", want),
	}}
}

func checkSuccess(success bool, errorCount, txnCount int) []ValidationError {
	want := errorCount == 0 || txnCount > 0
	if success == want {
		return nil
	}
	return []ValidationError{{
		Entity:  "result",
		Field:   "Success",
		Value:   fmt.Sprintf("%t", success),
		Message: fmt.Sprintf("inconsistent with %d errors and %d transactions", errorCount, txnCount),
	}}
}

// ValidateEntries checks ledger entries before they are persisted.
// Category references are resolved against tree when it is non-nil.
// Repeated fingerprints are reported as warnings since a statement may
// legitimately contain two identical purchases on the same day.
func ValidateEntries(entries []domain.Entry, tree *domain.CategoryTree) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}

	ids := make(map[string]bool)
	fingerprints := make(map[string]bool)

	for _, e := range entries {
		if e.ID == "" {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "entry",
				Field:   "ID",
				Message: "entry ID cannot be empty",
			})
		} else {
			if ids[e.ID] {
				result.Errors = append(result.Errors, ValidationError{
					Entity:  "entry",
					ID:      e.ID,
					Field:   "ID",
					Value:   e.ID,
					Message: "duplicate entry ID",
				})
			}
			ids[e.ID] = true
		}

		if _, err := time.Parse(domain.DateLayout, e.Date); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "entry",
				ID:      e.ID,
				Field:   "Date",
				Value:   e.Date,
				Message: fmt.Sprintf("invalid date format (expected YYYY-MM-DD): %v", err),
			})
		}

		if e.Amount <= 0 {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "entry",
				ID:      e.ID,
				Field:   "Amount",
				Value:   fmt.Sprintf("%d", e.Amount),
				Message: "amount must be positive",
			})
		}

		if !domain.ValidateTransactionType(e.Type) {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "entry",
				ID:      e.ID,
				Field:   "Type",
				Value:   string(e.Type),
				Message: fmt.Sprintf("invalid transaction type: %s", e.Type),
			})
		}

		if tree != nil && e.CategoryID != "" {
			c, ok := tree.Get(e.CategoryID)
			switch {
			case !ok:
				result.Errors = append(result.Errors, ValidationError{
					Entity:  "entry",
					ID:      e.ID,
					Field:   "CategoryID",
					Value:   e.CategoryID,
					Message: fmt.Sprintf("references non-existent category: %s", e.CategoryID),
				})
			case c.Type != e.Type:
				result.Warnings = append(result.Warnings, ValidationWarning{
					Entity:  "entry",
					ID:      e.ID,
					Field:   "CategoryID",
					Value:   e.CategoryID,
					Message: fmt.Sprintf("category type %s differs from entry type %s", c.Type, e.Type),
				})
			}
		}

		if e.Fingerprint != "" {
			if fingerprints[e.Fingerprint] {
				result.Warnings = append(result.Warnings, ValidationWarning{
					Entity:  "entry",
					ID:      e.ID,
					Field:   "Fingerprint",
					Value:   e.Fingerprint,
					Message: "same date, amount and description as an earlier entry",
				})
			}
			fingerprints[e.Fingerprint] = true
		}
	}

	return result
}
