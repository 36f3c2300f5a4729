package importer

import (
	"fmt"
	"time"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/dedup"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
)

// memoPaymentMethod prefixes the card payment method kept in the entry memo
const memoPaymentMethod = "支払方法: %s"

// ledgerType maps a statement direction onto the ledger. Card refunds are money
// coming back, so they are income.
func ledgerType(t parser.TransactionType) (domain.TransactionType, error) {
	switch t {
	case parser.Income, parser.Refund:
		return domain.TransactionTypeIncome, nil
	case parser.Expense:
		return domain.TransactionTypeExpense, nil
	default:
		return "", fmt.Errorf("unknown transaction type: %s", t)
	}
}

// newEntry builds the shared part of a ledger entry. The fingerprint uses the
// statement direction so a refund never collides with an income of the same amount.
func (s *Service) newEntry(date parser.Date, description string, amount int64, t parser.TransactionType, source string, createdAt time.Time) (domain.Entry, error) {
	txnType, err := ledgerType(t)
	if err != nil {
		return domain.Entry{}, err
	}

	e := domain.Entry{
		ID:          s.newID(),
		Date:        date.String(),
		Description: description,
		Amount:      amount,
		Type:        txnType,
		Source:      source,
		Fingerprint: dedup.Fingerprint(date.String(), amount, string(t), description),
		CreatedAt:   createdAt,
	}
	if s.rules != nil {
		if m, ok := s.rules.Match(description, txnType); ok {
			e.CategoryID = m.CategoryID
		}
	}
	return e, nil
}

// bankEntries converts every bank transaction. createdAt is offset by position so
// entries sharing a date list in statement order.
func (s *Service) bankEntries(result *parser.BankResult, now time.Time) ([]domain.Entry, error) {
	source := result.BankType.String()
	entries := make([]domain.Entry, 0, len(result.Transactions))
	for i, txn := range result.Transactions {
		e, err := s.newEntry(txn.Date, txn.Description, txn.Amount, txn.Type, source, now.Add(time.Duration(i)*time.Microsecond))
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Service) cardEntries(result *parser.CardResult, now time.Time) ([]domain.Entry, error) {
	source := result.CardType.String()
	entries := make([]domain.Entry, 0, len(result.Transactions))
	for i, txn := range result.Transactions {
		e, err := s.newEntry(txn.Date, txn.Description, txn.Amount, txn.Type, source, now.Add(time.Duration(i)*time.Microsecond))
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if txn.PaymentMethod != "" {
			e.Memo = fmt.Sprintf(memoPaymentMethod, txn.PaymentMethod)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// formatErrors renders parse diagnostics as "行N: message"
func formatErrors(errs []parser.ParseError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.String())
	}
	return out
}
