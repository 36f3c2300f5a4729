package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrAlreadyExists is returned when adding an entry whose ID is already present
var ErrAlreadyExists = errors.New("already exists")

// TransactionType is the ledger direction of an entry
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

var validTransactionTypes = map[TransactionType]struct{}{
	TransactionTypeIncome: {}, TransactionTypeExpense: {}, TransactionTypeTransfer: {},
}

// ValidateTransactionType checks if t is a known ledger direction
func ValidateTransactionType(t TransactionType) bool {
	_, ok := validTransactionTypes[t]
	return ok
}

// DateLayout is the ledger date format
const DateLayout = "2006-01-02"

// Entry is one persisted ledger transaction.
// Amount is a positive yen value; direction is carried by Type.
// Source is the statement format tag the entry was imported from.
type Entry struct {
	ID          string          `json:"id" csv:"id" firestore:"id"`
	Date        string          `json:"date" csv:"date" firestore:"date"` // YYYY-MM-DD
	Description string          `json:"description" csv:"description" firestore:"description"`
	Amount      int64           `json:"amount" csv:"amount" firestore:"amount"`
	Type        TransactionType `json:"type" csv:"type" firestore:"type"`
	CategoryID  string          `json:"categoryId,omitempty" csv:"category_id" firestore:"categoryId"`
	Source      string          `json:"source" csv:"source" firestore:"source"`
	Memo        string          `json:"memo,omitempty" csv:"memo" firestore:"memo"`
	Fingerprint string          `json:"fingerprint" csv:"-" firestore:"fingerprint"`
	CreatedAt   time.Time       `json:"createdAt" csv:"-" firestore:"createdAt"`
}

// NewEntry creates a validated entry
func NewEntry(id, date, description string, amount int64, txnType TransactionType) (*Entry, error) {
	if id == "" {
		return nil, fmt.Errorf("entry ID cannot be empty")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("entry amount must be positive, got %d", amount)
	}
	if !ValidateTransactionType(txnType) {
		return nil, fmt.Errorf("invalid transaction type: %s", txnType)
	}
	return &Entry{
		ID:          id,
		Date:        date,
		Description: description,
		Amount:      amount,
		Type:        txnType,
	}, nil
}

// Signed returns the amount with expenses negative, for balance arithmetic
func (e Entry) Signed() int64 {
	if e.Type == TransactionTypeExpense {
		return -e.Amount
	}
	return e.Amount
}

// Ledger is an ordered, ID-unique collection of entries
type Ledger struct {
	entries []Entry
}

// NewLedger creates an empty ledger with an initialized slice
func NewLedger() *Ledger {
	return &Ledger{entries: []Entry{}}
}

// AddEntry adds an entry, checking for duplicate IDs
func (l *Ledger) AddEntry(e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("invalid entry: ID is required")
	}
	for _, existing := range l.entries {
		if existing.ID == e.ID {
			return fmt.Errorf("entry %s: %w", e.ID, ErrAlreadyExists)
		}
	}
	l.entries = append(l.entries, e)
	return nil
}

// GetEntries returns a copy of the entries slice
func (l *Ledger) GetEntries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Totals returns the summed income and expense amounts. Transfers are excluded.
func (l *Ledger) Totals() (income, expense int64) {
	for _, e := range l.entries {
		switch e.Type {
		case TransactionTypeIncome:
			income += e.Amount
		case TransactionTypeExpense:
			expense += e.Amount
		}
	}
	return income, expense
}

// MarshalJSON implements custom JSON marshaling for Ledger
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Entries []Entry `json:"entries"`
	}{
		Entries: l.entries,
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Ledger
func (l *Ledger) UnmarshalJSON(data []byte) error {
	aux := &struct {
		Entries []Entry `json:"entries"`
	}{}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	l.entries = aux.Entries
	if l.entries == nil {
		l.entries = []Entry{}
	}
	return nil
}
