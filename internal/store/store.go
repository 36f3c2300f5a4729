// Package store defines the ledger repository the importer persists entries to.
package store

import (
	"context"
	"errors"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
)

// ErrNotFound is returned when an entry ID does not exist
var ErrNotFound = errors.New("entry not found")

// Filter narrows ListEntries. Zero fields match everything; From and To are
// inclusive YYYY-MM-DD bounds.
type Filter struct {
	From string
	To   string
	Type domain.TransactionType
}

// Matches reports whether e passes the filter
func (f Filter) Matches(e domain.Entry) bool {
	if f.From != "" && e.Date < f.From {
		return false
	}
	if f.To != "" && e.Date > f.To {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	return true
}

// Repository persists ledger entries.
// ListEntries returns entries ordered by date, then creation time.
type Repository interface {
	SaveEntries(ctx context.Context, entries []domain.Entry) error
	HasFingerprint(ctx context.Context, fingerprint string) (bool, error)
	ListEntries(ctx context.Context, filter Filter) ([]domain.Entry, error)
	GetEntry(ctx context.Context, id string) (*domain.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
	Close() error
}
