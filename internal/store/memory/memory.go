// Package memory provides an in-process ledger repository
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/store"
)

// Store keeps entries in memory. Safe for concurrent use.
type Store struct {
	mu           sync.RWMutex
	entries      map[string]domain.Entry
	fingerprints map[string]int
}

var _ store.Repository = (*Store)(nil)

// New returns an empty store
func New() *Store {
	return &Store{
		entries:      make(map[string]domain.Entry),
		fingerprints: make(map[string]int),
	}
}

// SaveEntries stores all entries or none. A duplicate ID fails the whole batch.
func (s *Store) SaveEntries(ctx context.Context, entries []domain.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := s.entries[e.ID]; ok {
			return fmt.Errorf("entry %s: %w", e.ID, domain.ErrAlreadyExists)
		}
		if _, ok := seen[e.ID]; ok {
			return fmt.Errorf("entry %s: %w", e.ID, domain.ErrAlreadyExists)
		}
		seen[e.ID] = struct{}{}
	}

	for _, e := range entries {
		s.entries[e.ID] = e
		if e.Fingerprint != "" {
			s.fingerprints[e.Fingerprint]++
		}
	}
	return nil
}

func (s *Store) HasFingerprint(ctx context.Context, fingerprint string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingerprints[fingerprint] > 0, nil
}

func (s *Store) ListEntries(ctx context.Context, filter store.Filter) ([]domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := make([]domain.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (*domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, store.ErrNotFound)
	}
	return &e, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, store.ErrNotFound)
	}
	delete(s.entries, id)
	if e.Fingerprint != "" {
		s.fingerprints[e.Fingerprint]--
		if s.fingerprints[e.Fingerprint] <= 0 {
			delete(s.fingerprints, e.Fingerprint)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}
