// Package importer turns parsed statements into categorized ledger entries and
// persists the ones not imported before.
package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/logger"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/registry"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/rules"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/store"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/validate"
)

// User-facing outcome messages
const (
	MsgParseFailed  = "CSVのパースに失敗しました"
	MsgBankImported = "%d件の取引をインポートしました"
	MsgCardImported = "%d件のカード明細をインポートしました（%s）"
	MsgSaveFailed   = "データベースへの保存に失敗しました"
)

// ErrInvalidResult is returned when a parse result or the entries built from it
// fail validation. Nothing is persisted in that case.
var ErrInvalidResult = errors.New("invalid import")

// ImportResult summarizes a bank statement import.
// Totals are the parsed statement totals; Entries are the entries persisted.
type ImportResult struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	ImportedCount int            `json:"importedCount"`
	SkippedCount  int            `json:"skippedCount"`
	TotalIncome   int64          `json:"totalIncome"`
	TotalExpense  int64          `json:"totalExpense"`
	Errors        []string       `json:"errors"`
	Entries       []domain.Entry `json:"entries"`
}

// CardImportResult summarizes a card statement import
type CardImportResult struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	ImportedCount int            `json:"importedCount"`
	SkippedCount  int            `json:"skippedCount"`
	TotalExpense  int64          `json:"totalExpense"`
	TotalRefund   int64          `json:"totalRefund"`
	Errors        []string       `json:"errors"`
	Entries       []domain.Entry `json:"entries"`
}

// Service imports statements into a repository. Safe for concurrent use when
// the repository is.
type Service struct {
	registry   *registry.Registry
	repo       store.Repository
	rules      *rules.Engine
	categories *domain.CategoryTree
	logger     *log.Logger
	now        func() time.Time
	newID      func() string

	// mu spans the duplicate check and the save, so concurrent imports through one
	// Service cannot both insert the same fingerprint
	mu sync.Mutex
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the service logger
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now for entry timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the UUID entry ID generator
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// New creates a Service. engine may be nil, in which case entries are left
// uncategorized.
func New(reg *registry.Registry, repo store.Repository, engine *rules.Engine, opts ...Option) *Service {
	s := &Service{
		registry:   reg,
		repo:       repo,
		rules:      engine,
		categories: domain.DefaultCategoryTree(),
		logger:     logger.Discard(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PreviewBank parses without persisting. An empty or "unknown" tag auto-detects.
func (s *Service) PreviewBank(content, tag string) *parser.BankResult {
	return s.registry.ParseBankTag(content, tag)
}

// PreviewCard parses without persisting. An empty or "unknown-card" tag auto-detects.
func (s *Service) PreviewCard(content, tag string) *parser.CardResult {
	return s.registry.ParseCardTag(content, tag)
}

// ImportBank parses and commits a bank statement
func (s *Service) ImportBank(ctx context.Context, content, tag string) (*ImportResult, error) {
	return s.CommitBank(ctx, s.PreviewBank(content, tag))
}

// ImportCard parses and commits a card statement
func (s *Service) ImportCard(ctx context.Context, content, tag string) (*CardImportResult, error) {
	return s.CommitCard(ctx, s.PreviewCard(content, tag))
}

// CommitBank persists an already parsed bank statement.
// A result with no transactions and errors is reported, not returned as an error.
func (s *Service) CommitBank(ctx context.Context, result *parser.BankResult) (*ImportResult, error) {
	if !result.Success && len(result.Transactions) == 0 {
		return &ImportResult{
			Message: MsgParseFailed,
			Errors:  formatErrors(result.Errors),
			Entries: []domain.Entry{},
		}, nil
	}
	if errs := validate.ValidateBankResult(result); len(errs) > 0 {
		return nil, invalid(errs)
	}

	entries, err := s.bankEntries(result, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	saved, skipped, err := s.persist(ctx, entries)
	if err != nil {
		return nil, err
	}

	s.logger.Info("imported bank statement",
		"format", result.BankType, "imported", len(saved), "skipped", skipped, "rowErrors", len(result.Errors))

	return &ImportResult{
		Success:       true,
		Message:       fmt.Sprintf(MsgBankImported, len(saved)),
		ImportedCount: len(saved),
		SkippedCount:  skipped,
		TotalIncome:   result.TotalIncome,
		TotalExpense:  result.TotalExpense,
		Errors:        formatErrors(result.Errors),
		Entries:       saved,
	}, nil
}

// CommitCard persists an already parsed card statement
func (s *Service) CommitCard(ctx context.Context, result *parser.CardResult) (*CardImportResult, error) {
	if !result.Success && len(result.Transactions) == 0 {
		return &CardImportResult{
			Message: MsgParseFailed,
			Errors:  formatErrors(result.Errors),
			Entries: []domain.Entry{},
		}, nil
	}
	if errs := validate.ValidateCardResult(result); len(errs) > 0 {
		return nil, invalid(errs)
	}

	entries, err := s.cardEntries(result, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	saved, skipped, err := s.persist(ctx, entries)
	if err != nil {
		return nil, err
	}

	s.logger.Info("imported card statement",
		"format", result.CardType, "imported", len(saved), "skipped", skipped, "rowErrors", len(result.Errors))

	return &CardImportResult{
		Success:       true,
		Message:       fmt.Sprintf(MsgCardImported, len(saved), result.CardType),
		ImportedCount: len(saved),
		SkippedCount:  skipped,
		TotalExpense:  result.TotalExpense,
		TotalRefund:   result.TotalRefund,
		Errors:        formatErrors(result.Errors),
		Entries:       saved,
	}, nil
}

// ListEntries returns stored entries matching filter
func (s *Service) ListEntries(ctx context.Context, filter store.Filter) ([]domain.Entry, error) {
	return s.repo.ListEntries(ctx, filter)
}

// persist drops entries whose fingerprint was stored by an earlier import,
// validates the rest and saves them in one batch. Imports are serialized per
// Service; separate processes sharing one store are not coordinated.
func (s *Service) persist(ctx context.Context, entries []domain.Entry) ([]domain.Entry, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]bool)
	fresh := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		seen, checked := known[e.Fingerprint]
		if !checked {
			var err error
			seen, err = s.repo.HasFingerprint(ctx, e.Fingerprint)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to check duplicates: %w", err)
			}
			known[e.Fingerprint] = seen
		}
		if seen {
			s.logger.Debug("skipping previously imported entry", "date", e.Date, "amount", e.Amount, "description", e.Description)
			continue
		}
		fresh = append(fresh, e)
	}

	check := validate.ValidateEntries(fresh, s.categories)
	if len(check.Errors) > 0 {
		return nil, 0, invalid(check.Errors)
	}
	for _, w := range check.Warnings {
		s.logger.Debug("entry warning", "id", w.ID, "field", w.Field, "message", w.Message)
	}

	if len(fresh) > 0 {
		if err := s.repo.SaveEntries(ctx, fresh); err != nil {
			return nil, 0, fmt.Errorf("failed to save entries: %w", err)
		}
	}
	return fresh, len(entries) - len(fresh), nil
}

func invalid(errs []validate.ValidationError) error {
	joined := make([]error, 0, len(errs))
	for _, e := range errs {
		joined = append(joined, e)
	}
	return fmt.Errorf("%w: %w", ErrInvalidResult, errors.Join(joined...))
}
