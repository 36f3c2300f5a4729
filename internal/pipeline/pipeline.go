// Package pipeline imports a batch of statement files, reporting progress per file
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/importer"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/logger"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/registry"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/scanner"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/textenc"
)

// Status is the state of one file in a batch
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// FileEvent reports progress on one file
type FileEvent struct {
	Index    int
	Total    int
	FileName string
	Status   Status
	Imported int
	Skipped  int
	Err      error
}

// ProgressCallback is called when a file starts and when it finishes
type ProgressCallback func(FileEvent)

// FileResult is the outcome of importing one file. Err is set when the file
// could not be read, parsed or stored; Errors holds row diagnostics either way.
type FileResult struct {
	Path     string
	Kind     scanner.Kind
	Format   string
	Encoding textenc.Encoding
	Message  string
	Imported int
	Skipped  int
	Errors   []string
	Err      error
}

// Summary aggregates a batch
type Summary struct {
	Files  []FileResult
	Ledger *domain.Ledger
}

// Failed returns the number of files that did not import
func (s *Summary) Failed() int {
	n := 0
	for _, f := range s.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Pipeline feeds files through an importer
type Pipeline struct {
	importer *importer.Service
	registry *registry.Registry
	logger   *log.Logger
	progress ProgressCallback
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the pipeline logger
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgress registers a progress callback
func WithProgress(cb ProgressCallback) Option {
	return func(p *Pipeline) { p.progress = cb }
}

// New creates a pipeline. reg resolves the kind of files scanned without one.
func New(svc *importer.Service, reg *registry.Registry, opts ...Option) *Pipeline {
	p := &Pipeline{
		importer: svc,
		registry: reg,
		logger:   logger.Discard(),
		progress: func(FileEvent) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessFiles imports files in order. A failing file is recorded and the
// batch continues; only context cancellation stops it early.
func (p *Pipeline) ProcessFiles(ctx context.Context, files []scanner.ScanResult) (*Summary, error) {
	summary := &Summary{
		Files:  make([]FileResult, 0, len(files)),
		Ledger: domain.NewLedger(),
	}
	total := len(files)

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		fileName := filepath.Base(file.Path)
		p.progress(FileEvent{Index: i + 1, Total: total, FileName: fileName, Status: StatusProcessing})

		result, entries := p.processFile(ctx, file)
		summary.Files = append(summary.Files, result)

		event := FileEvent{
			Index:    i + 1,
			Total:    total,
			FileName: fileName,
			Status:   StatusCompleted,
			Imported: result.Imported,
			Skipped:  result.Skipped,
			Err:      result.Err,
		}
		if result.Err != nil {
			p.logger.Error("failed to import file", "file", file.Path, "err", result.Err)
			event.Status = StatusFailed
		}

		for _, e := range entries {
			if err := summary.Ledger.AddEntry(e); err != nil {
				return summary, fmt.Errorf("failed to collect entries from %s: %w", fileName, err)
			}
		}
		p.progress(event)
	}

	return summary, nil
}

func (p *Pipeline) processFile(ctx context.Context, file scanner.ScanResult) (FileResult, []domain.Entry) {
	result := FileResult{Path: file.Path, Kind: file.Kind, Format: file.Format}

	raw, err := os.ReadFile(file.Path)
	if err != nil {
		result.Err = fmt.Errorf("failed to read file: %w", err)
		return result, nil
	}
	content, enc := textenc.Decode(raw)
	result.Encoding = enc

	if result.Kind == "" {
		result.Kind = DetectKind(p.registry, content)
	}

	switch result.Kind {
	case scanner.KindBank:
		res, err := p.importer.ImportBank(ctx, content, file.Format)
		if err != nil {
			result.Err = err
			return result, nil
		}
		result.Message, result.Imported, result.Skipped, result.Errors = res.Message, res.ImportedCount, res.SkippedCount, res.Errors
		if !res.Success {
			result.Err = parseFailure(res.Message, res.Errors)
		}
		return result, res.Entries
	case scanner.KindCard:
		res, err := p.importer.ImportCard(ctx, content, file.Format)
		if err != nil {
			result.Err = err
			return result, nil
		}
		result.Message, result.Imported, result.Skipped, result.Errors = res.Message, res.ImportedCount, res.SkippedCount, res.Errors
		if !res.Success {
			result.Err = parseFailure(res.Message, res.Errors)
		}
		return result, res.Entries
	default:
		result.Err = fmt.Errorf("could not tell whether %s is a bank or card statement", filepath.Base(file.Path))
		return result, nil
	}
}

// DetectKind reports whether content is a bank or card statement, or "" when
// no registered format accepts it. Bank formats are tried first.
func DetectKind(reg *registry.Registry, content string) scanner.Kind {
	if _, ok := reg.DetectBank(content); ok {
		return scanner.KindBank
	}
	if _, ok := reg.DetectCard(content); ok {
		return scanner.KindCard
	}
	return ""
}

func parseFailure(message string, errs []string) error {
	if len(errs) == 0 {
		return errors.New(message)
	}
	return fmt.Errorf("%s: %s", message, errs[0])
}
