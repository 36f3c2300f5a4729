// Package output writes parse results and ledger entries for the CLI
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
)

// Format selects the serialization written by WriteToFile
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// WriteOptions configures where and how output is written
type WriteOptions struct {
	Format   Format
	FilePath string    // empty writes to Stdout
	Stdout   io.Writer // defaults to os.Stdout
}

// WriteJSON serializes v as JSON with 2-space indentation
func WriteJSON(v any, w io.Writer) error {
	if v == nil {
		return fmt.Errorf("value cannot be nil")
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteEntriesCSV writes entries as CSV with a header row. Fingerprints and
// timestamps are internal and omitted.
func WriteEntriesCSV(entries []domain.Entry, w io.Writer) error {
	if entries == nil {
		entries = []domain.Entry{}
	}
	if err := gocsv.Marshal(&entries, w); err != nil {
		return fmt.Errorf("failed to encode CSV: %w", err)
	}
	return nil
}

// WriteToFile writes v to opts.FilePath, or opts.Stdout when no path is set.
// FormatCSV requires v to be a []domain.Entry.
func WriteToFile(v any, opts WriteOptions) (err error) {
	if opts.FilePath == "" {
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		return write(v, opts.Format, w)
	}

	f, err := os.Create(opts.FilePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", opts.FilePath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file %s: %w", opts.FilePath, closeErr)
		}
	}()

	if err = write(v, opts.Format, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.FilePath, err)
	}
	return nil
}

func write(v any, format Format, w io.Writer) error {
	switch format {
	case FormatCSV:
		entries, ok := v.([]domain.Entry)
		if !ok {
			return fmt.Errorf("csv output requires ledger entries, got %T", v)
		}
		return WriteEntriesCSV(entries, w)
	case FormatJSON, "":
		return WriteJSON(v, w)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
