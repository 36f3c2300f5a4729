// Package scanner finds statement CSV files in an export directory
package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
)

// Kind is the statement family a file belongs to
type Kind string

const (
	KindBank Kind = "bank"
	KindCard Kind = "card"
)

// ParseKind resolves a kind name
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindBank:
		return KindBank, true
	case KindCard:
		return KindCard, true
	default:
		return "", false
	}
}

// Scanner walks an export directory laid out as {root}/{bank|card}/[{format}/]file.csv
type Scanner struct {
	rootDir string
}

// New creates a new scanner for the given root directory
func New(rootDir string) *Scanner {
	return &Scanner{rootDir: rootDir}
}

// ScanResult is one statement file and what its location says about it.
// Format is empty unless the file sits under a directory named after a known tag.
type ScanResult struct {
	Path   string
	Kind   Kind
	Format string
}

// Scan returns the statement files under the root in lexical path order.
// CSV files outside a bank or card directory are ignored.
func (s *Scanner) Scan() ([]ScanResult, error) {
	rootDir, err := expandHome(s.rootDir)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	var results []ScanResult
	err = filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isStatementFile(path) {
			return nil
		}

		result, ok := classify(path, rootDir)
		if !ok {
			return nil
		}
		results = append(results, result)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

func isStatementFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

// classify reads kind and format from the path relative to root
func classify(filePath, rootDir string) (ScanResult, bool) {
	relPath, err := filepath.Rel(rootDir, filePath)
	if err != nil {
		return ScanResult{}, false
	}
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	if len(parts) < 2 {
		return ScanResult{}, false
	}

	kind, ok := ParseKind(parts[0])
	if !ok {
		return ScanResult{}, false
	}

	result := ScanResult{Path: filePath, Kind: kind}
	if len(parts) >= 3 {
		result.Format = formatHint(kind, parts[1])
	}
	return result, true
}

// formatHint returns the canonical tag when dir names a known format
func formatHint(kind Kind, dir string) string {
	switch kind {
	case KindBank:
		if f, ok := parser.ParseBankFormat(dir); ok && f != parser.BankUnknown {
			return f.String()
		}
	case KindCard:
		if f, ok := parser.ParseCardFormat(dir); ok && f != parser.CardUnknown {
			return f.String()
		}
	}
	return ""
}

// expandHome expands a leading ~/ to the home directory
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}
