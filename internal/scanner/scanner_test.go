package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("test"), 0644))
}

func TestScanner_Scan(t *testing.T) {
	// tmpDir/
	//   bank/
	//     bank-format-b/2024-04.csv
	//     rakuten-bank/2024-05.CSV
	//     misc/2024-06.csv
	//     top.csv
	//   card/
	//     card-format-a/may.csv
	//     notes.txt
	//   other/
	//     stray.csv
	//   root.csv
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "bank", "bank-format-b", "2024-04.csv"))
	writeFile(t, filepath.Join(tmpDir, "bank", "rakuten-bank", "2024-05.CSV"))
	writeFile(t, filepath.Join(tmpDir, "bank", "misc", "2024-06.csv"))
	writeFile(t, filepath.Join(tmpDir, "bank", "top.csv"))
	writeFile(t, filepath.Join(tmpDir, "card", "card-format-a", "may.csv"))
	writeFile(t, filepath.Join(tmpDir, "card", "notes.txt"))
	writeFile(t, filepath.Join(tmpDir, "other", "stray.csv"))
	writeFile(t, filepath.Join(tmpDir, "root.csv"))

	results, err := New(tmpDir).Scan()
	require.NoError(t, err)

	expected := []ScanResult{
		{Path: filepath.Join(tmpDir, "bank", "bank-format-b", "2024-04.csv"), Kind: KindBank, Format: "bank-format-b"},
		{Path: filepath.Join(tmpDir, "bank", "misc", "2024-06.csv"), Kind: KindBank, Format: ""},
		{Path: filepath.Join(tmpDir, "bank", "rakuten-bank", "2024-05.CSV"), Kind: KindBank, Format: "bank-format-a"},
		{Path: filepath.Join(tmpDir, "bank", "top.csv"), Kind: KindBank, Format: ""},
		{Path: filepath.Join(tmpDir, "card", "card-format-a", "may.csv"), Kind: KindCard, Format: "card-format-a"},
	}
	assert.Equal(t, expected, results)
}

func TestScanner_Scan_NonExistentDirectory(t *testing.T) {
	results, err := New("/nonexistent/directory/path").Scan()

	assert.Error(t, err, "should error on non-existent directory")
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), "scan failed")
}

func TestScanner_Scan_EmptyDirectory(t *testing.T) {
	results, err := New(t.TempDir()).Scan()

	require.NoError(t, err)
	assert.Empty(t, results, "should find no files in empty directory")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		filePath string
		want     ScanResult
		wantOK   bool
	}{
		{
			name:     "bank with format directory",
			filePath: "/base/bank/bank-format-a/statement.csv",
			want:     ScanResult{Path: "/base/bank/bank-format-a/statement.csv", Kind: KindBank, Format: "bank-format-a"},
			wantOK:   true,
		},
		{
			name:     "card alias directory",
			filePath: "/base/card/saison-card/statement.csv",
			want:     ScanResult{Path: "/base/card/saison-card/statement.csv", Kind: KindCard, Format: "card-format-b"},
			wantOK:   true,
		},
		{
			name:     "kind directory is case-insensitive",
			filePath: "/base/Card/statement.csv",
			want:     ScanResult{Path: "/base/Card/statement.csv", Kind: KindCard},
			wantOK:   true,
		},
		{
			name:     "bank tag under card is not a hint",
			filePath: "/base/card/bank-format-a/statement.csv",
			want:     ScanResult{Path: "/base/card/bank-format-a/statement.csv", Kind: KindCard},
			wantOK:   true,
		},
		{
			name:     "unknown sentinel is not a hint",
			filePath: "/base/bank/unknown/statement.csv",
			want:     ScanResult{Path: "/base/bank/unknown/statement.csv", Kind: KindBank},
			wantOK:   true,
		},
		{
			name:     "file at root",
			filePath: "/base/statement.csv",
			wantOK:   false,
		},
		{
			name:     "unknown kind directory",
			filePath: "/base/receipts/statement.csv",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := classify(tt.filePath, "/base")
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input  string
		want   Kind
		wantOK bool
	}{
		{"bank", KindBank, true},
		{" CARD ", KindCard, true},
		{"ofx", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseKind(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestIsStatementFile(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"statement.csv", true},
		{"STATEMENT.CSV", true},
		{"Statement.Csv", true},
		{"statement.ofx", false},
		{"document.txt", false},
		{"noextension", false},
		{"", false},
		{"/path/to/file.csv", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isStatementFile(tt.path))
		})
	}
}

func TestExpandHome(t *testing.T) {
	result, err := expandHome("~/statements")
	require.NoError(t, err)
	homeDir, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(homeDir, "statements"), result, "should expand ~ to home directory")

	for _, path := range []string{"/absolute/path", "relative/path", "", "~"} {
		result, err := expandHome(path)
		require.NoError(t, err)
		assert.Equal(t, path, result)
	}
}
