package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/store"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/store/sqlite"
)

const bankCSV = "取引日,入出金(円),残高(円),入出金先内容\n" +
	"20240401,-1500,98500,コンビニ\n" +
	"20240415,280000,378500,給与\n"

const cardCSV = "利用日,利用店名・商品名,利用者,支払方法,利用金額,支払手数料,支払総額\n" +
	"2024/05/01,AMAZON,本人,1回払い,3980,0,3980\n"

// runKakeibo executes the CLI in-process with an isolated environment
func runKakeibo(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	for _, key := range []string{
		"KAKEIBO_STORE", "KAKEIBO_DATABASE_PATH", "KAKEIBO_LOG_LEVEL",
		"KAKEIBO_RULES_FILE", "KAKEIBO_PORT", "KAKEIBO_FIRESTORE_PROJECT",
	} {
		t.Setenv(key, "")
	}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFormats(t *testing.T) {
	stdout, _, err := runKakeibo(t, "formats")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Banks:")
	assert.Contains(t, stdout, "bank-format-a")
	assert.Contains(t, stdout, "bank-format-b")
	assert.Contains(t, stdout, "Cards:")
	assert.Contains(t, stdout, "card-format-b")
}

func TestParse_JSON(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "april.csv"), bankCSV)

	stdout, stderr, err := runKakeibo(t, "parse", path)
	require.NoError(t, err)

	var result struct {
		Success      bool   `json:"success"`
		BankType     string `json:"bankType"`
		TotalIncome  int64  `json:"totalIncome"`
		Transactions []any  `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result), stdout)
	assert.True(t, result.Success)
	assert.Equal(t, "bank-format-a", result.BankType)
	assert.Equal(t, int64(280000), result.TotalIncome)
	assert.Len(t, result.Transactions, 2)

	assert.Contains(t, stderr, "明細の解析")
	assert.Contains(t, stderr, "¥280,000")
}

func TestParse_CSVEntries(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "may.csv"), cardCSV)

	stdout, _, err := runKakeibo(t, "parse", "--kind", "card", "--csv", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,date,description,amount,type,category_id,source,memo", lines[0])
	assert.Contains(t, lines[1], ",2024-05-01,AMAZON,3980,expense,cat-expense-daily,card-format-a,支払方法: 1回払い")
}

func TestParse_StateSkipsSeenEntries(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "april.csv"), bankCSV)
	statePath := filepath.Join(dir, "state", "state.json")

	stdout, _, err := runKakeibo(t, "parse", "--state", statePath, path)
	require.NoError(t, err)
	var first []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &first))
	assert.Len(t, first, 2)
	assert.FileExists(t, statePath)

	stdout, stderr, err := runKakeibo(t, "parse", "--state", statePath, path)
	require.NoError(t, err)
	var second []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &second))
	assert.Empty(t, second)
	assert.Contains(t, stderr, "2 entries already seen")
}

func TestParse_OutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "april.csv"), bankCSV)
	out := filepath.Join(dir, "out.json")

	stdout, _, err := runKakeibo(t, "parse", "--output", out, path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"bankType": "bank-format-a"`)
}

func TestParse_Errors(t *testing.T) {
	dir := t.TempDir()
	bank := writeFile(t, filepath.Join(dir, "april.csv"), bankCSV)
	junk := writeFile(t, filepath.Join(dir, "junk.csv"), "foo,bar\n1,2\n")

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"undetectable", []string{"parse", junk}, "could not detect the statement format"},
		{"invalid kind", []string{"parse", "--kind", "ofx", bank}, `invalid --kind "ofx"`},
		{"wrong kind", []string{"parse", "--kind", "card", bank}, "CSVのパースに失敗しました"},
		{"missing file", []string{"parse", filepath.Join(dir, "none.csv")}, "failed to read"},
		{"bad log level", []string{"formats", "--log-level", "loud"}, `unknown log level "loud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runKakeibo(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestImport_SQLite(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bank", "bank-format-a", "april.csv"), bankCSV)
	writeFile(t, filepath.Join(root, "card", "may.csv"), cardCSV)
	dbPath := filepath.Join(t.TempDir(), "kakeibo.db")

	_, stderr, err := runKakeibo(t, "import", "--store", "sqlite", "--db", dbPath, root)
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "[1/2] april.csv")
	assert.Contains(t, stderr, "[2/2] may.csv")
	assert.Contains(t, stderr, "3 entries imported")

	_, stderr, err = runKakeibo(t, "import", "--store", "sqlite", "--db", dbPath, root)
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "0 imported, 2 already in the ledger")
	assert.Contains(t, stderr, "0 entries imported")

	db, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	defer db.Close()
	entries, err := db.ListEntries(context.Background(), store.Filter{})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestImport_DryRunWritesLedger(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, "april.csv"), bankCSV)
	out := filepath.Join(dir, "ledger.json")
	dbPath := filepath.Join(dir, "kakeibo.db")

	_, stderr, err := runKakeibo(t, "import", "--dry-run", "--store", "sqlite", "--db", dbPath, "--output", out, path)
	require.NoError(t, err, stderr)
	assert.Contains(t, stderr, "dry run")
	assert.NoFileExists(t, dbPath)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	var ledger struct {
		Entries []struct {
			Description string `json:"description"`
			CategoryID  string `json:"categoryId"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(content, &ledger))
	require.Len(t, ledger.Entries, 2)
	assert.Equal(t, "cat-income-salary", ledger.Entries[1].CategoryID)
}

func TestImport_ReportsFailedFiles(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, filepath.Join(dir, "april.csv"), bankCSV)
	bad := writeFile(t, filepath.Join(dir, "junk.csv"), "foo,bar\n1,2\n")

	_, stderr, err := runKakeibo(t, "import", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed to import")
	assert.Contains(t, stderr, "Error: could not tell whether junk.csv is a bank or card statement")
}

func TestImport_NoFiles(t *testing.T) {
	_, _, err := runKakeibo(t, "import", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no statement files found")
}
