package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/config"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/output"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/parser"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/pipeline"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/scanner"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/ui"
)

// maxRowErrorsShown caps the row diagnostics printed per file
const maxRowErrorsShown = 5

type importOptions struct {
	kind       string
	format     string
	store      string
	dbPath     string
	dryRun     bool
	outputPath string
}

func newImportCommand(a *app) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import PATH...",
		Short: "Import statement files into the ledger",
		Long: `Import statement files into the configured ledger store.

A directory is scanned for {bank|card}/[{format}/]*.csv. A file is imported
with --kind and --format when given, otherwise its format is detected.
Rows already present in the store are skipped.`,
		Example: `  kakeibo import ~/statements
  kakeibo import --store sqlite --db kakeibo.db bank/rakuten-2024-04.csv
  kakeibo import --dry-run --output preview.json ~/statements`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runImport(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "statement kind for file arguments: bank or card")
	cmd.Flags().StringVar(&opts.format, "format", "", "format tag for file arguments")
	cmd.Flags().StringVar(&opts.store, "store", "", "store backend: memory, sqlite or firestore (overrides KAKEIBO_STORE)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "sqlite database path (overrides KAKEIBO_DATABASE_PATH)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "parse and categorize without writing to the store")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "write the imported entries as JSON to this file")
	return cmd
}

func (a *app) runImport(cmd *cobra.Command, paths []string, opts importOptions) error {
	if opts.store != "" {
		a.cfg.Store = opts.store
	}
	if opts.dbPath != "" {
		a.cfg.DatabasePath = opts.dbPath
	}
	if opts.dryRun {
		a.cfg.Store = config.StoreMemory
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	files, err := collectFiles(paths, opts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no statement files found in %v", paths)
	}

	ctx := cmd.Context()
	repo, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, reg, err := a.newImporter(repo)
	if err != nil {
		return err
	}

	title := "明細のインポート"
	if opts.dryRun {
		title += " (dry run)"
	}
	ui.Header(title)

	p := pipeline.New(svc, reg, pipeline.WithLogger(a.logger), pipeline.WithProgress(printProgress))
	summary, err := p.ProcessFiles(ctx, files)
	if err != nil {
		return err
	}

	for _, f := range summary.Files {
		printRowErrors(f.Errors)
	}
	income, expense := summary.Ledger.Totals()
	ui.BlueText(fmt.Sprintf("%d entries imported: income %s, expense %s",
		len(summary.Ledger.GetEntries()), ui.Yen(income), ui.Yen(expense)))

	if opts.outputPath != "" {
		if err := output.WriteToFile(summary.Ledger, output.WriteOptions{FilePath: opts.outputPath}); err != nil {
			return err
		}
		ui.Success(fmt.Sprintf("Wrote %s", opts.outputPath))
	}

	if failed := summary.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d files failed to import", failed, len(summary.Files))
	}
	return nil
}

// collectFiles scans directories and turns file arguments into scan results
func collectFiles(paths []string, opts importOptions) ([]scanner.ScanResult, error) {
	var kind scanner.Kind
	if opts.kind != "" {
		k, ok := scanner.ParseKind(opts.kind)
		if !ok {
			return nil, fmt.Errorf("invalid --kind %q (must be bank or card)", opts.kind)
		}
		kind = k
	}

	var files []scanner.ScanResult
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, scanner.ScanResult{Path: path, Kind: kind, Format: opts.format})
			continue
		}
		found, err := scanner.New(path).Scan()
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func printProgress(e pipeline.FileEvent) {
	switch e.Status {
	case pipeline.StatusProcessing:
		ui.Step(e.Index, e.Total, e.FileName)
	case pipeline.StatusCompleted:
		ui.Success(fmt.Sprintf("%d imported, %d already in the ledger", e.Imported, e.Skipped))
	case pipeline.StatusFailed:
		ui.Error(e.Err.Error())
	}
}

// printRowErrors prints row diagnostics, which arrive either as parse errors
// or as already formatted strings
func printRowErrors[T parser.ParseError | string](errs []T) {
	for i, e := range errs {
		if i == maxRowErrorsShown {
			ui.Warning(fmt.Sprintf("... %d more", len(errs)-maxRowErrorsShown))
			return
		}
		ui.Warning(fmt.Sprint(e))
	}
}
