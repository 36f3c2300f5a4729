package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/dedup"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/domain"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/importer"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/output"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/pipeline"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/registry"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/scanner"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/store/memory"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/textenc"
	"github.com/rumor-ml/commons.systems/kakeibo/internal/ui"
)

type parseOptions struct {
	kind       string
	format     string
	outputPath string
	csv        bool
	stateFile  string
}

func newParseCommand(a *app) *cobra.Command {
	var opts parseOptions

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Parse one statement file without storing it",
		Long: `Parse one statement file and write the result as JSON.

With --csv or --state the output is categorized ledger entries instead of the
raw parse result. --state keeps a fingerprint history between runs and drops
entries seen by an earlier run.`,
		Example: `  kakeibo parse rakuten-2024-04.csv
  kakeibo parse --kind card --format card-format-b saison.csv
  kakeibo parse --csv --state state.json --output april.csv rakuten-2024-04.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runParse(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "statement kind: bank or card (default: detect)")
	cmd.Flags().StringVar(&opts.format, "format", "", "format tag, e.g. bank-format-a (default: detect)")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.csv, "csv", false, "write ledger entries as CSV")
	cmd.Flags().StringVar(&opts.stateFile, "state", "", "deduplication state file")
	return cmd
}

func (a *app) runParse(cmd *cobra.Command, path string, opts parseOptions) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	content, enc := textenc.Decode(raw)

	reg := registry.New(registry.WithLogger(a.logger))
	kind, err := resolveKind(reg, opts.kind, content)
	if err != nil {
		return err
	}

	ui.Header("明細の解析")
	ui.Info(fmt.Sprintf("File: %s (%s)", path, enc))

	var (
		parsed  any
		commit  func(*importer.Service) ([]domain.Entry, error)
		success bool
	)
	switch kind {
	case scanner.KindBank:
		result := reg.ParseBankTag(content, opts.format)
		parsed, success = result, len(result.Transactions) > 0 || result.Success
		printRowErrors(result.Errors)
		ui.Success(fmt.Sprintf("%s: %d transactions, income %s, expense %s",
			result.BankType, len(result.Transactions), ui.Yen(result.TotalIncome), ui.Yen(result.TotalExpense)))
		commit = func(svc *importer.Service) ([]domain.Entry, error) {
			res, err := svc.CommitBank(cmd.Context(), result)
			if err != nil {
				return nil, err
			}
			return res.Entries, nil
		}
	case scanner.KindCard:
		result := reg.ParseCardTag(content, opts.format)
		parsed, success = result, len(result.Transactions) > 0 || result.Success
		printRowErrors(result.Errors)
		ui.Success(fmt.Sprintf("%s: %d transactions, expense %s, refund %s",
			result.CardType, len(result.Transactions), ui.Yen(result.TotalExpense), ui.Yen(result.TotalRefund)))
		commit = func(svc *importer.Service) ([]domain.Entry, error) {
			res, err := svc.CommitCard(cmd.Context(), result)
			if err != nil {
				return nil, err
			}
			return res.Entries, nil
		}
	}

	if !success {
		return errors.New(importer.MsgParseFailed)
	}

	writeOpts := output.WriteOptions{Format: output.FormatJSON, FilePath: opts.outputPath, Stdout: cmd.OutOrStdout()}
	if !opts.csv && opts.stateFile == "" {
		return output.WriteToFile(parsed, writeOpts)
	}

	engine, err := loadRules(a.cfg)
	if err != nil {
		return err
	}
	entries, err := commit(importer.New(reg, memory.New(), engine, importer.WithLogger(a.logger)))
	if err != nil {
		return fmt.Errorf("failed to build entries: %w", err)
	}

	if opts.stateFile != "" {
		if entries, err = a.filterSeen(entries, opts.stateFile); err != nil {
			return err
		}
	}

	if opts.csv {
		writeOpts.Format = output.FormatCSV
	}
	return output.WriteToFile(entries, writeOpts)
}

// resolveKind honours --kind, otherwise detects from content
func resolveKind(reg *registry.Registry, flag, content string) (scanner.Kind, error) {
	if flag != "" {
		kind, ok := scanner.ParseKind(flag)
		if !ok {
			return "", fmt.Errorf("invalid --kind %q (must be bank or card)", flag)
		}
		return kind, nil
	}
	kind := pipeline.DetectKind(reg, content)
	if kind == "" {
		return "", errors.New("could not detect the statement format; select it with --kind and --format")
	}
	return kind, nil
}

// filterSeen drops entries whose fingerprint is in the state file and records
// the rest. Duplicates within this run are all kept.
func (a *app) filterSeen(entries []domain.Entry, stateFile string) ([]domain.Entry, error) {
	state, err := dedup.LoadOrNewState(stateFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load state file %s: %w", stateFile, err)
	}

	fresh := make([]domain.Entry, 0, len(entries))
	for _, e := range entries {
		if !state.IsDuplicate(e.Fingerprint) {
			fresh = append(fresh, e)
		}
	}

	now := time.Now()
	for _, e := range fresh {
		if err := state.Record(e.Fingerprint, e.ID, e.Source, now); err != nil {
			return nil, fmt.Errorf("failed to record %s: %w", e.ID, err)
		}
	}
	if err := dedup.SaveState(state, stateFile); err != nil {
		return nil, fmt.Errorf("failed to save state file %s: %w", stateFile, err)
	}

	if skipped := len(entries) - len(fresh); skipped > 0 {
		ui.Warning(fmt.Sprintf("%d entries already seen in %s", skipped, stateFile))
	}
	a.logger.Debug("state updated", "file", stateFile, "new", len(fresh), "fingerprints", len(state.Fingerprints))
	return fresh, nil
}
