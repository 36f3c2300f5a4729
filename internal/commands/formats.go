package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/registry"
)

func newFormatsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported statement formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.New(registry.WithLogger(a.logger))
			printFormats(cmd.OutOrStdout(), "Banks", reg.ListBanks())
			printFormats(cmd.OutOrStdout(), "Cards", reg.ListCards())
			return nil
		},
	}
}

func printFormats(w io.Writer, title string, formats []registry.FormatInfo) {
	fmt.Fprintf(w, "%s:\n", title)
	for _, f := range formats {
		fmt.Fprintf(w, "  %-14s %s\n", f.Type, f.Name)
	}
}
