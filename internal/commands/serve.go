package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rumor-ml/commons.systems/kakeibo/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the statement import HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return a.runServe(cmd)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides KAKEIBO_PORT)")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc, reg, err := a.newImporter(repo)
	if err != nil {
		return err
	}

	a.logger.Info("starting server", "store", a.cfg.Store, "port", a.cfg.Port)
	srv := server.New(svc, reg, server.Options{
		Addr:           a.cfg.Addr(),
		AllowedOrigin:  a.cfg.AllowedOrigin,
		MaxUploadBytes: a.cfg.MaxUploadBytes,
		PreviewTTL:     a.cfg.PreviewTTL,
		Logger:         a.logger,
	})
	return srv.ListenAndServe(ctx)
}
