package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heimdex/prproj-export/internal/api"
	"github.com/heimdex/prproj-export/internal/config"
	"github.com/heimdex/prproj-export/internal/logging"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP conversion service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			startTime := time.Now()
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if port == 0 {
				port = cfg.Port()
			}

			logger := logging.NewLogger(ctx.logLevel())
			logger.Info("starting prproj-export service", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir()))

			conv, svc, err := ctx.converter(logger, true)
			if err != nil {
				return err
			}
			repo, err := ctx.catalogRepo(logger)
			if err != nil {
				return err
			}

			authToken, err := svc.EnsureAuthToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to ensure auth token: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintln(out, "╔═══════════════════════════════════════════════════════════╗")
			fmt.Fprintf(out, "║  %-57s║\n", "PRPROJ EXPORT v"+config.Version)
			fmt.Fprintln(out, "╠═══════════════════════════════════════════════════════════╣")
			fmt.Fprintf(out, "║  API URL:    http://127.0.0.1:%-28d║\n", port)
			fmt.Fprintf(out, "║  Auth Token: %-45s║\n", logging.SanitizeToken(authToken))
			fmt.Fprintf(out, "║  Database:   %-45s║\n", truncate(logging.SanitizePath(cfg.DBPath()), 45))
			fmt.Fprintln(out, "╚═══════════════════════════════════════════════════════════╝")
			fmt.Fprintln(out)

			apiServer := api.NewServer(api.ServerConfig{
				Port:           port,
				Converter:      conv,
				CatalogService: svc,
				Repository:     repo,
				Logger:         logger,
				StartTime:      startTime,
				Version:        config.Version,
				MaxUploadBytes: cfg.MaxUploadBytes(),
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- apiServer.Start()
			}()

			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			select {
			case <-sigCtx.Done():
				logger.Info("received shutdown signal")
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("HTTP server error: %w", err)
				}
				return nil
			}

			logger.Info("initiating graceful shutdown")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := apiServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown HTTP server", "error", err)
			}

			logger.Info("shutdown complete")
			return nil
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "..." + string(r[len(r)-n+3:])
}

