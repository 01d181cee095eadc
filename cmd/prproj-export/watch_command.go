package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heimdex/prproj-export/internal/export"
	"github.com/heimdex/prproj-export/internal/logging"
	"github.com/heimdex/prproj-export/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir string
		format    string
		extended  bool
		sequence  string
		interval  time.Duration
		ff        flattenFlags
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Convert projects dropped into a folder",
		Long: "Poll a folder for .prproj files and export each one once it stops changing.\n" +
			"Exports go to --output-dir, or next to the projects when it is not set.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			dir := filepath.Clean(args[0])
			if outputDir == "" {
				outputDir = dir
			}
			outputDir, err = export.ResolveOutputDir(outputDir)
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = cfg.WatchInterval()
			}

			logger := ctx.logger(cmd.ErrOrStderr())
			conv, _, err := ctx.converter(logger, true)
			if err != nil {
				return err
			}
			repo, err := ctx.catalogRepo(logger)
			if err != nil {
				return err
			}

			proc := watcher.NewProcessor(watcher.ProcessorConfig{
				Converter: conv,
				Store:     repo,
				OutputDir: outputDir,
				Export:    export.Options{Format: f, Extended: extended},
				Flatten:   ff.options(),
				Sequence:  sequence,
				Logger:    logging.WithComponent(logger, "processor"),
			})

			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := watcher.NewPollingWatcher(logging.WithComponent(logger, "watcher"), interval)
			w.OnChange(func(path string, event watcher.EventType) {
				res, err := proc.Handle(sigCtx, path)
				if err != nil {
					logger.Error("failed to export project", "path", path, "event", event.String(), "error", err)
					return
				}
				if res.Skipped {
					return
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d rows)\n", filepath.Base(path), res.OutputPath, res.Rows)
			})

			err = w.Watch(sigCtx, dir)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for exports (default: the watched folder)")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv, json, edl")
	cmd.Flags().BoolVar(&extended, "extended", false, "Add Title and StockID columns to CSV output")
	cmd.Flags().StringVarP(&sequence, "sequence", "s", "", "Sequence to export (name or ID); defaults to the master sequence")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Polling interval (default from config)")
	ff.bind(cmd)
	return cmd
}
