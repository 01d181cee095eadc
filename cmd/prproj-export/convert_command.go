package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/heimdex/prproj-export/internal/convert"
	"github.com/heimdex/prproj-export/internal/export"
)

type convertFlags struct {
	sequence  string
	fps       int
	format    string
	extended  bool
	output    string
	outputDir string
	noCache   bool
	jobs      int
	flatten   flattenFlags
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var flags convertFlags

	cmd := &cobra.Command{
		Use:   "convert <project.prproj>...",
		Short: "Convert projects to clip lists",
		Long: "Convert one or more Premiere Pro projects. A single project is written to\n" +
			"--output or stdout; several projects need --output-dir. Use - to read stdin.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(flags.format)
			if err != nil {
				return err
			}
			logger := ctx.logger(cmd.ErrOrStderr())
			conv, _, err := ctx.converter(logger, !flags.noCache)
			if err != nil {
				return err
			}
			opts := export.Options{Format: format, Extended: flags.extended}

			if len(args) == 1 && flags.outputDir == "" {
				return convertSingle(cmd, conv, args[0], flags, opts)
			}
			if flags.output != "" {
				return errors.New("--output takes a single project; use --output-dir for several")
			}
			if flags.outputDir == "" {
				return errors.New("converting several projects needs --output-dir")
			}
			return convertMany(cmd, conv, args, flags, opts)
		},
	}

	cmd.Flags().StringVarP(&flags.sequence, "sequence", "s", "", "Sequence to export (name or ID); defaults to the master sequence")
	cmd.Flags().IntVar(&flags.fps, "fps", 0, "Frame rate for timecodes (default from config)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "csv", "Output format: csv, json, edl")
	cmd.Flags().BoolVar(&flags.extended, "extended", false, "Add Title and StockID columns to CSV output")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file for a single project (default stdout)")
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for exports when converting several projects")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "Always reparse even when an identical conversion is cached")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 4, "Projects converted in parallel")
	flags.flatten.bind(cmd)

	return cmd
}

func readInput(cmd *cobra.Command, path string) (string, []byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return "stdin.prproj", data, err
	}
	data, err := os.ReadFile(path)
	return filepath.Base(path), data, err
}

func runConversion(ctx context.Context, cmd *cobra.Command, conv *convert.Converter, path string, flags convertFlags) (*convert.Result, error) {
	name, data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	res, err := conv.Convert(ctx, convert.Request{
		Filename: name,
		Data:     data,
		FPS:      flags.fps,
		Sequence: flags.sequence,
		Flatten:  flags.flatten.options(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

func convertSingle(cmd *cobra.Command, conv *convert.Converter, path string, flags convertFlags, opts export.Options) error {
	res, err := runConversion(cmd.Context(), cmd, conv, path, flags)
	if err != nil {
		return err
	}
	opts.Title, opts.FPS = res.Sequence, res.FPS

	if flags.output == "" || flags.output == "-" {
		out := cmd.OutOrStdout()
		if opts.Format == export.FormatCSV && isTerminal(out) {
			_, err := fmt.Fprintln(out, renderRows(res.Rows, opts.Extended))
			return err
		}
		return export.Write(out, res.Rows, opts)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, res.Rows, opts); err != nil {
		return err
	}
	if err := os.WriteFile(flags.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(res.Rows), flags.output)
	return nil
}

func convertMany(cmd *cobra.Command, conv *convert.Converter, paths []string, flags convertFlags, opts export.Options) error {
	outDir, err := export.ResolveOutputDir(flags.outputDir)
	if err != nil {
		return err
	}
	jobs := flags.jobs
	if jobs < 1 {
		jobs = 1
	}

	stderr := cmd.ErrOrStderr()
	barWriter := io.Discard
	if isTerminal(stderr) {
		barWriter = stderr
	}
	bar := progressbar.NewOptions(
		len(paths),
		progressbar.OptionSetWriter(barWriter),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Converting projects..."),
	)

	var (
		mu      sync.Mutex
		written = make(map[string]string, len(paths))
	)

	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)
	for _, path := range paths {
		g.Go(func() error {
			defer bar.Add(1)

			res, err := runConversion(gctx, cmd, conv, path, flags)
			if err != nil {
				return err
			}
			o := opts
			o.Title, o.FPS = res.Sequence, res.FPS

			var buf bytes.Buffer
			if err := export.Write(&buf, res.Rows, o); err != nil {
				return err
			}
			target := filepath.Join(outDir, export.OutputName(path, flags.sequence, opts.Format))

			mu.Lock()
			if prev, dup := written[target]; dup {
				mu.Unlock()
				return fmt.Errorf("%s and %s both export to %s", prev, path, target)
			}
			written[target] = path
			mu.Unlock()

			return os.WriteFile(target, buf.Bytes(), 0o644)
		})
	}
	err = g.Wait()
	bar.Finish()
	if err != nil {
		return err
	}

	fmt.Fprintf(stderr, "\nconverted %d projects into %s\n", len(paths), outDir)
	return nil
}
