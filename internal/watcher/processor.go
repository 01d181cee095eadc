package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/heimdex/prproj-export/internal/catalog"
	"github.com/heimdex/prproj-export/internal/convert"
	"github.com/heimdex/prproj-export/internal/export"
	"github.com/heimdex/prproj-export/internal/flatten"
)

// WatchStore remembers which project files have been converted.
type WatchStore interface {
	GetWatchedFile(ctx context.Context, path string) (*catalog.WatchedFile, error)
	UpsertWatchedFile(ctx context.Context, w *catalog.WatchedFile) error
}

type ProcessorConfig struct {
	Converter *convert.Converter
	Store     WatchStore
	OutputDir string
	Export    export.Options
	Flatten   flatten.Options
	Sequence  string
	Logger    *slog.Logger
}

// Processor converts one dropped project and writes the export next to the
// other outputs.
type Processor struct {
	cfg ProcessorConfig
}

func NewProcessor(cfg ProcessorConfig) *Processor {
	if cfg.Export.Format == "" {
		cfg.Export.Format = export.FormatCSV
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{cfg: cfg}
}

// Outcome describes what Handle did with a file.
type Outcome struct {
	OutputPath   string
	ConversionID string
	Rows         int
	Skipped      bool
}

// Handle converts path unless the store shows the same size and mtime were
// already processed.
func (p *Processor) Handle(ctx context.Context, path string) (*Outcome, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	logger := p.cfg.Logger.With("path", path)

	if p.cfg.Store != nil {
		prev, err := p.cfg.Store.GetWatchedFile(ctx, path)
		if err != nil {
			logger.Warn("failed to read watch state", "error", err)
		} else if prev != nil && !prev.Changed(info.Size(), info.ModTime()) {
			logger.Debug("project unchanged since last conversion")
			return &Outcome{OutputPath: prev.OutputPath, ConversionID: prev.ConversionID, Skipped: true}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	res, err := p.cfg.Converter.Convert(ctx, convert.Request{
		Filename: filepath.Base(path),
		Data:     data,
		Sequence: p.cfg.Sequence,
		Flatten:  p.cfg.Flatten,
	})
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", filepath.Base(path), err)
	}

	opts := p.cfg.Export
	opts.Title = res.Sequence
	opts.FPS = res.FPS

	outPath := filepath.Join(p.cfg.OutputDir, export.OutputName(path, "", opts.Format))
	if err := writeAtomic(outPath, func(f *os.File) error {
		return export.Write(f, res.Rows, opts)
	}); err != nil {
		return nil, fmt.Errorf("write %s: %w", outPath, err)
	}

	if p.cfg.Store != nil {
		err := p.cfg.Store.UpsertWatchedFile(ctx, &catalog.WatchedFile{
			Path:         path,
			Size:         info.Size(),
			Mtime:        info.ModTime(),
			ConversionID: res.ConversionID,
			OutputPath:   outPath,
			ProcessedAt:  time.Now(),
		})
		if err != nil {
			logger.Warn("failed to record watch state", "error", err)
		}
	}

	logger.Info("project exported", "output", outPath, "rows", len(res.Rows), "cached", res.Cached)
	return &Outcome{OutputPath: outPath, ConversionID: res.ConversionID, Rows: len(res.Rows)}, nil
}

// writeAtomic writes through a temporary file in the target directory so
// readers never observe a partial export.
func writeAtomic(path string, write func(f *os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
