// Package convert runs the project-to-rows pipeline and records each run in
// the catalog, which also serves repeated conversions from its cache.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/heimdex/prproj-export/internal/catalog"
	"github.com/heimdex/prproj-export/internal/flatten"
	"github.com/heimdex/prproj-export/internal/project"
	"github.com/heimdex/prproj-export/internal/rows"
	"github.com/heimdex/prproj-export/internal/timecode"
)

type Request struct {
	Filename string
	Data     []byte
	// FPS is the reference rate. Zero uses the converter default.
	FPS      int
	Sequence string
	Flatten  flatten.Options
}

type Result struct {
	ConversionID string
	SequenceID   string
	Sequence     string
	FPS          int
	Rows         []rows.Row
	Cached       bool
}

type Config struct {
	// Catalog records conversions. Nil disables history and caching.
	Catalog    catalog.CatalogService
	Logger     *slog.Logger
	DefaultFPS int
	Cache      bool
}

type Converter struct {
	catalog    catalog.CatalogService
	logger     *slog.Logger
	defaultFPS int
	cache      bool
}

func New(cfg Config) *Converter {
	fps := cfg.DefaultFPS
	if fps == 0 {
		fps = timecode.DefaultFPS
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Converter{
		catalog:    cfg.Catalog,
		logger:     logger,
		defaultFPS: fps,
		cache:      cfg.Cache && cfg.Catalog != nil,
	}
}

func (c *Converter) DefaultFPS() int {
	return c.defaultFPS
}

// Run is the pure pipeline: parse, flatten the master sequence, build
// sorted rows. It returns the parsed model alongside the rows.
func Run(raw []byte, fps int, sequence string, opts flatten.Options) (*project.Model, []rows.Row, error) {
	model, err := project.Parse(raw, project.Options{FPS: fps, MasterSequence: sequence})
	if err != nil {
		return nil, nil, err
	}
	leaves, err := flatten.Flatten(model, opts)
	if err != nil {
		return nil, nil, err
	}
	return model, rows.Build(leaves, model.FPS), nil
}

// Convert converts req.Data, consulting and updating the catalog when one is
// configured. Catalog failures are logged and never fail the conversion.
func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fps := req.FPS
	if fps == 0 {
		fps = c.defaultFPS
	}
	if err := timecode.ValidateFPS(fps); err != nil {
		return nil, err
	}

	key := OptionsKey(fps, req.Sequence, req.Flatten)
	hash := catalog.HashContent(req.Data)
	logger := c.logger.With("filename", req.Filename, "fps", fps)

	if c.cache {
		hit, err := c.catalog.Lookup(ctx, hash, key)
		if err != nil {
			logger.Warn("cache lookup failed", "error", err)
		} else if hit != nil {
			logger.Debug("serving cached conversion", "conversion_id", hit.ID)
			return &Result{
				ConversionID: hit.ID,
				SequenceID:   hit.SequenceID,
				Sequence:     hit.Sequence,
				FPS:          hit.FPS,
				Rows:         hit.Rows,
				Cached:       true,
			}, nil
		}
	}

	var record *catalog.Conversion
	if c.catalog != nil {
		record = &catalog.Conversion{
			Filename:    req.Filename,
			ContentHash: hash,
			OptionsKey:  key,
			FPS:         fps,
			Size:        int64(len(req.Data)),
		}
		if err := c.catalog.Begin(ctx, record); err != nil {
			logger.Warn("failed to record conversion", "error", err)
			record = nil
		}
	}

	model, rs, err := Run(req.Data, fps, req.Sequence, req.Flatten)
	if err != nil {
		if record != nil {
			if ferr := c.catalog.Fail(ctx, record, err); ferr != nil {
				logger.Warn("failed to record conversion failure", "error", ferr)
			}
		}
		return nil, err
	}

	master := model.Master()
	res := &Result{
		SequenceID: master.ID,
		Sequence:   master.Name,
		FPS:        fps,
		Rows:       rs,
	}
	if record != nil {
		res.ConversionID = record.ID
		if err := c.catalog.Complete(ctx, record, master.ID, master.Name, rs); err != nil {
			logger.Warn("failed to record conversion result", "error", err)
		}
	}

	logger.Info("project converted", "sequence", master.Name, "rows", len(rs), "sequences", len(model.Order))
	return res, nil
}

// Sequences lists the sequences of a project for pickers.
func (c *Converter) Sequences(ctx context.Context, raw []byte, fps int) ([]project.SequenceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fps == 0 {
		fps = c.defaultFPS
	}
	model, err := project.Parse(raw, project.Options{FPS: fps})
	if err != nil {
		return nil, err
	}
	return model.Summaries(), nil
}

// OptionsKey identifies everything besides the content that shapes the
// output, so cached rows are only reused for identical settings.
func OptionsKey(fps int, sequence string, o flatten.Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fps=%d;seq=%s", fps, strconv.Quote(sequence))
	for _, f := range []struct {
		name string
		on   bool
	}{
		{"expand", o.ExpandNested},
		{"parent", o.IncludeParent},
		{"empty", o.KeepEmptyNested},
		{"scope", o.ScopeNestedByKind},
		{"clip", o.ClipToPlacement},
	} {
		fmt.Fprintf(&b, ";%s=%t", f.name, f.on)
	}
	return b.String()
}
