package main

import (
	"github.com/spf13/cobra"

	"github.com/heimdex/prproj-export/internal/flatten"
)

type flattenFlags struct {
	expandNested    bool
	includeParent   bool
	keepEmpty       bool
	scopeByKind     bool
	clipToPlacement bool
}

func (f *flattenFlags) bind(cmd *cobra.Command) {
	def := flatten.DefaultOptions()
	flags := cmd.Flags()
	flags.BoolVar(&f.expandNested, "expand-nested", def.ExpandNested, "Replace nested sequences by the clips inside them")
	flags.BoolVar(&f.includeParent, "include-parent", def.IncludeParent, "Also list the nested sequence placement itself")
	flags.BoolVar(&f.keepEmpty, "keep-empty", def.KeepEmptyNested, "List nested placements whose expansion is empty")
	flags.BoolVar(&f.scopeByKind, "scope-by-kind", def.ScopeNestedByKind, "Only expand nested tracks matching the placement's track kind")
	flags.BoolVar(&f.clipToPlacement, "clip-to-placement", def.ClipToPlacement, "Trim nested clips to the visible part of the placement")
}

func (f *flattenFlags) options() flatten.Options {
	return flatten.Options{
		ExpandNested:      f.expandNested,
		IncludeParent:     f.includeParent,
		KeepEmptyNested:   f.keepEmpty,
		ScopeNestedByKind: f.scopeByKind,
		ClipToPlacement:   f.clipToPlacement,
	}
}
