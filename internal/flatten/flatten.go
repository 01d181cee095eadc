// Package flatten expands a project's nested sequence graph into leaf clips
// positioned on the master sequence's timeline.
//
// Traversal is iterative with an explicit stack, so nesting depth is bounded
// only by memory. A sequence that would be re-entered while it is still being
// expanded is reported as a cycle; visiting the same sequence twice through
// separate placements is fine and yields its clips twice.
package flatten

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/heimdex/prproj-export/internal/project"
)

// Options mirror the switches of the original export tool.
type Options struct {
	// ExpandNested replaces nested placements by the clips inside them. When
	// false a nested placement is emitted as one parent leaf.
	ExpandNested bool
	// IncludeParent emits the parent leaf in front of its expanded children.
	IncludeParent bool
	// KeepEmptyNested emits the parent leaf when expansion produced nothing.
	KeepEmptyNested bool
	// ScopeNestedByKind expands only nested tracks of the placement's kind:
	// a nest on a video track contributes its video clips, one on an audio
	// track its audio clips.
	ScopeNestedByKind bool
	// ClipToPlacement trims nested clips to the part of the nested timeline
	// that the placement actually shows and drops clips outside it.
	ClipToPlacement bool
}

func DefaultOptions() Options {
	return Options{ExpandNested: true}
}

// Leaf is one flattened clip in master-sequence frames. TrackIndex is the
// index of the master track the clip ends up on.
type Leaf struct {
	Kind       project.TrackKind
	TrackIndex int
	Clip       project.MediaClip
	StartFrame int64
	EndFrame   int64
	Nested     bool
	Depth      int
}

type frame struct {
	seq    *project.Sequence
	offset int64
	depth  int

	nested    bool
	topIndex  int
	scopeKind project.TrackKind

	windowed bool
	lo, hi   int64

	emittedAt int
	parent    Leaf

	track, item int
}

// Flatten walks model from its master sequence. It is all-or-nothing: on any
// error no leaves are returned.
func Flatten(model *project.Model, opts Options) ([]Leaf, error) {
	if model == nil {
		return nil, &project.MalformedProjectError{Reason: "no project model"}
	}
	master := model.Master()
	if master == nil {
		return nil, &project.DanglingReferenceError{Ref: model.MasterID, From: "master sequence"}
	}

	var out []Leaf
	onPath := map[string]bool{master.ID: true}
	path := []string{master.ID}
	stack := []*frame{{seq: master}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]

		if f.track >= len(f.seq.Tracks) {
			stack = stack[:len(stack)-1]
			delete(onPath, f.seq.ID)
			path = path[:len(path)-1]
			if f.nested && opts.KeepEmptyNested && !opts.IncludeParent && len(out) == f.emittedAt {
				out = append(out, f.parent)
			}
			continue
		}

		tr := f.seq.Tracks[f.track]
		if (f.nested && opts.ScopeNestedByKind && tr.Kind != f.scopeKind) || f.item >= len(tr.Placements) {
			f.track++
			f.item = 0
			continue
		}

		pl := tr.Placements[f.item]
		f.item++

		trackIndex := tr.Index
		if f.nested {
			trackIndex = f.topIndex
		}
		start, end := f.offset+pl.StartFrame, f.offset+pl.EndFrame
		if f.windowed {
			start, end = max(start, f.lo), min(end, f.hi)
			if start >= end {
				continue
			}
		}

		switch pl.Target.Kind {
		case project.TargetMedia:
			if pl.Target.Clip == nil {
				return nil, &project.MalformedProjectError{Reason: "media placement without clip in sequence " + strconv.Quote(f.seq.Name)}
			}
			out = append(out, Leaf{
				Kind:       tr.Kind,
				TrackIndex: trackIndex,
				Clip:       *pl.Target.Clip,
				StartFrame: start,
				EndFrame:   end,
				Depth:      f.depth,
			})

		case project.TargetNested:
			ref := pl.Target.Nested
			if ref == nil {
				return nil, &project.MalformedProjectError{Reason: "nested placement without reference in sequence " + strconv.Quote(f.seq.Name)}
			}
			child, ok := model.Sequences[ref.SequenceID]
			if !ok {
				return nil, &project.DanglingReferenceError{Ref: ref.SequenceID, From: "sequence " + strconv.Quote(f.seq.Name)}
			}

			parent := Leaf{
				Kind:       tr.Kind,
				TrackIndex: trackIndex,
				Clip: project.MediaClip{
					Name:     child.Name,
					Source:   child.Name,
					ClipType: project.ClipTypeNested,
				},
				StartFrame: start,
				EndFrame:   end,
				Nested:     true,
				Depth:      f.depth,
			}

			if !opts.ExpandNested {
				out = append(out, parent)
				continue
			}
			if onPath[child.ID] {
				return nil, &project.CyclicSequenceReferenceError{
					SequenceID: child.ID,
					Path:       append(slices.Clone(path), child.ID),
				}
			}
			if opts.IncludeParent {
				out = append(out, parent)
			}

			onPath[child.ID] = true
			path = append(path, child.ID)
			stack = append(stack, &frame{
				seq:       child,
				offset:    f.offset + pl.StartFrame - ref.InPointFrames,
				depth:     f.depth + 1,
				nested:    true,
				topIndex:  trackIndex,
				scopeKind: tr.Kind,
				windowed:  opts.ClipToPlacement,
				lo:        start,
				hi:        end,
				emittedAt: len(out),
				parent:    parent,
			})

		default:
			return nil, &project.MalformedProjectError{Reason: fmt.Sprintf("placement with unknown target kind %d", pl.Target.Kind)}
		}
	}

	return out, nil
}
