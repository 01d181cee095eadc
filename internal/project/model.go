// Package project decodes Premiere Pro project documents into an immutable
// structural model of sequences, tracks and clip placements.
package project

// TrackKind is the media type of a track.
type TrackKind int

const (
	Video TrackKind = iota
	Audio
)

func (k TrackKind) String() string {
	switch k {
	case Video:
		return "Video"
	case Audio:
		return "Audio"
	default:
		return "Unknown"
	}
}

// TargetKind tags the case held by a Target.
type TargetKind int

const (
	TargetMedia TargetKind = iota + 1
	TargetNested
)

// Target is what a placement points at: exactly one of Clip or Nested is set,
// selected by Kind.
type Target struct {
	Kind   TargetKind
	Clip   *MediaClip
	Nested *NestedRef
}

func MediaTarget(c MediaClip) Target {
	return Target{Kind: TargetMedia, Clip: &c}
}

func NestedTarget(ref NestedRef) Target {
	return Target{Kind: TargetNested, Nested: &ref}
}

// MediaClip is a leaf clip backed by source media (or generated content).
type MediaClip struct {
	Name     string
	Source   string
	ClipType string
}

// NestedRef places another sequence. InPointFrames is the position inside the
// nested sequence's own timeline that lines up with the placement start.
type NestedRef struct {
	SequenceID    string
	InPointFrames int64
}

// Placement occupies [StartFrame, EndFrame) on its track.
type Placement struct {
	StartFrame int64
	EndFrame   int64
	Target     Target
}

type Track struct {
	Kind       TrackKind
	Index      int
	Placements []Placement
}

type Sequence struct {
	ID             string
	Name           string
	Tracks         []*Track
	TicksPerFrame  int64
	DurationFrames int64
}

// Model is the parsed project. Order holds sequence ids in document order.
type Model struct {
	Sequences     map[string]*Sequence
	Order         []string
	MasterID      string
	SchemaVersion int
	FPS           int
}

func (m *Model) Master() *Sequence {
	return m.Sequences[m.MasterID]
}

// FindSequence looks a sequence up by id, then by name.
func (m *Model) FindSequence(key string) *Sequence {
	if s, ok := m.Sequences[key]; ok {
		return s
	}
	for _, id := range m.Order {
		if s := m.Sequences[id]; s.Name == key {
			return s
		}
	}
	return nil
}

// SequenceInfo summarizes a sequence for listings.
type SequenceInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	VideoTracks    int    `json:"video_tracks"`
	AudioTracks    int    `json:"audio_tracks"`
	Placements     int    `json:"placements"`
	NestedRefs     int    `json:"nested_refs"`
	DurationFrames int64  `json:"duration_frames"`
	Master         bool   `json:"master"`
}

// Summaries lists every sequence in document order.
func (m *Model) Summaries() []SequenceInfo {
	out := make([]SequenceInfo, 0, len(m.Order))
	for _, id := range m.Order {
		s := m.Sequences[id]
		info := SequenceInfo{
			ID:             s.ID,
			Name:           s.Name,
			DurationFrames: s.DurationFrames,
			Master:         id == m.MasterID,
		}
		for _, tr := range s.Tracks {
			if tr.Kind == Video {
				info.VideoTracks++
			} else {
				info.AudioTracks++
			}
			info.Placements += len(tr.Placements)
			for _, p := range tr.Placements {
				if p.Target.Kind == TargetNested {
					info.NestedRefs++
				}
			}
		}
		out = append(out, info)
	}
	return out
}
