// Package rows turns flattened clips into export records and orders them.
package rows

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/heimdex/prproj-export/internal/flatten"
	"github.com/heimdex/prproj-export/internal/project"
	"github.com/heimdex/prproj-export/internal/timecode"
)

// Header is the fixed CSV column order.
var Header = []string{"Type", "Track", "Name", "ClipType", "Source", "StartTC", "EndTC"}

// ExtendedHeader adds the derived stock-footage columns.
var ExtendedHeader = []string{"Type", "Track", "Name", "Title", "ClipType", "Source", "StockID", "StartTC", "EndTC"}

// Row is one exported clip. It holds no reference into the project model.
type Row struct {
	Type       string `json:"type"`
	Track      int    `json:"track"`
	Name       string `json:"name"`
	ClipType   string `json:"clip_type"`
	Source     string `json:"source"`
	StartTC    string `json:"start_tc"`
	EndTC      string `json:"end_tc"`
	Title      string `json:"title,omitempty"`
	StockID    string `json:"stock_id,omitempty"`
	StartFrame int64  `json:"start_frame"`
	EndFrame   int64  `json:"end_frame"`
}

func (r Row) Record() []string {
	return []string{r.Type, strconv.Itoa(r.Track), r.Name, r.ClipType, r.Source, r.StartTC, r.EndTC}
}

func (r Row) ExtendedRecord() []string {
	return []string{r.Type, strconv.Itoa(r.Track), r.Name, r.Title, r.ClipType, r.Source, r.StockID, r.StartTC, r.EndTC}
}

// Build maps leaves to rows with display timecodes at fps and returns them
// in export order.
func Build(leaves []flatten.Leaf, fps int) []Row {
	out := make([]Row, 0, len(leaves))
	for _, l := range leaves {
		title, stockID := DeriveTitle(l.Clip.Name)
		out = append(out, Row{
			Type:       l.Kind.String(),
			Track:      l.TrackIndex,
			Name:       l.Clip.Name,
			ClipType:   l.Clip.ClipType,
			Source:     l.Clip.Source,
			StartTC:    timecode.FramesToDisplay(l.StartFrame, fps),
			EndTC:      timecode.FramesToDisplay(l.EndFrame, fps),
			Title:      title,
			StockID:    stockID,
			StartFrame: l.StartFrame,
			EndFrame:   l.EndFrame,
		})
	}
	Sort(out)
	return out
}

// Sort orders video before audio, then by start frame. Equal keys keep their
// traversal order.
func Sort(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := cmp.Compare(typeRank(a.Type), typeRank(b.Type)); c != 0 {
			return c
		}
		return cmp.Compare(a.StartFrame, b.StartFrame)
	})
}

func typeRank(t string) int {
	switch t {
	case project.Video.String():
		return 0
	case project.Audio.String():
		return 1
	default:
		return 2
	}
}
