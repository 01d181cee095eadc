package project

import (
	"bytes"
	"cmp"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/heimdex/prproj-export/internal/timecode"
)

const (
	RootElement      = "PremiereData"
	MinSchemaVersion = 1
	MaxSchemaVersion = 3
)

// Options controls parsing.
type Options struct {
	// FPS is the reference frame rate positions are converted to. Zero means
	// timecode.DefaultFPS.
	FPS int
	// MasterSequence selects the top-level sequence by name or ObjectUID.
	// Empty picks the first sequence that no other sequence nests.
	MasterSequence string
}

// Parse decodes raw project bytes into a Model.
func Parse(raw []byte, opts Options) (*Model, error) {
	fps := opts.FPS
	if fps == 0 {
		fps = timecode.DefaultFPS
	}
	if err := timecode.ValidateFPS(fps); err != nil {
		return nil, err
	}

	doc, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	root, err := xmlquery.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, malformed("invalid XML", err)
	}

	p := &parser{
		fps:   fps,
		byID:  make(map[string]*xmlquery.Node),
		byUID: make(map[string]*xmlquery.Node),
	}
	return p.parse(root, opts.MasterSequence)
}

type parser struct {
	fps   int
	byID  map[string]*xmlquery.Node
	byUID map[string]*xmlquery.Node
}

type rawTrack struct {
	xmlIndex int
	kind     TrackKind
	node     *xmlquery.Node
}

func (p *parser) parse(doc *xmlquery.Node, master string) (*Model, error) {
	rootEl := xmlquery.FindOne(doc, "/*")
	if rootEl == nil {
		return nil, malformed("document has no root element", nil)
	}

	version, err := checkSchema(rootEl)
	if err != nil {
		return nil, err
	}

	for _, n := range xmlquery.Find(rootEl, "//*[@ObjectID]") {
		p.byID[n.SelectAttr("ObjectID")] = n
	}
	for _, n := range xmlquery.Find(rootEl, "//*[@ObjectUID]") {
		p.byUID[n.SelectAttr("ObjectUID")] = n
	}

	model := &Model{
		Sequences:     make(map[string]*Sequence),
		SchemaVersion: version,
		FPS:           p.fps,
	}

	for _, el := range xmlquery.Find(rootEl, "//Sequence[@ObjectUID]") {
		seq, err := p.parseSequence(el)
		if err != nil {
			return nil, err
		}
		if _, dup := model.Sequences[seq.ID]; dup {
			continue
		}
		model.Sequences[seq.ID] = seq
		model.Order = append(model.Order, seq.ID)
	}

	if len(model.Order) == 0 {
		return nil, malformed("no sequences found", nil)
	}

	masterID, err := selectMaster(model, master)
	if err != nil {
		return nil, err
	}
	model.MasterID = masterID

	return model, nil
}

func checkSchema(root *xmlquery.Node) (int, error) {
	if root.Data != RootElement {
		return 0, &UnsupportedSchemaError{Root: root.Data}
	}
	raw := strings.TrimSpace(root.SelectAttr("Version"))
	if raw == "" {
		return 0, &UnsupportedSchemaError{Root: root.Data}
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < MinSchemaVersion || v > MaxSchemaVersion {
		return 0, &UnsupportedSchemaError{Root: root.Data, Version: raw}
	}
	return v, nil
}

func selectMaster(m *Model, want string) (string, error) {
	if want != "" {
		s := m.FindSequence(want)
		if s == nil {
			return "", malformed(fmt.Sprintf("sequence %q not found", want), nil)
		}
		return s.ID, nil
	}

	nested := make(map[string]bool)
	for _, s := range m.Sequences {
		for _, tr := range s.Tracks {
			for _, pl := range tr.Placements {
				if pl.Target.Kind == TargetNested {
					nested[pl.Target.Nested.SequenceID] = true
				}
			}
		}
	}
	for _, id := range m.Order {
		if !nested[id] {
			return id, nil
		}
	}
	return m.Order[0], nil
}

func (p *parser) parseSequence(el *xmlquery.Node) (*Sequence, error) {
	seq := &Sequence{
		ID:   el.SelectAttr("ObjectUID"),
		Name: childText(el, "Name"),
	}
	if seq.Name == "" {
		seq.Name = seq.ID
	}

	groups := xmlquery.FindOne(el, "TrackGroups")
	if groups == nil {
		return nil, malformed(fmt.Sprintf("sequence %q has no track list", seq.Name), nil)
	}

	var raws []rawTrack
	for _, tg := range xmlquery.Find(groups, "TrackGroup") {
		ref := ""
		for _, slot := range []string{"First", "Second"} {
			if s := xmlquery.FindOne(tg, slot); s != nil {
				if r := refOf(s); r != "" {
					ref = r
				}
			}
		}
		if ref == "" {
			continue
		}
		group := p.lookup(ref)
		if group == nil {
			return nil, &DanglingReferenceError{Ref: ref, From: "track group of sequence " + strconv.Quote(seq.Name)}
		}

		if group.Data == "VideoTrackGroup" && seq.TicksPerFrame == 0 {
			if v, err := parseTicks(childText(group, "TrackGroup/FrameRate")); err == nil {
				seq.TicksPerFrame = v
			}
		}

		tracks := xmlquery.FindOne(group, "TrackGroup/Tracks")
		if tracks == nil {
			continue
		}
		for _, tr := range xmlquery.Find(tracks, "Track") {
			ref := refOf(tr)
			if ref == "" {
				continue
			}
			target := p.lookup(ref)
			if target == nil {
				return nil, &DanglingReferenceError{Ref: ref, From: "track list of sequence " + strconv.Quote(seq.Name)}
			}
			idx, _ := strconv.Atoi(tr.SelectAttr("Index"))
			switch target.Data {
			case "VideoClipTrack":
				raws = append(raws, rawTrack{xmlIndex: idx, kind: Video, node: target})
			case "AudioClipTrack":
				raws = append(raws, rawTrack{xmlIndex: idx, kind: Audio, node: target})
			}
		}
	}

	slices.SortStableFunc(raws, func(a, b rawTrack) int {
		if a.kind != b.kind {
			return int(a.kind) - int(b.kind)
		}
		return a.xmlIndex - b.xmlIndex
	})

	counts := map[TrackKind]int{}
	for _, rt := range raws {
		counts[rt.kind]++
		track := &Track{Kind: rt.kind, Index: counts[rt.kind]}
		placements, err := p.parsePlacements(rt, seq.Name)
		if err != nil {
			return nil, err
		}
		track.Placements = placements
		for _, pl := range placements {
			if pl.EndFrame > seq.DurationFrames {
				seq.DurationFrames = pl.EndFrame
			}
		}
		seq.Tracks = append(seq.Tracks, track)
	}

	return seq, nil
}

func (p *parser) parsePlacements(rt rawTrack, seqName string) ([]Placement, error) {
	items := xmlquery.FindOne(rt.node, "ClipTrack/ClipItems/TrackItems")
	if items == nil {
		return nil, nil
	}

	var out []Placement
	for _, stub := range xmlquery.Find(items, "TrackItem") {
		ref := refOf(stub)
		if ref == "" {
			continue
		}
		item := p.lookup(ref)
		if item == nil {
			return nil, &DanglingReferenceError{Ref: ref, From: "track item in sequence " + strconv.Quote(seqName)}
		}
		cti := xmlquery.FindOne(item, "ClipTrackItem")
		if cti == nil || xmlquery.FindOne(cti, "TrackItem") == nil {
			continue
		}

		startRaw := childText(cti, "TrackItem/Start")
		endRaw := childText(cti, "TrackItem/End")
		if startRaw == "" || endRaw == "" {
			continue
		}
		start, err := parseTicks(startRaw)
		if err != nil {
			return nil, malformed(fmt.Sprintf("track item %s start", ref), err)
		}
		end, err := parseTicks(endRaw)
		if err != nil {
			return nil, malformed(fmt.Sprintf("track item %s end", ref), err)
		}

		target, err := p.resolveTarget(cti, rt.kind)
		if err != nil {
			return nil, err
		}

		out = append(out, Placement{
			StartFrame: timecode.TicksToFrames(start, p.fps),
			EndFrame:   timecode.TicksToFrames(end, p.fps),
			Target:     target,
		})
	}

	slices.SortStableFunc(out, func(a, b Placement) int {
		return cmp.Compare(a.StartFrame, b.StartFrame)
	})
	return out, nil
}

// resolveTarget follows SubClip -> Clip -> Source to either a nested sequence
// or a media item. A ComponentOwner pointing at a Sequence also counts as a
// nested reference.
func (p *parser) resolveTarget(cti *xmlquery.Node, kind TrackKind) (Target, error) {
	if sub := xmlquery.FindOne(cti, "SubClip"); sub != nil {
		if ref := refOf(sub); ref != "" {
			return p.resolveSubClip(ref, kind)
		}
	}

	if owner := xmlquery.FindOne(cti, "ComponentOwner"); owner != nil {
		if n := p.lookup(refOf(owner)); n != nil && n.Data == "Sequence" && n.SelectAttr("ObjectUID") != "" {
			return NestedTarget(NestedRef{SequenceID: n.SelectAttr("ObjectUID")}), nil
		}
	}

	return MediaTarget(MediaClip{ClipType: kind.String()}), nil
}

func (p *parser) resolveSubClip(ref string, kind TrackKind) (Target, error) {
	sub := p.lookup(ref)
	if sub == nil {
		return Target{}, &DanglingReferenceError{Ref: ref, From: "clip track item"}
	}
	name := childText(sub, "Name")

	clipRefEl := xmlquery.FindOne(sub, "Clip")
	if clipRefEl == nil || refOf(clipRefEl) == "" {
		return MediaTarget(MediaClip{Name: name, ClipType: kind.String()}), nil
	}
	clipRef := refOf(clipRefEl)
	clipEl := p.lookup(clipRef)
	if clipEl == nil {
		return Target{}, &DanglingReferenceError{Ref: clipRef, From: "subclip " + strconv.Quote(name)}
	}

	inner := xmlquery.FindOne(clipEl, "Clip")
	if inner == nil {
		return MediaTarget(MediaClip{Name: name, ClipType: kind.String()}), nil
	}

	var inPoint int64
	if raw := childText(inner, "InPoint"); raw != "" {
		v, err := parseTicks(raw)
		if err != nil {
			return Target{}, malformed(fmt.Sprintf("clip %s in point", clipRef), err)
		}
		inPoint = v
	}

	srcEl := xmlquery.FindOne(inner, "Source")
	srcRef := ""
	if srcEl != nil {
		srcRef = refOf(srcEl)
	}
	if srcRef == "" {
		return MediaTarget(MediaClip{Name: name, ClipType: ClipTypeSynthetic}), nil
	}
	src := p.lookup(srcRef)
	if src == nil {
		return Target{}, &DanglingReferenceError{Ref: srcRef, From: "clip " + strconv.Quote(name)}
	}

	if seqEl := xmlquery.FindOne(src, "SequenceSource/Sequence"); seqEl != nil {
		seqRef := refOf(seqEl)
		if seqRef == "" {
			return Target{}, malformed(fmt.Sprintf("sequence source %s has no sequence reference", srcRef), nil)
		}
		return NestedTarget(NestedRef{
			SequenceID:    seqRef,
			InPointFrames: timecode.TicksToFrames(inPoint, p.fps),
		}), nil
	}

	mediaEl := xmlquery.FindOne(src, "MediaSource/Media")
	if mediaEl == nil || refOf(mediaEl) == "" {
		return MediaTarget(MediaClip{Name: name, ClipType: ClipTypeSynthetic}), nil
	}
	mediaRef := refOf(mediaEl)
	media := p.lookup(mediaRef)
	if media == nil {
		return Target{}, &DanglingReferenceError{Ref: mediaRef, From: "media source of " + strconv.Quote(name)}
	}

	mediaPath := childText(media, "FilePath")
	if mediaPath == "" {
		mediaPath = childText(media, "ActualMediaFilePath")
	}
	if name == "" {
		name = childText(media, "Title")
	}
	if name == "" && mediaPath != "" {
		name = path.Base(strings.ReplaceAll(mediaPath, `\`, "/"))
	}

	return MediaTarget(MediaClip{
		Name:     name,
		Source:   mediaPath,
		ClipType: ClassifyClip(mediaPath, kind),
	}), nil
}

func (p *parser) lookup(ref string) *xmlquery.Node {
	if ref == "" {
		return nil
	}
	if n, ok := p.byID[ref]; ok {
		return n
	}
	return p.byUID[ref]
}

func refOf(n *xmlquery.Node) string {
	if r := n.SelectAttr("ObjectRef"); r != "" {
		return r
	}
	return n.SelectAttr("ObjectURef")
}

func childText(n *xmlquery.Node, expr string) string {
	c := xmlquery.FindOne(n, expr)
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.InnerText())
}

func parseTicks(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
