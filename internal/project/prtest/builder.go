// Package prtest builds minimal Premiere project documents for tests.
package prtest

import (
	"bytes"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/heimdex/prproj-export/internal/timecode"
)

// Builder accumulates sequences and renders them as a PremiereData document.
// Positions are given in frames at FPS and written as ticks.
type Builder struct {
	Version string
	Root    string
	FPS     int

	nextID    int
	sequences []*SequenceBuilder
	objects   []string
}

func NewBuilder() *Builder {
	return &Builder{Version: "3", Root: "PremiereData", FPS: timecode.DefaultFPS, nextID: 100}
}

type SequenceBuilder struct {
	b           *Builder
	UID         string
	Name        string
	noGroups    bool
	videoTracks []*TrackBuilder
	audioTracks []*TrackBuilder
}

type TrackBuilder struct {
	seq   *SequenceBuilder
	audio bool
	index int
	items []string
}

func (b *Builder) id() string {
	b.nextID++
	return fmt.Sprintf("%d", b.nextID)
}

func (b *Builder) Sequence(uid, name string) *SequenceBuilder {
	s := &SequenceBuilder{b: b, UID: uid, Name: name}
	b.sequences = append(b.sequences, s)
	return s
}

// WithoutTrackGroups omits the TrackGroups element.
func (s *SequenceBuilder) WithoutTrackGroups() *SequenceBuilder {
	s.noGroups = true
	return s
}

func (s *SequenceBuilder) VideoTrack() *TrackBuilder {
	t := &TrackBuilder{seq: s, index: len(s.videoTracks)}
	s.videoTracks = append(s.videoTracks, t)
	return t
}

func (s *SequenceBuilder) AudioTrack() *TrackBuilder {
	t := &TrackBuilder{seq: s, audio: true, index: len(s.audioTracks)}
	s.audioTracks = append(s.audioTracks, t)
	return t
}

func (t *TrackBuilder) prefix() string {
	if t.audio {
		return "Audio"
	}
	return "Video"
}

// Media places a media clip at [start, end).
func (t *TrackBuilder) Media(name, path string, start, end int64) *TrackBuilder {
	b := t.seq.b
	mediaUID := "media-" + b.id()
	b.objects = append(b.objects,
		fmt.Sprintf(`<Media ObjectUID="%s"><FilePath>%s</FilePath><Title>%s</Title></Media>`,
			mediaUID, esc(path), esc(name)),
	)
	return t.MediaWithMediaRef(name, mediaUID, start, end)
}

// MediaWithMediaRef places a clip whose media source points at mediaUID.
// No Media object is written for it.
func (t *TrackBuilder) MediaWithMediaRef(name, mediaUID string, start, end int64) *TrackBuilder {
	b := t.seq.b
	srcID := b.id()
	b.objects = append(b.objects,
		fmt.Sprintf(`<%sMediaSource ObjectID="%s"><MediaSource Version="2"><Media ObjectURef="%s"/></MediaSource></%sMediaSource>`,
			t.prefix(), srcID, mediaUID, t.prefix()),
	)
	return t.item(name, srcID, start, end, 0)
}

// MediaWithSource places a clip whose Clip/Source reference is srcRef as
// given, whether or not anything carries that id.
func (t *TrackBuilder) MediaWithSource(name, srcRef string, start, end int64) *TrackBuilder {
	return t.item(name, srcRef, start, end, 0)
}

// Nested places the sequence seqUID at [start, end) with the given in-point.
func (t *TrackBuilder) Nested(seqUID string, start, end, inPoint int64) *TrackBuilder {
	b := t.seq.b
	srcID := b.id()
	b.objects = append(b.objects,
		fmt.Sprintf(`<%sSequenceSource ObjectID="%s"><SequenceSource Version="4"><Sequence ObjectURef="%s"/></SequenceSource></%sSequenceSource>`,
			t.prefix(), srcID, seqUID, t.prefix()),
	)
	return t.item("Nested "+seqUID, srcID, start, end, inPoint)
}

// Dangling adds a track item stub whose reference resolves to nothing.
func (t *TrackBuilder) Dangling(ref string) *TrackBuilder {
	t.items = append(t.items, ref)
	return t
}

func (t *TrackBuilder) item(name, srcID string, start, end, inPoint int64) *TrackBuilder {
	b := t.seq.b
	itemID, subID, clipID := b.id(), b.id(), b.id()
	p := t.prefix()
	b.objects = append(b.objects,
		fmt.Sprintf(`<%sClipTrackItem ObjectID="%s"><ClipTrackItem Version="8"><ComponentOwner Version="1"><Components ObjectRef="999999"/></ComponentOwner><TrackItem Version="4"><Start>%d</Start><End>%d</End></TrackItem><SubClip ObjectRef="%s"/></ClipTrackItem></%sClipTrackItem>`,
			p, itemID, b.ticks(start), b.ticks(end), subID, p),
		fmt.Sprintf(`<SubClip ObjectID="%s" Version="5"><Clip ObjectRef="%s"/><Name>%s</Name></SubClip>`,
			subID, clipID, esc(name)),
		fmt.Sprintf(`<%sClip ObjectID="%s"><Clip Version="18"><Source ObjectRef="%s"/><InPoint>%d</InPoint></Clip></%sClip>`,
			p, clipID, srcID, b.ticks(inPoint), p),
	)
	t.items = append(t.items, itemID)
	return t
}

func (b *Builder) ticks(frames int64) int64 {
	return timecode.FramesToTicks(frames, b.FPS)
}

// Bytes renders the plain XML document.
func (b *Builder) Bytes() []byte {
	base := len(b.objects)
	defer func() { b.objects = b.objects[:base] }()

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" ?>` + "\n")
	if b.Version == "" {
		fmt.Fprintf(&sb, "<%s>\n", b.Root)
	} else {
		fmt.Fprintf(&sb, "<%s Version=%q>\n", b.Root, b.Version)
	}
	sb.WriteString(`<Project ObjectRef="1"/>` + "\n")

	for _, s := range b.sequences {
		sb.WriteString(b.renderSequence(s))
		sb.WriteString("\n")
	}
	for _, o := range b.objects {
		sb.WriteString(o)
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "</%s>\n", b.Root)
	return []byte(sb.String())
}

// Gzip renders the document gzip-compressed, as .prproj files are stored.
func (b *Builder) Gzip() []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(b.Bytes())
	zw.Close()
	return buf.Bytes()
}

func (b *Builder) renderSequence(s *SequenceBuilder) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<Sequence ObjectUID="%s" ClassID="6a15d903-8739-11d5-af2d-9b7855ad8974" Version="11">`, s.UID)
	if !s.noGroups {
		vg, ag := b.id(), b.id()
		sb.WriteString(`<TrackGroups Version="1">`)
		fmt.Fprintf(&sb, `<TrackGroup Version="1" Index="0"><First>228a2fd4-00c5-4ade-9f63-1a7c4ecd70b9</First><Second ObjectRef="%s"/></TrackGroup>`, vg)
		fmt.Fprintf(&sb, `<TrackGroup Version="1" Index="1"><First>80b8e3d5-6dca-4195-aefb-cb5f407ab009</First><Second ObjectRef="%s"/></TrackGroup>`, ag)
		sb.WriteString(`</TrackGroups>`)
		b.objects = append(b.objects,
			b.renderGroup("Video", vg, s.videoTracks, fmt.Sprintf("<FrameRate>%d</FrameRate>", timecode.TicksPerSecond/int64(b.FPS))),
			b.renderGroup("Audio", ag, s.audioTracks, ""),
		)
	}
	fmt.Fprintf(&sb, `<Name>%s</Name></Sequence>`, esc(s.Name))
	return sb.String()
}

func (b *Builder) renderGroup(kind, id string, tracks []*TrackBuilder, extra string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<%sTrackGroup ObjectID="%s"><TrackGroup Version="1"><Tracks Version="1">`, kind, id)
	for _, t := range tracks {
		uid := fmt.Sprintf("track-%s", b.id())
		fmt.Fprintf(&sb, `<Track Index="%d" ObjectURef="%s"/>`, t.index, uid)

		var items strings.Builder
		for i, ref := range t.items {
			fmt.Fprintf(&items, `<TrackItem Index="%d" ObjectRef="%s"/>`, i, ref)
		}
		b.objects = append(b.objects, fmt.Sprintf(
			`<%sClipTrack ObjectUID="%s"><ClipTrack Version="1"><ClipItems Version="3"><TrackItems Version="1">%s</TrackItems></ClipItems></ClipTrack></%sClipTrack>`,
			kind, uid, items.String(), kind))
	}
	fmt.Fprintf(&sb, `</Tracks>%s</TrackGroup></%sTrackGroup>`, extra, kind)
	return sb.String()
}

func esc(s string) string {
	var sb strings.Builder
	xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
