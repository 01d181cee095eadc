package convert

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heimdex/prproj-export/internal/catalog"
	"github.com/heimdex/prproj-export/internal/db"
	"github.com/heimdex/prproj-export/internal/flatten"
	"github.com/heimdex/prproj-export/internal/project"
	"github.com/heimdex/prproj-export/internal/project/prtest"
)

func sampleProject() []byte {
	b := prtest.NewBuilder()
	master := b.Sequence("seq-main", "Main")
	inner := b.Sequence("seq-inner", "Inner")

	inner.VideoTrack().Media("Broll_1234567", "/media/broll.mov", 0, 240)
	inner.AudioTrack().Media("Ambience.wav", "/media/amb.wav", 0, 240)

	master.VideoTrack().
		Media("Intro.mov", "/media/intro.mov", 0, 577).
		Nested("seq-inner", 600, 840, 0)
	master.AudioTrack().Media("Score.wav", "/media/score.wav", 0, 840)

	return b.Gzip()
}

func newCatalog(t *testing.T) *catalog.Service {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return catalog.NewService(catalog.NewRepository(database.Conn()), nil)
}

func TestRun_EndToEnd(t *testing.T) {
	model, rs, err := Run(sampleProject(), 24, "", flatten.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "seq-main", model.MasterID)
	require.Len(t, rs, 4)

	assert.Equal(t, "Video", rs[0].Type)
	assert.Equal(t, 1, rs[0].Track)
	assert.Equal(t, "Intro.mov", rs[0].Name)
	assert.Equal(t, "00:00:00:00", rs[0].StartTC)
	assert.Equal(t, "00:00:24:01", rs[0].EndTC)

	assert.Equal(t, "Broll_1234567", rs[1].Name)
	assert.Equal(t, "00:00:25:00", rs[1].StartTC)
	assert.Equal(t, "1234567", rs[1].StockID)

	for _, r := range rs[2:] {
		assert.Equal(t, "Audio", r.Type)
	}
	assert.Equal(t, "Score.wav", rs[2].Name)
	assert.Equal(t, "Ambience.wav", rs[3].Name)
	assert.Equal(t, int64(600), rs[3].StartFrame)
}

func TestConvert_WithoutCatalog(t *testing.T) {
	c := New(Config{})
	res, err := c.Convert(context.Background(), Request{Filename: "edit.prproj", Data: sampleProject(), Flatten: flatten.DefaultOptions()})
	require.NoError(t, err)

	assert.Empty(t, res.ConversionID)
	assert.Equal(t, "Main", res.Sequence)
	assert.Equal(t, 24, res.FPS)
	assert.False(t, res.Cached)
	assert.Len(t, res.Rows, 4)
}

func TestConvert_CachesByContentAndOptions(t *testing.T) {
	cat := newCatalog(t)
	c := New(Config{Catalog: cat, Cache: true})
	ctx := context.Background()
	req := Request{Filename: "edit.prproj", Data: sampleProject(), Flatten: flatten.DefaultOptions()}

	first, err := c.Convert(ctx, req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.NotEmpty(t, first.ConversionID)

	second, err := c.Convert(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ConversionID, second.ConversionID)
	assert.Equal(t, first.Rows, second.Rows)
	assert.Equal(t, "seq-main", first.SequenceID)
	assert.Equal(t, first.SequenceID, second.SequenceID)
	assert.Equal(t, first.Sequence, second.Sequence)
	assert.Equal(t, first.FPS, second.FPS)

	req.Flatten.ExpandNested = false
	third, err := c.Convert(ctx, req)
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.NotEqual(t, first.ConversionID, third.ConversionID)
	assert.Len(t, third.Rows, 3)

	history, err := cat.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestConvert_CacheDisabledRecordsEveryRun(t *testing.T) {
	cat := newCatalog(t)
	c := New(Config{Catalog: cat, Cache: false})
	ctx := context.Background()
	req := Request{Filename: "edit.prproj", Data: sampleProject(), Flatten: flatten.DefaultOptions()}

	for i := 0; i < 2; i++ {
		res, err := c.Convert(ctx, req)
		require.NoError(t, err)
		assert.False(t, res.Cached)
	}

	history, err := cat.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestConvert_FailureIsRecorded(t *testing.T) {
	cat := newCatalog(t)
	c := New(Config{Catalog: cat, Cache: true})

	_, err := c.Convert(context.Background(), Request{Filename: "empty.prproj", Data: nil})
	require.Error(t, err)
	assert.True(t, errors.Is(err, project.ErrMalformed))

	history, err := cat.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, catalog.StatusFailed, history[0].Status)
	assert.NotEmpty(t, history[0].Error)
}

func TestConvert_CyclicProject(t *testing.T) {
	b := prtest.NewBuilder()
	b.Sequence("a", "A").VideoTrack().Nested("b", 0, 48, 0)
	b.Sequence("b", "B").VideoTrack().Nested("a", 0, 48, 0)

	_, err := New(Config{}).Convert(context.Background(), Request{Data: b.Bytes(), Flatten: flatten.DefaultOptions()})

	var cyc *project.CyclicSequenceReferenceError
	require.ErrorAs(t, err, &cyc)
}

func TestConvert_InvalidFPS(t *testing.T) {
	_, err := New(Config{}).Convert(context.Background(), Request{Data: sampleProject(), FPS: -5})
	require.Error(t, err)
}

func TestConvert_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Config{}).Convert(ctx, Request{Data: sampleProject()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSequences(t *testing.T) {
	infos, err := New(Config{}).Sequences(context.Background(), sampleProject(), 0)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "Main", infos[0].Name)
	assert.True(t, infos[0].Master)
	assert.Equal(t, 1, infos[0].NestedRefs)
	assert.False(t, infos[1].Master)
}

func TestOptionsKey(t *testing.T) {
	base := OptionsKey(24, "", flatten.DefaultOptions())
	assert.Equal(t, base, OptionsKey(24, "", flatten.DefaultOptions()))
	assert.NotEqual(t, base, OptionsKey(25, "", flatten.DefaultOptions()))
	assert.NotEqual(t, base, OptionsKey(24, "Main", flatten.DefaultOptions()))
	assert.NotEqual(t, base, OptionsKey(24, "", flatten.Options{}))
}
