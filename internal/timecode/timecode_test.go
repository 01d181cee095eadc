package timecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramesToTimecode(t *testing.T) {
	tests := []struct {
		name   string
		frames int64
		fps    int
		want   string
	}{
		{name: "zero", frames: 0, fps: 24, want: "00:00:00:00"},
		{name: "one frame", frames: 1, fps: 24, want: "00:00:00:01"},
		{name: "last frame of second", frames: 23, fps: 24, want: "00:00:00:23"},
		{name: "one second", frames: 24, fps: 24, want: "00:00:01:00"},
		{name: "one minute", frames: 24 * 60, fps: 24, want: "00:01:00:00"},
		{name: "one hour", frames: 24 * 3600, fps: 24, want: "01:00:00:00"},
		{name: "hours beyond a day", frames: 24 * 3600 * 125, fps: 24, want: "125:00:00:00"},
		{name: "25 fps", frames: 26, fps: 25, want: "00:00:01:01"},
		{name: "negative clamps", frames: -5, fps: 24, want: "00:00:00:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FramesToTimecode(tc.frames, tc.fps))
		})
	}
}

func TestFramesToDisplay_RoundingBoundary(t *testing.T) {
	tests := []struct {
		name   string
		frames int64
		want   string
	}{
		{name: "remainder 12 keeps frames", frames: 10*24 + 12, want: "00:00:10:12"},
		{name: "remainder 13 carries", frames: 10*24 + 13, want: "00:00:11:00"},
		{name: "remainder 23 carries", frames: 10*24 + 23, want: "00:00:11:00"},
		{name: "remainder 1 keeps", frames: 577, want: "00:00:24:01"},
		{name: "second 59 cascades to minute", frames: 59*24 + 13, want: "00:01:00:00"},
		{name: "minute 59 cascades to hour", frames: (59*60+59)*24 + 13, want: "01:00:00:00"},
		{name: "hour 99 cascades past two digits", frames: ((99*60+59)*60+59)*24 + 20, want: "100:00:00:00"},
		{name: "exact second", frames: 48, want: "00:00:02:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FramesToDisplay(tc.frames, DefaultFPS))
		})
	}
}

func TestFramesToDisplay_ThresholdFollowsRate(t *testing.T) {
	assert.Equal(t, "00:00:00:15", FramesToDisplay(15, 30))
	assert.Equal(t, "00:00:01:00", FramesToDisplay(16, 30))
	assert.Equal(t, "00:00:00:12", FramesToDisplay(12, 25))
	assert.Equal(t, "00:00:01:00", FramesToDisplay(13, 25))
}

func TestDisplayFrames(t *testing.T) {
	assert.Equal(t, int64(252), DisplayFrames(252, 24))
	assert.Equal(t, int64(264), DisplayFrames(253, 24))
	assert.Equal(t, int64(0), DisplayFrames(-3, 24))
}

func TestFramesToDisplay_MatchesDisplayFrames(t *testing.T) {
	for _, fps := range []int{24, 25, 30} {
		for f := int64(0); f < 3*int64(fps)*3600+100; f += 97 {
			want := FramesToTimecode(DisplayFrames(f, fps), fps)
			if got := FramesToDisplay(f, fps); got != want {
				t.Fatalf("FramesToDisplay(%d, %d) = %s, want %s", f, fps, got, want)
			}
		}
	}
	assert.Equal(t, "01:00:00:00", FramesToDisplay(3600*24-1, 24))
}

func TestTimecodeToFrames_RoundTrip(t *testing.T) {
	for _, fps := range []int{24, 25, 30, 60} {
		for f := int64(0); f < 5000; f += 7 {
			tc := FramesToTimecode(f, fps)
			got, err := TimecodeToFrames(tc, fps)
			require.NoError(t, err, "fps=%d tc=%s", fps, tc)
			require.Equal(t, f, got, "fps=%d tc=%s", fps, tc)
		}
	}

	large := int64(24 * 3600 * 250)
	got, err := TimecodeToFrames(FramesToTimecode(large+17, 24), 24)
	require.NoError(t, err)
	assert.Equal(t, large+17, got)
}

func TestTimecodeToFrames_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"00:00:00",
		"00:00:00:00:00",
		"aa:00:00:00",
		"00:60:00:00",
		"00:00:60:00",
		"00:00:00:24",
		"00:-1:00:00",
		"00::00:00",
		"99999999999999999:00:00:00",
	}

	for _, in := range inputs {
		_, err := TimecodeToFrames(in, 24)
		assert.ErrorIs(t, err, ErrInvalidTimecode, "input %q", in)
	}
}

func TestTimecodeToFrames_BadRate(t *testing.T) {
	_, err := TimecodeToFrames("00:00:01:00", 0)
	assert.Error(t, err)
}

func TestValidateFPS(t *testing.T) {
	assert.NoError(t, ValidateFPS(24))
	assert.NoError(t, ValidateFPS(MaxFPS))
	assert.Error(t, ValidateFPS(0))
	assert.Error(t, ValidateFPS(-24))
	assert.Error(t, ValidateFPS(MaxFPS+1))
}
