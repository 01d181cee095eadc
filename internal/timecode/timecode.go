// Package timecode converts between integer frame counts and HH:MM:SS:FF
// timecode strings at a fixed reference frame rate.
//
// Two renderings exist. FramesToTimecode is exact and is inverted by
// TimecodeToFrames. FramesToDisplay applies the export rounding rule: a frame
// remainder up to half a second is kept, anything above it carries into the
// next whole second with the frame field reset to zero.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// DefaultFPS is the reference rate used by exports unless configured otherwise.
	DefaultFPS = 24

	// MaxFPS bounds configurable rates.
	MaxFPS = 1000

	// TicksPerSecond is Premiere's internal time base.
	TicksPerSecond int64 = 254_016_000_000
)

var ErrInvalidTimecode = errors.New("invalid timecode")

// ValidateFPS reports whether fps can be used as a reference rate.
func ValidateFPS(fps int) error {
	if fps <= 0 || fps > MaxFPS {
		return fmt.Errorf("frame rate must be between 1 and %d, got %d", MaxFPS, fps)
	}
	return nil
}

// FramesToTimecode renders frames exactly. Negative input renders as zero.
func FramesToTimecode(frames int64, fps int) string {
	if frames < 0 {
		frames = 0
	}
	rate := int64(fps)
	return format(frames/rate, frames%rate)
}

// FramesToDisplay renders frames with the export rounding rule applied once.
// At 24 fps a remainder of 12 stays as :12 and a remainder of 13 becomes the
// next second at :00. Hours are elapsed time and are never wrapped.
func FramesToDisplay(frames int64, fps int) string {
	return FramesToTimecode(DisplayFrames(frames, fps), fps)
}

// DisplayFrames returns the frame position that FramesToDisplay renders:
// frames past the half-second mark move up to the next whole second.
func DisplayFrames(frames int64, fps int) int64 {
	if frames < 0 {
		return 0
	}
	rate := int64(fps)
	if frames%rate > rate/2 {
		return (frames/rate + 1) * rate
	}
	return frames
}

func format(totalSeconds, ff int64) string {
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, ff)
}

// TimecodeToFrames parses HH:MM:SS:FF. The hour field has no upper bound.
func TimecodeToFrames(tc string, fps int) (int64, error) {
	if err := ValidateFPS(fps); err != nil {
		return 0, err
	}

	parts := strings.Split(strings.TrimSpace(tc), ":")
	if len(parts) != 4 {
		return 0, fmt.Errorf("%w: %q: expected HH:MM:SS:FF", ErrInvalidTimecode, tc)
	}

	fields := make([]int64, 4)
	for i, p := range parts {
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return 0, fmt.Errorf("%w: %q: field %d is not a number", ErrInvalidTimecode, tc, i+1)
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimecode, tc, err)
		}
		fields[i] = v
	}

	hours, minutes, seconds, frames := fields[0], fields[1], fields[2], fields[3]
	rate := int64(fps)
	switch {
	case minutes >= 60:
		return 0, fmt.Errorf("%w: %q: minutes out of range", ErrInvalidTimecode, tc)
	case seconds >= 60:
		return 0, fmt.Errorf("%w: %q: seconds out of range", ErrInvalidTimecode, tc)
	case frames >= rate:
		return 0, fmt.Errorf("%w: %q: frames must be below %d", ErrInvalidTimecode, tc, fps)
	case hours > math.MaxInt64/(3600*rate)-1:
		return 0, fmt.Errorf("%w: %q: hours out of range", ErrInvalidTimecode, tc)
	}

	return ((hours*60+minutes)*60+seconds)*rate + frames, nil
}
