package export

import (
	"fmt"
	"strings"

	"github.com/heimdex/prproj-export/internal/rows"
	"github.com/heimdex/prproj-export/internal/timecode"
)

// GenerateEDL renders the video rows as a CMX3600-style event list. Each
// event records the clip at its timeline position; source timecodes start
// at zero since the flattened rows carry no source in-points.
func GenerateEDL(rs []rows.Row, title string, fps int) string {
	if timecode.ValidateFPS(fps) != nil {
		fps = timecode.DefaultFPS
	}

	lines := []string{
		fmt.Sprintf("TITLE: %s", title),
		"FCM: NON-DROP FRAME",
		"",
	}

	event := 0
	for _, r := range rs {
		if r.Type != "Video" {
			continue
		}
		event++

		duration := r.EndFrame - r.StartFrame
		srcIn := timecode.FramesToTimecode(0, fps)
		srcOut := timecode.FramesToTimecode(duration, fps)
		recIn := timecode.FramesToTimecode(r.StartFrame, fps)
		recOut := timecode.FramesToTimecode(r.EndFrame, fps)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", event, reelName(r.Track), "V", srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", r.Name),
		)
		if r.Source != "" {
			lines = append(lines, fmt.Sprintf("* MEDIA PATH:  %s", r.Source))
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func reelName(track int) string {
	if track <= 1 {
		return "AX"
	}
	return fmt.Sprintf("V%d", track)
}
