package project

import (
	"path/filepath"
	"strings"
)

const (
	ClipTypeVideo     = "Video"
	ClipTypeAudio     = "Audio"
	ClipTypeStill     = "Still"
	ClipTypeSynthetic = "Synthetic"
	ClipTypeNested    = "Nested Sequence"
)

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".m4v": true, ".avi": true, ".mxf": true,
	".mkv": true, ".mts": true, ".m2ts": true, ".r3d": true, ".braw": true,
	".webm": true, ".mpg": true, ".mpeg": true, ".wmv": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".aif": true, ".aiff": true, ".m4a": true,
	".aac": true, ".flac": true, ".ogg": true, ".bwf": true,
}

var stillExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true,
	".psd": true, ".ai": true, ".gif": true, ".bmp": true, ".exr": true,
	".dpx": true, ".heic": true,
}

// ClassifyClip derives the clip type tag from the media path, falling back to
// the kind of the track the clip sits on.
func ClassifyClip(path string, kind TrackKind) string {
	if strings.TrimSpace(path) == "" {
		return ClipTypeSynthetic
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case videoExtensions[ext]:
		return ClipTypeVideo
	case audioExtensions[ext]:
		return ClipTypeAudio
	case stillExtensions[ext]:
		return ClipTypeStill
	default:
		return kind.String()
	}
}
