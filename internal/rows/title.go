package rows

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var titleExtensions = map[string]bool{
	"mp4": true, "mov": true, "m4v": true, "avi": true, "mxf": true,
	"mkv": true, "mp3": true, "wav": true, "aif": true, "aiff": true,
}

// DeriveTitle splits a clip name into a human title and a stock library id
// using the naming schemes of common stock providers:
//
//	Artlist_Music_SongTitle_ID-123   -> "SongTitle", "ID-123"
//	Imago_12345678                   -> "", "12345678"
//	Some Title_1234567               -> "Some Title", "1234567"
//	Cam_Interview.mov                -> "Interview", ""
func DeriveTitle(name string) (title, stockID string) {
	title = name
	low := strings.ToLower(name)
	isArtlist := strings.Contains(low, "artlist")

	switch {
	case isArtlist && (strings.Contains(name, "_id-") || strings.Contains(name, "_ID-")):
		parts := strings.Split(name, "_")
		if len(parts) >= 4 {
			title = strings.TrimSpace(parts[2])
			stockID = strings.TrimSpace(parts[len(parts)-1])
		}
	case strings.Contains(low, "imago"), strings.Contains(low, "colourbox"):
		parts := strings.Split(name, "_")
		if len(parts) > 1 && isDigits(parts[1]) {
			stockID = strings.TrimSpace(parts[1])
			title = ""
		}
	}

	if stockID == "" {
		title, stockID = trailingID(name, "_", title)
	}
	if stockID == "" {
		title, stockID = trailingID(name, " ", title)
	}

	base, ext := splitExt(title)
	if titleExtensions[strings.ToLower(strings.TrimPrefix(ext, "."))] {
		title = base
	}

	if strings.Contains(base, "_") && !isArtlist && stockID == "" {
		if _, rest, _ := strings.Cut(base, "_"); strings.TrimSpace(rest) != "" {
			title = strings.TrimSpace(rest)
		}
	}

	return strings.TrimSpace(title), strings.TrimSpace(stockID)
}

// trailingID recognizes "<title><sep><digits>" with at least six digits.
func trailingID(name, sep, fallback string) (string, string) {
	i := strings.LastIndex(name, sep)
	if i < 0 {
		return fallback, ""
	}
	head, tail := name[:i], name[i+len(sep):]
	if isDigits(tail) && utf8.RuneCountInString(tail) >= 6 {
		return strings.TrimSpace(head), strings.TrimSpace(tail)
	}
	return fallback, ""
}

// splitExt splits the extension off the last path element, ignoring leading
// dots so ".hidden" has no extension.
func splitExt(s string) (string, string) {
	start := strings.LastIndexAny(s, `/\`) + 1
	i := strings.LastIndex(s[start:], ".")
	if i < 0 {
		return s, ""
	}
	i += start
	if strings.TrimLeft(s[start:i], ".") == "" {
		return s, ""
	}
	return s[:i], s[i:]
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
