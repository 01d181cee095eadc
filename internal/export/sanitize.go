package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeName turns a project or sequence name into a file name stem.
// Control characters are dropped and anything outside letters, digits and a
// few punctuation marks becomes '_'. Leading dots are trimmed so an export
// never turns into a hidden file, which the watcher would skip.
func SanitizeName(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsControl(r):
		case isAllowedNameRune(r):
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.TrimLeft(strings.TrimSpace(b.String()), ". ")
	if maxLen > 0 {
		if runes := []rune(name); len(runes) > maxLen {
			name = strings.TrimRight(string(runes[:maxLen]), " ")
		}
	}
	return name
}

func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case ' ', '-', '_', '.', ',', '(', ')':
		return true
	default:
		return false
	}
}

// ResolveOutputDir checks that dir is an existing directory exports can be
// written to and returns its absolute path.
func ResolveOutputDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("output directory is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("output directory %s: %w", dir, err)
	}

	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("output directory %s does not exist", dir)
	case err != nil:
		return "", fmt.Errorf("output directory %s: %w", dir, err)
	case !info.IsDir():
		return "", fmt.Errorf("output directory %s is not a directory", dir)
	}

	f, err := os.CreateTemp(abs, ".export-check-*")
	if err != nil {
		return "", fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	f.Close()
	os.Remove(f.Name())
	return abs, nil
}
