// Package watcher polls a drop folder for Premiere projects and hands new or
// changed files to a callback once they have stopped changing.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
)

type Watcher interface {
	Watch(ctx context.Context, path string) error
	Stop() error
	OnChange(callback func(path string, event EventType))
}

type EventType int

const (
	EventCreate EventType = iota
	EventModify
)

func (e EventType) String() string {
	if e == EventModify {
		return "modify"
	}
	return "create"
}

// LockFilename is created inside the watched directory so that only one
// watcher processes a folder at a time.
const LockFilename = ".prproj-export.lock"

var ErrLocked = errors.New("directory is already being watched")

type fileState struct {
	size    int64
	mtime   time.Time
	stable  bool
	emitted bool
}

// PollingWatcher rescans a directory on a fixed interval. A file is reported
// after two consecutive scans see the same size and modification time.
type PollingWatcher struct {
	logger   *slog.Logger
	interval time.Duration
	ext      string

	mu       sync.Mutex
	callback func(path string, event EventType)
	files    map[string]*fileState
	cancel   context.CancelFunc
	running  atomic.Bool
}

func NewPollingWatcher(logger *slog.Logger, interval time.Duration) *PollingWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &PollingWatcher{
		logger:   logger,
		interval: interval,
		ext:      ".prproj",
		files:    make(map[string]*fileState),
	}
}

func (w *PollingWatcher) OnChange(callback func(path string, event EventType)) {
	w.mu.Lock()
	w.callback = callback
	w.mu.Unlock()
}

// Watch blocks until ctx is cancelled or Stop is called.
func (w *PollingWatcher) Watch(ctx context.Context, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", dir)
	}

	if w.running.Swap(true) {
		return errors.New("watcher already running")
	}
	defer w.running.Store(false)

	lock := flock.New(filepath.Join(dir, LockFilename))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", dir, ErrLocked)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.logger.Warn("failed to release watch lock", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()
	defer cancel()

	w.logger.Info("watcher started", "dir", dir, "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scan(dir)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopping", "dir", dir)
			return nil
		case <-ticker.C:
			w.scan(dir)
		}
	}
}

func (w *PollingWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
	}
	return nil
}

func (w *PollingWatcher) IsRunning() bool {
	return w.running.Load()
}

func (w *PollingWatcher) scan(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Error("failed to read watch directory", "dir", dir, "error", err)
		return
	}

	present := make(map[string]bool, len(entries))
	var ready []string
	events := make(map[string]EventType)

	w.mu.Lock()
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), w.ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(dir, name)
		present[path] = true

		st, known := w.files[path]
		if !known {
			w.files[path] = &fileState{size: info.Size(), mtime: info.ModTime()}
			continue
		}
		if st.size != info.Size() || !st.mtime.Equal(info.ModTime()) {
			st.size, st.mtime, st.stable = info.Size(), info.ModTime(), false
			continue
		}
		if !st.stable {
			st.stable = true
			ev := EventCreate
			if st.emitted {
				ev = EventModify
			}
			st.emitted = true
			ready = append(ready, path)
			events[path] = ev
		}
	}
	for path := range w.files {
		if !present[path] {
			delete(w.files, path)
		}
	}
	cb := w.callback
	w.mu.Unlock()

	if cb == nil {
		return
	}
	sort.Strings(ready)
	for _, path := range ready {
		cb(path, events[path])
	}
}
