package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Options configures the logger setup.
type Options struct {
	Level          string // debug, info, warn, error
	RetentionWeeks int    // old log files beyond this age are removed
	MaxFileSize    int64  // bytes; a file exceeding this rotates early
}

// RotatingWriter is an io.Writer that writes to one log file per ISO week,
// rotating early when the current file grows past MaxFileSize. Files older
// than the retention window are removed on rotation.
type RotatingWriter struct {
	dir         string
	maxFileSize int64
	retention   time.Duration

	mu          sync.Mutex
	currentWeek string
	currentFile *os.File
	currentSize int64
	rotations   int
}

// NewRotatingWriter creates a writer rotating files in dir.
func NewRotatingWriter(dir string, retentionWeeks int, maxFileSize int64) (*RotatingWriter, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	return &RotatingWriter{
		dir:         dir,
		maxFileSize: maxFileSize,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
	}, nil
}

// weekKey returns the ISO week key in YYYY-Www format.
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	week := weekKey(time.Now())
	needsRotation := w.currentFile == nil ||
		week != w.currentWeek ||
		(w.maxFileSize > 0 && w.currentSize+int64(len(p)) > w.maxFileSize)

	if needsRotation {
		if err := w.rotate(week); err != nil {
			return 0, err
		}
	}

	n, err := w.currentFile.Write(p)
	w.currentSize += int64(n)
	return n, err
}

// rotate opens the file for week, closing the previous one and cleaning up
// expired files. Caller must hold the lock.
func (w *RotatingWriter) rotate(week string) error {
	if w.currentFile != nil {
		w.currentFile.Close()
		w.currentFile = nil
	}

	if week == w.currentWeek {
		w.rotations++
	} else {
		w.rotations = 0
	}

	name := fmt.Sprintf("app-%s.log", week)
	if w.rotations > 0 {
		name = fmt.Sprintf("app-%s.%d.log", week, w.rotations)
	}

	f, err := os.OpenFile(filepath.Join(w.dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", name, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat log file %s: %w", name, err)
	}

	w.currentFile = f
	w.currentWeek = week
	w.currentSize = info.Size()

	w.cleanup()
	return nil
}

// cleanup removes log files older than the retention window.
func (w *RotatingWriter) cleanup() {
	if w.retention <= 0 {
		return
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-w.retention)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "app-") || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(w.dir, entry.Name()))
		}
	}
}

// Close closes the current log file.
func (w *RotatingWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentFile != nil {
		w.currentFile.Close()
		w.currentFile = nil
	}
}

// NewLogger builds a slog logger writing JSON lines to stdout and to weekly
// rotating files under logDir.
func NewLogger(logDir string, opts Options) (*slog.Logger, *RotatingWriter, error) {
	level := parseLevel(opts.Level)

	rotator, err := NewRotatingWriter(logDir, opts.RetentionWeeks, opts.MaxFileSize)
	if err != nil {
		return nil, nil, err
	}

	handler := slog.NewJSONHandler(io.MultiWriter(os.Stdout, rotator), &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler), rotator, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
