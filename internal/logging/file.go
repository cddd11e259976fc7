package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// fileSink appends entries to a log file, rotating by size and/or age and
// pruning old rotations beyond max_backups.
type fileSink struct {
	mu          sync.Mutex
	name        string
	path        string
	text        bool
	maxSize     int64
	maxAge      time.Duration
	maxBackups  int
	file        *os.File
	written     int64
	lastRotated time.Time
}

func newFileSink(name string, options map[string]interface{}) (*fileSink, error) {
	path := optString(options, "file_path", "")
	if path == "" {
		return nil, fmt.Errorf("file adapter requires a file_path option")
	}

	s := &fileSink{
		name:        name,
		path:        path,
		text:        optString(options, "format", "json") == "text",
		maxSize:     int64(optInt(options, "max_size", 0)),
		maxAge:      optDuration(options, "max_age", 0),
		maxBackups:  optInt(options, "max_backups", 10),
		lastRotated: time.Now(),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("log directory: %w", err)
	}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *fileSink) open() error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	s.file = f
	s.written = info.Size()
	return nil
}

func (s *fileSink) Emit(e *Entry) error {
	line, err := renderEntry(e, s.text, false)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.due() {
		if err := s.rotate(); err != nil {
			return err
		}
	}

	n, err := s.file.WriteString(line + "\n")
	s.written += int64(n)
	return err
}

// due reports whether either configured rotation threshold has been hit;
// zero thresholds never trigger.
func (s *fileSink) due() bool {
	if s.maxSize > 0 && s.written >= s.maxSize {
		return true
	}
	if s.maxAge > 0 && time.Since(s.lastRotated) >= s.maxAge {
		return true
	}
	return false
}

func (s *fileSink) rotate() error {
	if err := s.file.Close(); err != nil {
		return err
	}
	s.file = nil

	rotated := fmt.Sprintf("%s.%s", s.path, time.Now().Format("20060102-150405"))
	if err := os.Rename(s.path, rotated); err != nil {
		return err
	}
	s.prune()
	s.lastRotated = time.Now()
	return s.open()
}

// prune deletes the oldest rotated files past maxBackups. Failures here are
// reported to stderr and never fail the write that triggered rotation.
func (s *fileSink) prune() {
	dir, base := filepath.Dir(s.path), filepath.Base(s.path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log rotation prune: %v\n", err)
		return
	}

	var rotations []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name := entry.Name(); strings.HasPrefix(name, base+".") {
			rotations = append(rotations, filepath.Join(dir, name))
		}
	}
	// Rotation names embed a sortable timestamp, so lexical order is age order.
	sort.Sort(sort.Reverse(sort.StringSlice(rotations)))

	for i := s.maxBackups; i < len(rotations); i++ {
		if err := os.Remove(rotations[i]); err != nil {
			fmt.Fprintf(os.Stderr, "log rotation prune: %v\n", err)
		}
	}
}

func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func (s *fileSink) Name() string { return s.name }
