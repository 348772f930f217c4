package chatlog

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	logFilePattern = "*.ndjson"
	maxLineSize    = 16 << 20
)

// FileStore appends records as newline-delimited JSON to one file per day.
type FileStore struct {
	dir      string
	filename string
	now      func() time.Time
	mu       sync.Mutex
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFilename writes every record to name instead of the daily file.
func WithFilename(name string) FileOption {
	return func(s *FileStore) {
		s.filename = name
	}
}

// WithFileClock overrides the clock used for daily file names and cleanup.
func WithFileClock(now func() time.Time) FileOption {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewFileStore creates dir if needed and returns a store writing into it.
func NewFileStore(dir string, opts ...FileOption) (*FileStore, error) {
	if dir == "" {
		return nil, ErrInvalidLogDirectory
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Join(ErrInvalidLogDirectory, err)
	}

	s := &FileStore{dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the log directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Path returns the file the next Append writes to.
func (s *FileStore) Path() string {
	name := s.filename
	if name == "" {
		name = "chat_log_" + s.now().Format("20060102") + ".ndjson"
	}
	return filepath.Join(s.dir, name)
}

func (s *FileStore) Append(_ context.Context, r Record) error {
	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("write log file: %w", err)
	}
	return f.Close()
}

// Files returns the log files in the directory in lexical order.
func (s *FileStore) Files() ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, logFilePattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Records reads every log file in lexical order. Blank lines and documents
// without a chat_id are skipped.
func (s *FileStore) Records(ctx context.Context) ([]Record, error) {
	paths, err := s.Files()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var records []Record
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recs, err := readLogFile(path)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

func readLogFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		r, ok, err := decodeRecord(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %s:%d: %w", ErrMalformedRecord, filepath.Base(path), lineNo, err)
		}
		if ok {
			records = append(records, r)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// Cleanup deletes log files last modified before cutoff.
func (s *FileStore) Cleanup(ctx context.Context, cutoff time.Time) (int, error) {
	paths, err := s.Files()
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		deleted int
		errs    []error
	)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}
