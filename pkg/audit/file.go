package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileSink appends audit records to a newline-delimited JSON file. The file
// is the hand-off point to external log shippers, so records are written one
// JSON object per line and the file is only ever appended to.
type FileSink struct {
	path   string
	mu     sync.Mutex
	file   *os.File
	logger *slog.Logger
}

// NewFileSink opens (or creates) an NDJSON audit log at path, creating
// parent directories as needed.
func NewFileSink(path string) (*FileSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, NewSinkError("file", "mkdir", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, NewSinkError("file", "open", err)
	}

	return &FileSink{
		path:   path,
		file:   f,
		logger: slog.Default().With("component", "audit.sink.file"),
	}, nil
}

// Append writes a batch of records, one JSON line each, and syncs once per
// batch.
func (s *FileSink) Append(_ context.Context, records []DecisionRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := bufio.NewWriter(s.file)
	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return NewSinkError("file", "encode", err)
		}
	}
	if err := w.Flush(); err != nil {
		return NewSinkError("file", "write", err)
	}
	if err := s.file.Sync(); err != nil {
		return NewSinkError("file", "sync", err)
	}
	return nil
}

// ReadEntries returns all records currently in the log, in append order.
func (s *FileSink) ReadEntries(_ context.Context) ([]DecisionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, NewSinkError("file", "open", err)
	}
	defer f.Close()

	var records []DecisionRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec DecisionRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			s.logger.Warn("skipping malformed audit line", "error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, NewSinkError("file", "read", err)
	}
	return records, nil
}

// Clear truncates the log.
func (s *FileSink) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.file.Truncate(0); err != nil {
		return NewSinkError("file", "truncate", err)
	}
	if _, err := s.file.Seek(0, 0); err != nil {
		return NewSinkError("file", "seek", err)
	}
	return nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
