// Package outputstore persists the timestamped stdout/stderr line stream of
// every managed process and answers range queries against it.
//
// Each (process id, channel) pair backs onto its own file of YAML documents,
// one document per record separated by "---" lines, mirroring the document-per-record
// framing the original Python implementation used with yaml.safe_dump_all:
// self-delimiting, diffable, and append-only without ever rewriting prior
// bytes.
package outputstore

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Channel names a process output stream.
type Channel string

const (
	Stdout Channel = "stdout"
	Stderr Channel = "stderr"
)

// OutputEntry is a single decoded, timestamped line of process output.
type OutputEntry struct {
	Timestamp time.Time `yaml:"timestamp"`
	Channel   Channel   `yaml:"channel"`
	Text      string    `yaml:"text"`
}

// record is the on-disk shape; Channel is implied by the file it lives in, so
// it is not duplicated on disk the way the in-memory OutputEntry carries it.
type record struct {
	Timestamp time.Time `yaml:"timestamp"`
	Text      string    `yaml:"text"`
}

// ReadOptions filters a Read call.
type ReadOptions struct {
	Since *time.Time
	Until *time.Time
	// Tail, if > 0, limits the result to the last Tail entries that also
	// satisfy Since/Until.
	Tail int
}

// Store is the concrete, filesystem-backed Output Store.
type Store struct {
	baseDir string

	mu    sync.Mutex // guards fileLocks
	locks map[string]*sync.Mutex
}

// New creates a Store rooted at baseDir, creating it if necessary.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: baseDir, Err: err}
	}
	return &Store{
		baseDir: baseDir,
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

func (s *Store) processDir(processID string) string {
	return filepath.Join(s.baseDir, processID)
}

func (s *Store) channelPath(processID string, channel Channel) string {
	return filepath.Join(s.processDir(processID), string(channel)+".log")
}

func (s *Store) lockFor(path string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[path]
	if !ok {
		l = &sync.Mutex{}
		s.locks[path] = l
	}
	return l
}

// Append writes one or more lines to the given process/channel log, each
// stamped with the current time. Lines are written in order, each as its own
// YAML document, under the per-file lock so appends from concurrent
// goroutines never interleave mid-document.
func (s *Store) Append(ctx context.Context, processID string, channel Channel, lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	dir := s.processDir(processID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	path := s.channelPath(processID, channel)
	lock := s.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &StorageError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	// A fresh encoder does not emit a separator before its first document, so
	// one is written here whenever earlier appends already left documents.
	if fi, err := f.Stat(); err == nil && fi.Size() > 0 {
		if _, err := f.WriteString("---\n"); err != nil {
			return &StorageError{Op: "write", Path: path, Err: err}
		}
	}

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	now := time.Now()
	for _, line := range lines {
		if err := enc.Encode(record{Timestamp: now, Text: line}); err != nil {
			return &StorageError{Op: "encode", Path: path, Err: err}
		}
	}
	return nil
}

// maxDecodeLines bounds how many entries Read keeps in memory when a Tail is
// set: past it, the oldest half of the decoded entries is dropped.
const maxDecodeLines = 200_000

// Read returns the entries for processID/channel matching opts, in append
// order. It returns ErrProcessNotFound if no log has ever been created for
// this process (the directory does not exist); an existing process with an
// as-yet-empty channel (e.g. nothing ever written to stderr) returns an
// empty, non-error result.
func (s *Store) Read(ctx context.Context, processID string, channel Channel, opts ReadOptions) ([]OutputEntry, error) {
	dir := s.processDir(processID)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrProcessNotFound
		}
		return nil, &StorageError{Op: "stat", Path: dir, Err: err}
	}

	path := s.channelPath(processID, channel)
	lock := s.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	decodeLimit := 0
	if opts.Tail > 0 {
		// The halving truncation below only keeps a log's suffix, which is
		// safe when the caller only wants the tail; a Since/Until-filtered
		// read with no Tail needs the full log; otherwise matching entries
		// inside the window could fall in the half that gets dropped.
		decodeLimit = maxDecodeLines
	}
	all, err := decodeAll(f, decodeLimit)
	if err != nil {
		return nil, &StorageError{Op: "decode", Path: path, Err: err}
	}

	return filterAndTail(all, channel, opts), nil
}

func decodeAll(f *os.File, limit int) ([]record, error) {
	dec := yaml.NewDecoder(bufio.NewReaderSize(f, 64*1024))
	var out []record
	for {
		var r record
		err := dec.Decode(&r)
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return out, err
		}
		out = append(out, r)
		if limit > 0 && len(out) > limit {
			// Drop the oldest half to bound memory; a tail query only ever
			// needs the suffix, so this keeps decode memory flat on huge
			// logs without a reverse-chunk reader.
			out = append(out[:0], out[len(out)/2:]...)
		}
	}
	return out, nil
}

func filterAndTail(recs []record, channel Channel, opts ReadOptions) []OutputEntry {
	matched := make([]OutputEntry, 0, len(recs))
	for _, r := range recs {
		if opts.Since != nil && r.Timestamp.Before(*opts.Since) {
			continue
		}
		if opts.Until != nil && !r.Timestamp.Before(*opts.Until) {
			continue
		}
		matched = append(matched, OutputEntry{Timestamp: r.Timestamp, Channel: channel, Text: r.Text})
	}
	if opts.Tail > 0 && len(matched) > opts.Tail {
		matched = matched[len(matched)-opts.Tail:]
	}
	return matched
}

// Clear deletes all channels for processID. It is not an error to clear a
// process whose log directory never existed, matching Clean's idempotency
// requirement one layer up.
func (s *Store) Clear(ctx context.Context, processID string) error {
	dir := s.processDir(processID)
	if err := os.RemoveAll(dir); err != nil {
		return &StorageError{Op: "remove", Path: dir, Err: err}
	}
	s.mu.Lock()
	for path := range s.locks {
		if filepath.Dir(path) == dir {
			delete(s.locks, path)
		}
	}
	s.mu.Unlock()
	return nil
}

// Shutdown releases in-memory bookkeeping. Files are already flushed on every
// Append (no buffered writer persists across calls), so there is nothing to
// sync; this exists to satisfy the interface and give the Process Manager a
// single place to call during drain.
func (s *Store) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locks = make(map[string]*sync.Mutex)
	return nil
}

// StorageError wraps an I/O failure against the backing filesystem.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("outputstore: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
