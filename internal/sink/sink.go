// ============================================================================
// Output Sink - append-only line files
// ============================================================================
//
// Package: internal/sink
// File: sink.go
// Purpose: The accepted and rejected outputs of a bulk upload run.
//
// Write model:
//   - File opened once with O_CREATE|O_APPEND|O_WRONLY
//   - WriteLine builds the full line (with '\n') and issues a single Write
//     under the sink's own mutex, so concurrent callers never interleave
//   - Optional fsync after each line (syncWrites)
//   - Each Sink has its own lock; the accepted and rejected files never
//     contend with each other
//
// ============================================================================

package sink

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	// ErrSinkClosed is returned by WriteLine after Close.
	ErrSinkClosed = errors.New("sink: already closed")
	// ErrShortWrite is returned when the file accepted fewer bytes than the line.
	ErrShortWrite = errors.New("sink: short write")
)

// File is the subset of *os.File a Sink needs. Tests substitute it.
type File interface {
	io.Writer
	Sync() error
	Close() error
}

// Sink is a mutex-guarded, append-only line destination.
type Sink struct {
	mu     sync.Mutex
	file   File
	path   string
	sync   bool
	lines  int
	closed bool
}

// Open opens path in append mode, creating it if needed.
func Open(path string, syncWrites bool) (*Sink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output %s: %w", path, err)
	}
	return New(f, path, syncWrites), nil
}

// New wraps an already open file.
func New(f File, path string, syncWrites bool) *Sink {
	return &Sink{file: f, path: path, sync: syncWrites}
}

// WriteLine appends line plus a terminating newline. The line is complete
// on disk (and synced, if configured) before WriteLine returns.
func (s *Sink) WriteLine(line string) error {
	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, strings.TrimSuffix(line, "\n")...)
	buf = append(buf, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}

	n, err := s.file.Write(buf)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w to %s (%d of %d bytes)", ErrShortWrite, s.path, n, len(buf))
	}
	if s.sync {
		if err := s.file.Sync(); err != nil {
			return fmt.Errorf("failed to sync %s: %w", s.path, err)
		}
	}
	s.lines++
	return nil
}

// Lines returns how many lines this Sink has written.
func (s *Sink) Lines() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines
}

// Path returns the file path the sink writes to.
func (s *Sink) Path() string {
	return s.path
}

// Close syncs and closes the file. Calling Close twice is a no-op.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	syncErr := s.file.Sync()
	closeErr := s.file.Close()
	if closeErr != nil {
		return fmt.Errorf("failed to close %s: %w", s.path, closeErr)
	}
	if syncErr != nil {
		return fmt.Errorf("failed to sync %s: %w", s.path, syncErr)
	}
	return nil
}

// Pair is the accepted/rejected output of one run.
type Pair struct {
	Accepted *Sink
	Rejected *Sink
}

// OpenPair opens both outputs. If the second one fails the first is closed.
func OpenPair(acceptedPath, rejectedPath string, syncWrites bool) (*Pair, error) {
	accepted, err := Open(acceptedPath, syncWrites)
	if err != nil {
		return nil, err
	}
	rejected, err := Open(rejectedPath, syncWrites)
	if err != nil {
		accepted.Close()
		return nil, err
	}
	return &Pair{Accepted: accepted, Rejected: rejected}, nil
}

// Close closes both outputs and returns the first error.
func (p *Pair) Close() error {
	return errors.Join(p.Accepted.Close(), p.Rejected.Close())
}
