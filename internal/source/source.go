// Package source turns a delimited token file into numbered records.
//
// Each input record becomes exactly one Entry. Valid entries carry a
// types.Record ready for registration. Invalid entries (no token, or more
// than two fields) carry the raw fields and the reason so the caller can
// write them to the rejected output without dispatching a job.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ChuLiYu/sns-bulkupload/pkg/types"
)

var (
	// ErrEmptyToken marks a record whose first field is empty.
	ErrEmptyToken = errors.New("null token")
	// ErrFieldCount marks a record with more than two fields.
	ErrFieldCount = errors.New("expected 1 or 2 fields")
)

// Entry is one input record, valid or not.
type Entry struct {
	Line   int          // 1-based line the record starts on
	Fields []string     // raw fields as parsed
	Record types.Record // set when Err is nil
	Err    error        // why the record was rejected before dispatch
}

// Valid reports whether the entry can be dispatched.
func (e Entry) Valid() bool {
	return e.Err == nil
}

// Raw joins the fields the way they are echoed to the rejected output.
func (e Entry) Raw() string {
	return strings.Join(e.Fields, ", ")
}

// Source reads entries from a delimited file.
type Source struct {
	path   string
	file   *os.File
	reader *reader
}

// Open opens path for reading.
func Open(path string, delim, quote rune) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input %s: %w", path, err)
	}
	return &Source{
		path:   path,
		file:   f,
		reader: newReader(f, delim, quote),
	}, nil
}

// NewReader reads entries from r. Close is a no-op for readers.
func NewReader(r io.Reader, delim, quote rune) *Source {
	return &Source{reader: newReader(r, delim, quote)}
}

// Next returns the next entry, or io.EOF when the input is exhausted.
// Any other error is a read failure of the underlying file.
func (s *Source) Next() (Entry, error) {
	fields, line, err := s.reader.readRecord()
	switch {
	case errors.Is(err, io.EOF):
		return Entry{}, io.EOF
	case errors.Is(err, ErrUnterminatedQuote):
		return Entry{Line: line, Fields: fields, Err: err}, nil
	case err != nil:
		return Entry{}, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return classify(line, fields), nil
}

// Close releases the underlying file.
func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

func classify(line int, fields []string) Entry {
	entry := Entry{Line: line, Fields: fields}

	switch len(fields) {
	case 1, 2:
		if fields[0] == "" {
			entry.Err = ErrEmptyToken
			return entry
		}
		entry.Record = types.Record{Line: line, Token: fields[0]}
		if len(fields) == 2 {
			entry.Record.UserData = fields[1]
		}
	case 0:
		entry.Err = ErrEmptyToken
	default:
		entry.Err = fmt.Errorf("%w, got %d", ErrFieldCount, len(fields))
	}
	return entry
}
