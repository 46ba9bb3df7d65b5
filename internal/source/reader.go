package source

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// ErrUnterminatedQuote is reported for a quoted field still open at EOF.
var ErrUnterminatedQuote = errors.New("unterminated quoted field")

// reader splits delimited text into records.
//
// Rules:
//   - fields are separated by delim
//   - a quote opens or closes a quoted section anywhere in a field
//   - inside a quoted section, two quotes in a row are one literal quote
//   - a quoted section may span lines; the line break is kept in the field
//   - "\r\n" and "\n" both end a record
//
// encoding/csv only supports '"' as the quote character, hence this type.
type reader struct {
	r     *bufio.Reader
	delim rune
	quote rune
	line  int // physical lines consumed so far
}

func newReader(r io.Reader, delim, quote rune) *reader {
	return &reader{r: bufio.NewReader(r), delim: delim, quote: quote}
}

// readRecord returns the next record and the physical line it starts on.
// At end of input it returns io.EOF. A record with an unterminated quote is
// returned together with ErrUnterminatedQuote.
func (rd *reader) readRecord() ([]string, int, error) {
	text, err := rd.readLine()
	if err != nil {
		return nil, 0, err
	}
	start := rd.line

	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)
	for {
		for i := 0; i < len(text); {
			c, size := utf8.DecodeRuneInString(text[i:])
			switch {
			case c == utf8.RuneError && size == 1:
				// Invalid UTF-8 is copied through byte for byte
				field.WriteByte(text[i])
			case c == rd.quote && inQuotes && rd.quoteAt(text, i+size):
				field.WriteRune(c)
				i += size
			case c == rd.quote:
				inQuotes = !inQuotes
			case c == rd.delim && !inQuotes:
				fields = append(fields, field.String())
				field.Reset()
			default:
				field.WriteString(text[i : i+size])
			}
			i += size
		}
		if !inQuotes {
			break
		}

		// Quoted field continues on the next physical line.
		next, err := rd.readLine()
		if errors.Is(err, io.EOF) {
			fields = append(fields, field.String())
			return fields, start, ErrUnterminatedQuote
		}
		if err != nil {
			return nil, start, err
		}
		field.WriteByte('\n')
		text = next
	}

	fields = append(fields, field.String())
	return fields, start, nil
}

// quoteAt reports whether text holds the quote character at byte offset i.
func (rd *reader) quoteAt(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	c, _ := utf8.DecodeRuneInString(text[i:])
	return c == rd.quote
}

// readLine returns one physical line without its terminator.
func (rd *reader) readLine() (string, error) {
	s, err := rd.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if errors.Is(err, io.EOF) && s == "" {
		return "", io.EOF
	}
	rd.line++
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}
