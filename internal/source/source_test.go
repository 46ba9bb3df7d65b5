package source

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChuLiYu/sns-bulkupload/pkg/types"
)

func readAll(t *testing.T, input string, delim, quote rune) []Entry {
	t.Helper()
	src := NewReader(strings.NewReader(input), delim, quote)
	defer src.Close()

	var entries []Entry
	for {
		e, err := src.Next()
		if errors.Is(err, io.EOF) {
			return entries
		}
		require.NoError(t, err)
		entries = append(entries, e)
	}
}

func TestNext_OneAndTwoFields(t *testing.T) {
	entries := readAll(t, "tok1,data1\ntok2\n", ',', '"')
	require.Len(t, entries, 2)

	assert.True(t, entries[0].Valid())
	assert.Equal(t, types.Record{Line: 1, Token: "tok1", UserData: "data1"}, entries[0].Record)

	assert.True(t, entries[1].Valid())
	assert.Equal(t, types.Record{Line: 2, Token: "tok2", UserData: ""}, entries[1].Record)
}

func TestNext_EmptyToken(t *testing.T) {
	entries := readAll(t, "tok1,data1\n,data2\n", ',', '"')
	require.Len(t, entries, 2)

	assert.True(t, entries[0].Valid())
	assert.False(t, entries[1].Valid())
	assert.Equal(t, 2, entries[1].Line)
	assert.ErrorIs(t, entries[1].Err, ErrEmptyToken)
	assert.Equal(t, ", data2", entries[1].Raw())
}

func TestNext_TooManyFields(t *testing.T) {
	entries := readAll(t, "a,b,c\n", ',', '"')
	require.Len(t, entries, 1)

	assert.ErrorIs(t, entries[0].Err, ErrFieldCount)
	assert.Equal(t, "a, b, c", entries[0].Raw())
}

func TestNext_BlankLineKeepsNumbering(t *testing.T) {
	entries := readAll(t, "tok1\n\ntok3\n", ',', '"')
	require.Len(t, entries, 3)

	assert.Equal(t, 1, entries[0].Line)
	assert.False(t, entries[1].Valid())
	assert.Equal(t, 2, entries[1].Line)
	assert.ErrorIs(t, entries[1].Err, ErrEmptyToken)
	assert.Equal(t, 3, entries[2].Line)
	assert.Equal(t, "tok3", entries[2].Record.Token)
}

func TestNext_NoTrailingNewline(t *testing.T) {
	entries := readAll(t, "tok1\ntok2", ',', '"')
	require.Len(t, entries, 2)
	assert.Equal(t, "tok2", entries[1].Record.Token)
}

func TestNext_CRLF(t *testing.T) {
	entries := readAll(t, "tok1,data1\r\ntok2\r\n", ',', '"')
	require.Len(t, entries, 2)
	assert.Equal(t, "data1", entries[0].Record.UserData)
	assert.Equal(t, "tok2", entries[1].Record.Token)
}

func TestNext_QuotedFields(t *testing.T) {
	input := `tok1,"a,b"` + "\n" + `"tok2","say ""hi"""` + "\n"
	entries := readAll(t, input, ',', '"')
	require.Len(t, entries, 2)

	assert.Equal(t, "a,b", entries[0].Record.UserData)
	assert.Equal(t, "tok2", entries[1].Record.Token)
	assert.Equal(t, `say "hi"`, entries[1].Record.UserData)
}

func TestNext_MultilineQuotedField(t *testing.T) {
	input := "tok1,'line one\nline two'\ntok2\n"
	entries := readAll(t, input, ',', '\'')
	require.Len(t, entries, 2)

	assert.Equal(t, 1, entries[0].Line)
	assert.Equal(t, "line one\nline two", entries[0].Record.UserData)
	// tok2 starts on physical line 3
	assert.Equal(t, 3, entries[1].Line)
}

func TestNext_CustomDelimiter(t *testing.T) {
	entries := readAll(t, "tok1;user;data\ntok2;x,y\n", ';', '"')
	require.Len(t, entries, 2)

	assert.ErrorIs(t, entries[0].Err, ErrFieldCount)
	assert.Equal(t, "x,y", entries[1].Record.UserData)
}

func TestNext_UnterminatedQuote(t *testing.T) {
	entries := readAll(t, "tok1\ntok2,\"open\n", ',', '"')
	require.Len(t, entries, 2)

	assert.True(t, entries[0].Valid())
	assert.False(t, entries[1].Valid())
	assert.Equal(t, 2, entries[1].Line)
	assert.ErrorIs(t, entries[1].Err, ErrUnterminatedQuote)
}

func TestNext_EmptyInput(t *testing.T) {
	assert.Empty(t, readAll(t, "", ',', '"'))
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.csv")
	require.NoError(t, os.WriteFile(path, []byte("tok1,data1\n"), 0644))

	src, err := Open(path, ',', '"')
	require.NoError(t, err)
	defer src.Close()

	e, err := src.Next()
	require.NoError(t, err)
	assert.Equal(t, "tok1", e.Record.Token)

	_, err = src.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, src.Close())
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open("/nonexistent/tokens.csv", ',', '"')
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNext_InvalidUTF8KeptVerbatim(t *testing.T) {
	entries := readAll(t, "tok\xff\xfe1,data\x80\n,\xc3\n", ',', '"')
	require.Len(t, entries, 2)

	assert.Equal(t, "tok\xff\xfe1", entries[0].Record.Token)
	assert.Equal(t, "data\x80", entries[0].Record.UserData)
	assert.Equal(t, ", \xc3", entries[1].Raw())
}

func TestNext_MultiByteDelimiterAndQuote(t *testing.T) {
	entries := readAll(t, "tök1§¦a§b¦\ntok2§¦say ¦¦hi¦¦¦\n", '§', '¦')
	require.Len(t, entries, 2)

	assert.Equal(t, "tök1", entries[0].Record.Token)
	assert.Equal(t, "a§b", entries[0].Record.UserData)
	assert.Equal(t, "tok2", entries[1].Record.Token)
	assert.Equal(t, "say ¦hi¦", entries[1].Record.UserData)
}
