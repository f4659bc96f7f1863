package csvout

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunetools/dune-client-go/pkg/client"
)

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
}

func TestWrite_MissingKeyRendersEmptyCell(t *testing.T) {
	rows := []client.Row{
		{"address": "0xaaa", "balance": "1"},
		{"address": "0xbbb"}, // no balance
		{"address": "0xccc", "balance": "3"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows, Options{Columns: []string{"address", "balance"}}))

	got := lines(&buf)
	require.Len(t, got, 4)
	assert.Equal(t, "address;balance", got[0])
	assert.Equal(t, "0xaaa;1", got[1])
	assert.Equal(t, "0xbbb;", got[2])
	assert.Equal(t, "0xccc;3", got[3])
}

func TestWrite_HeaderFromFirstRecordWhenColumnsUnset(t *testing.T) {
	rows := []client.Row{
		{"b": "2", "a": "1"},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows, Options{}))

	got := lines(&buf)
	// Keys are emitted in sorted order for a deterministic header.
	assert.Equal(t, "a;b", got[0])
	assert.Equal(t, "1;2", got[1])
}

func TestWrite_ValueRendering(t *testing.T) {
	rows := []client.Row{{
		"str":    "hello",
		"num":    json.Number("123456789012345678901"),
		"flt":    3.25,
		"yes":    true,
		"no":     false,
		"null":   nil,
		"nested": map[string]any{"x": 1},
		"list":   []any{1, 2},
	}}

	var buf bytes.Buffer
	columns := []string{"str", "num", "flt", "yes", "no", "null", "nested", "list"}
	require.NoError(t, Write(&buf, rows, Options{Columns: columns}))

	got := lines(&buf)
	assert.Equal(t, "hello;123456789012345678901;3.25;true;false;;;", got[1])
}

func TestWrite_EmptyRowsWritesNothingWithoutColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, Options{}))
	assert.Zero(t, buf.Len())
}

func TestWrite_CustomDelimiter(t *testing.T) {
	rows := []client.Row{{"a": "1", "b": "2"}}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, rows, Options{Columns: []string{"a", "b"}, Delimiter: ','}))
	assert.Equal(t, "a,b", lines(&buf)[0])
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rows := []client.Row{
		{"address": "0xaaa", "balance": json.Number("42")},
	}

	require.NoError(t, WriteFile(path, rows, Options{Columns: []string{"address", "balance"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "address;balance\n0xaaa;42\n", string(data))
}
