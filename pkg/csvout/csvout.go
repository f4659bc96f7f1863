// Package csvout writes query result rows to delimited flat files.
//
// The sink is intentionally dumb: it receives an ordered sequence of
// structured records and a target, and renders every value as its
// primitive string form. Nested structures and nulls render as empty
// cells, as do header columns a record does not carry.
package csvout

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/dunetools/dune-client-go/pkg/client"
)

// DefaultDelimiter separates fields in the output file.
const DefaultDelimiter = ';'

// Options configures the sink.
type Options struct {
	// Columns fixes the header row and column order. When empty, the
	// header is derived from the first record's keys in sorted order.
	Columns []string

	// Delimiter overrides the field separator. Zero keeps the default.
	Delimiter rune
}

// WriteFile writes the rows to a CSV file at path, creating or
// truncating it.
func WriteFile(path string, rows []client.Row, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := Write(f, rows, opts); err != nil {
		return err
	}
	return f.Close()
}

// Write writes the rows to w in CSV form. An empty row set produces an
// empty output unless Options.Columns pins a header.
func Write(w io.Writer, rows []client.Row, opts Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = opts.Delimiter
	if cw.Comma == 0 {
		cw.Comma = DefaultDelimiter
	}

	header := opts.Columns
	if len(header) == 0 {
		if len(rows) == 0 {
			return nil
		}
		header = sortedKeys(rows[0])
	}

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	record := make([]string, len(header))
	for _, row := range rows {
		for i, key := range header {
			record[i] = renderCell(row[key])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func sortedKeys(row client.Row) []string {
	keys := make([]string, 0, len(row))
	for key := range row {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// renderCell stringifies a single value. Missing keys arrive as nil and
// render empty, as do nested objects and arrays.
func renderCell(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
