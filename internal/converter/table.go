package converter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dbsmedya/mdb2json/internal/types"
)

// ParseTable parses exported delimited text into coerced rows. The first
// record is the header. Quoted fields may contain the delimiter, doubled
// quotes and line breaks; blank lines are skipped.
//
// Any structural problem (a stray quote, an unterminated quoted field, a
// record with more fields than the header) fails the whole table. Records
// with fewer fields than the header get nil for the missing columns.
func ParseTable(text string, delimiter rune) ([]*types.Row, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []*types.Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	rows := []*types.Row{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d: %w", len(rows)+1, err)
		}

		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("record %d on line %d has %d fields, header has %d",
				len(rows)+1, line, len(record), len(header))
		}

		row := types.NewRow()
		for i, column := range header {
			if i < len(record) {
				row.Set(column, types.Coerce(record[i]))
			} else {
				row.Set(column, nil)
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
