package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/elliotchance/orderedmap/v2"
)

// Row maps column names to coerced values in source column order.
type Row struct {
	fields *orderedmap.OrderedMap[string, any]
}

// NewRow creates an empty Row.
func NewRow() *Row {
	return &Row{fields: orderedmap.NewOrderedMap[string, any]()}
}

// Set stores value under column. An existing column keeps its position.
func (r *Row) Set(column string, value any) {
	r.fields.Set(column, value)
}

// Get returns the value stored for column.
func (r *Row) Get(column string) (any, bool) {
	return r.fields.Get(column)
}

// Len returns the number of columns in the row.
func (r *Row) Len() int {
	return r.fields.Len()
}

// Columns returns the column names in order.
func (r *Row) Columns() []string {
	columns := make([]string, 0, r.fields.Len())
	for el := r.fields.Front(); el != nil; el = el.Next() {
		columns = append(columns, el.Key)
	}
	return columns
}

// MarshalJSON encodes the row as an object with keys in column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Row) appendJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	first := true
	for el := r.fields.Front(); el != nil; el = el.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := appendString(buf, el.Key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := appendValue(buf, el.Value); err != nil {
			return fmt.Errorf("column %q: %w", el.Key, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// Document is the conversion result: the database name plus every table's
// rows, in enumeration order.
type Document struct {
	Database string
	tables   *orderedmap.OrderedMap[string, []*Row]
}

// NewDocument creates an empty document for the named database.
func NewDocument(database string) *Document {
	return &Document{
		Database: database,
		tables:   orderedmap.NewOrderedMap[string, []*Row](),
	}
}

// SetTable records rows for a table. A nil slice is stored as an empty table.
// Setting a name twice replaces the rows but keeps the first position.
func (d *Document) SetTable(name string, rows []*Row) {
	if rows == nil {
		rows = []*Row{}
	}
	d.tables.Set(name, rows)
}

// Table returns the rows recorded for name.
func (d *Document) Table(name string) ([]*Row, bool) {
	return d.tables.Get(name)
}

// TableNames returns table names in the order they were first recorded.
func (d *Document) TableNames() []string {
	names := make([]string, 0, d.tables.Len())
	for el := d.tables.Front(); el != nil; el = el.Next() {
		names = append(names, el.Key)
	}
	return names
}

// TableCount returns the number of distinct tables.
func (d *Document) TableCount() int {
	return d.tables.Len()
}

// RowCount returns the number of rows across all tables.
func (d *Document) RowCount() int {
	total := 0
	for el := d.tables.Front(); el != nil; el = el.Next() {
		total += len(el.Value)
	}
	return total
}

// MarshalJSON encodes the document compactly as
// {"database": ..., "tables": {name: [row, ...]}}.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`{"database":`)
	if err := appendString(&buf, d.Database); err != nil {
		return nil, err
	}
	buf.WriteString(`,"tables":{`)
	first := true
	for el := d.tables.Front(); el != nil; el = el.Next() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := appendString(&buf, el.Key); err != nil {
			return nil, err
		}
		buf.WriteString(":[")
		for i, row := range el.Value {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := row.appendJSON(&buf); err != nil {
				return nil, fmt.Errorf("table %q row %d: %w", el.Key, i, err)
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteString("}}")

	return buf.Bytes(), nil
}

// appendValue writes one coerced value.
func appendValue(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case int:
		buf.WriteString(strconv.Itoa(val))
	case *big.Int:
		buf.WriteString(val.String())
	case float64:
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return fmt.Errorf("unsupported float value %v", val)
		}
		buf.WriteString(FormatFloat(val))
	case string:
		return appendString(buf, val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return err
		}
		buf.Write(b)
	}
	return nil
}

// appendString writes s as a JSON string without HTML escaping, so that
// '<', '>' and '&' and non-ASCII text appear literally.
func appendString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
