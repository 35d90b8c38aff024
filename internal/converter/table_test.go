package converter

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable_Basic(t *testing.T) {
	rows, err := ParseTable("id,name,active\n1,Alice,true\n", ',')
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{"id", "name", "active"}, rows[0].Columns())

	id, _ := rows[0].Get("id")
	name, _ := rows[0].Get("name")
	active, _ := rows[0].Get("active")
	assert.Equal(t, int64(1), id)
	assert.Equal(t, "Alice", name)
	assert.Equal(t, true, active)
}

func TestParseTable_MixedValues(t *testing.T) {
	rows, err := ParseTable("a,b,c,d,e\n3.14,42,4.,abc,\n", ',')
	require.NoError(t, err)
	require.Len(t, rows, 1)

	b, err := rows[0].MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"a":3.14,"b":42,"c":4.0,"d":"abc","e":null}`, string(b))
}

func TestParseTable_Quoting(t *testing.T) {
	text := "id,text\r\n" +
		"1,\"Hello, world\"\r\n" +
		"2,\"She said \"\"hi\"\"\"\r\n" +
		"3,\"Line one\nLine two\"\r\n" +
		"4,\"\"\r\n"

	rows, err := ParseTable(text, ',')
	require.NoError(t, err)
	require.Len(t, rows, 4)

	expected := []any{"Hello, world", `She said "hi"`, "Line one\nLine two", nil}
	for i, want := range expected {
		got, _ := rows[i].Get("text")
		assert.Equal(t, want, got, "row %d", i)
	}
}

func TestParseTable_QuotedNumbersAreCoerced(t *testing.T) {
	rows, err := ParseTable("n,f\n\"7\",\"2.5\"\n", ',')
	require.NoError(t, err)
	require.Len(t, rows, 1)

	n, _ := rows[0].Get("n")
	f, _ := rows[0].Get("f")
	assert.Equal(t, int64(7), n)
	assert.Equal(t, 2.5, f)
}

func TestParseTable_HeaderOnly(t *testing.T) {
	rows, err := ParseTable("id,name\n", ',')
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestParseTable_EmptyText(t *testing.T) {
	rows, err := ParseTable("\n\n", ',')
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestParseTable_SkipsBlankLines(t *testing.T) {
	rows, err := ParseTable("id\n1\n\n2\n", ',')
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestParseTable_ShortRecordFillsNull(t *testing.T) {
	rows, err := ParseTable("a,b,c\n1,2\n", ',')
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{"a", "b", "c"}, rows[0].Columns())
	c, ok := rows[0].Get("c")
	assert.True(t, ok)
	assert.Nil(t, c)
}

func TestParseTable_LongRecordFails(t *testing.T) {
	_, err := ParseTable("a,b\n1,2\n1,2,3\n", ',')
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 2")
	assert.Contains(t, err.Error(), "has 3 fields, header has 2")
}

func TestParseTable_MalformedQuoting(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"bare quote in field", "a,b\n1,x\"y\n"},
		{"text after closing quote", "a,b\n1,\"x\"y\n"},
		{"bad header", "a,\"b\"c\n1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseTable(tt.text, ',')
			assert.Error(t, err)
			assert.Nil(t, rows)
		})
	}
}

func TestParseTable_DuplicateColumnLastValueWins(t *testing.T) {
	rows, err := ParseTable("x,y,x\n1,2,3\n", ',')
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{"x", "y"}, rows[0].Columns())
	x, _ := rows[0].Get("x")
	assert.Equal(t, int64(3), x)
}

func TestParseTable_CustomDelimiter(t *testing.T) {
	rows, err := ParseTable("id;price\n1;2.50\n", ';')
	require.NoError(t, err)
	require.Len(t, rows, 1)

	price, _ := rows[0].Get("price")
	assert.Equal(t, 2.5, price)
}

func TestParseTable_NonASCII(t *testing.T) {
	rows, err := ParseTable("naslov,Založba\n\"Čuk se oženi\",Mohorjeva\n", ',')
	require.NoError(t, err)
	require.Len(t, rows, 1)

	v, ok := rows[0].Get("Založba")
	assert.True(t, ok)
	assert.Equal(t, "Mohorjeva", v)
}

// Writing typed values through encoding/csv and parsing them back must follow
// the coercion rules, even though the original Go types are not preserved.
func TestParseTable_RoundTrip(t *testing.T) {
	records := [][]string{
		{"int", "float", "dotted_int", "bool", "text", "empty", "comma"},
		{"42", "3.5", "7.0", "FALSE", "a \"quoted\" word", "", "x,y"},
	}

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	require.NoError(t, w.WriteAll(records))

	rows, err := ParseTable(sb.String(), ',')
	require.NoError(t, err)
	require.Len(t, rows, 1)

	expected := map[string]any{
		"int":        int64(42),
		"float":      3.5,
		"dotted_int": 7.0,
		"bool":       false,
		"text":       `a "quoted" word`,
		"empty":      nil,
		"comma":      "x,y",
	}
	for column, want := range expected {
		got, ok := rows[0].Get(column)
		assert.True(t, ok, column)
		assert.Equal(t, want, got, column)
	}
}
