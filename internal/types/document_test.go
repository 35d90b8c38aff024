package types

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRow(kv ...any) *Row {
	row := NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		row.Set(kv[i].(string), kv[i+1])
	}
	return row
}

func TestRow_PreservesColumnOrder(t *testing.T) {
	row := newRow("zeta", int64(1), "alpha", "a", "mid", nil)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, row.Columns())
	assert.Equal(t, 3, row.Len())

	v, ok := row.Get("alpha")
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = row.Get("missing")
	assert.False(t, ok)
}

func TestRow_SetExistingKeepsPosition(t *testing.T) {
	row := newRow("a", int64(1), "b", int64(2))
	row.Set("a", int64(3))

	assert.Equal(t, []string{"a", "b"}, row.Columns())
	v, _ := row.Get("a")
	assert.Equal(t, int64(3), v)
}

func TestRow_MarshalJSON(t *testing.T) {
	row := newRow(
		"id", int64(1),
		"name", "Alice",
		"active", true,
		"score", 4.0,
		"ratio", 3.14,
		"note", nil,
		"big", new(big.Int).Lsh(big.NewInt(1), 70),
	)

	b, err := row.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":1,"name":"Alice","active":true,"score":4.0,"ratio":3.14,"note":null,"big":1180591620717411303424}`,
		string(b))
}

func TestRow_MarshalJSONNoEscaping(t *testing.T) {
	row := newRow("naslov", "Pesem <1> & še ena", "Založba", "Družina")

	b, err := row.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"naslov":"Pesem <1> & še ena","Založba":"Družina"}`, string(b))
}

func TestRow_MarshalJSONEscapesControlCharacters(t *testing.T) {
	row := newRow("text", "line1\nline2\t\"quoted\"\\")

	b, err := row.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"text":"line1\nline2\t\"quoted\"\\"}`, string(b))
}

func TestRow_MarshalJSONRejectsNonFinite(t *testing.T) {
	var zero float64
	row := newRow("bad", 1/zero)

	_, err := row.MarshalJSON()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `column "bad"`)
}

func TestDocument_Tables(t *testing.T) {
	doc := NewDocument("legacy")
	doc.SetTable("Customers", []*Row{newRow("id", int64(1)), newRow("id", int64(2))})
	doc.SetTable("Orders", nil)
	doc.SetTable("Products", []*Row{newRow("id", int64(9))})

	assert.Equal(t, "legacy", doc.Database)
	assert.Equal(t, []string{"Customers", "Orders", "Products"}, doc.TableNames())
	assert.Equal(t, 3, doc.TableCount())
	assert.Equal(t, 3, doc.RowCount())

	orders, ok := doc.Table("Orders")
	assert.True(t, ok)
	assert.NotNil(t, orders)
	assert.Len(t, orders, 0)
}

func TestDocument_DuplicateTableNameKeepsFirstPosition(t *testing.T) {
	doc := NewDocument("dup")
	doc.SetTable("A", []*Row{newRow("x", int64(1))})
	doc.SetTable("B", nil)
	doc.SetTable("A", []*Row{newRow("x", int64(2)), newRow("x", int64(3))})

	assert.Equal(t, []string{"A", "B"}, doc.TableNames())
	assert.Equal(t, 2, doc.TableCount())
	assert.Equal(t, 2, doc.RowCount())
}

func TestDocument_MarshalJSON(t *testing.T) {
	doc := NewDocument("shop")
	doc.SetTable("Customers", []*Row{newRow("id", int64(1), "name", "Alice", "active", true)})
	doc.SetTable("Orders", nil)

	b, err := doc.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"database":"shop","tables":{"Customers":[{"id":1,"name":"Alice","active":true}],"Orders":[]}}`,
		string(b))
}

func TestDocument_MarshalJSONEmpty(t *testing.T) {
	b, err := NewDocument("empty").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"database":"empty","tables":{}}`, string(b))
}

func TestDocument_MarshalJSONReportsLocation(t *testing.T) {
	var zero float64
	doc := NewDocument("db")
	doc.SetTable("T", []*Row{newRow("ok", int64(1)), newRow("nan", zero/zero)})

	_, err := doc.MarshalJSON()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `table "T" row 1`)
}
