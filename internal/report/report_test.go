package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/mdb2json/internal/types"
)

func TestPrinter_ConversionProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.Start("shop.mdb")
	p.TablesFound([]string{"Customers", "Orders"})
	p.TableStarted("Customers")
	p.TableDone("Customers", 2)
	p.TableStarted("Orders")
	p.TableFailed("Orders")

	expected := "Reading MDB file: shop.mdb\n" +
		"Found 2 tables: Customers, Orders\n" +
		"Converting table: Customers\n" +
		"  - 2 rows\n" +
		"Converting table: Orders\n" +
		"  - Failed to export table\n"
	assert.Equal(t, expected, buf.String())
}

func TestPrinter_Converted(t *testing.T) {
	doc := types.NewDocument("shop")
	r := types.NewRow()
	r.Set("id", int64(1))
	doc.SetTable("Customers", []*types.Row{r})
	doc.SetTable("Orders", nil)

	var buf bytes.Buffer
	NewPrinter(&buf, false).Converted("shop.json", doc)

	expected := "\nSuccessfully converted to: shop.json\n" +
		"Total tables: 2\n" +
		"Total rows: 1\n"
	assert.Equal(t, expected, buf.String())
}

func TestPrinter_Loaded(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Loaded(LoadSummary{
		Target:        "shop.db",
		TablesLoaded:  2,
		TablesSkipped: 1,
		TablesFailed:  []string{"Broken"},
		RowsLoaded:    42,
		Verified:      true,
		Verification:  "count",
	})

	out := buf.String()
	assert.Contains(t, out, "Loaded into: shop.db\n")
	assert.Contains(t, out, "Tables loaded: 2\n")
	assert.Contains(t, out, "Tables skipped (no rows): 1\n")
	assert.Contains(t, out, "Rows loaded: 42\n")
	assert.Contains(t, out, "Tables failed: Broken\n")
	assert.Contains(t, out, "Verification (count): passed\n")
}

func TestPrinter_LoadedWithoutVerification(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Loaded(LoadSummary{Target: "shop.db"})

	assert.NotContains(t, buf.String(), "Verification")
	assert.NotContains(t, buf.String(), "Tables failed")
}

func TestPrinter_TablesNamesOnly(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Tables([]TableCount{
		{Name: "Customers", Rows: -1},
		{Name: "Orders", Rows: -1},
	})

	assert.Equal(t, "Customers\nOrders\n\nTotal: 2 table(s)\n", buf.String())
}

func TestPrinter_TablesAlignsWideNames(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Tables([]TableCount{
		{Name: "Založba", Rows: 12},
		{Name: "歌曲", Rows: 3},
		{Name: "Broken", Rows: -1},
	})

	// "Založba" is 7 cells wide and "歌曲" is 4.
	expected := "Založba        12\n" +
		"歌曲            3\n" +
		"Broken          -\n" +
		"\nTotal: 3 table(s)\n"
	assert.Equal(t, expected, buf.String())
}

func TestPrinter_Color(t *testing.T) {
	var plain, colored bytes.Buffer
	NewPrinter(&plain, false).TableFailed("Orders")
	NewPrinter(&colored, true).TableFailed("Orders")

	assert.Equal(t, "  - Failed to export table\n", plain.String())
	assert.Contains(t, colored.String(), "Failed to export table")
}

func TestColorEnabled_NonTerminalWriters(t *testing.T) {
	assert.False(t, ColorEnabled(&bytes.Buffer{}))

	f, err := os.Create(filepath.Join(t.TempDir(), "progress.txt"))
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, ColorEnabled(f), "a regular file is not a terminal")
}
