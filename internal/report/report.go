// Package report prints human-readable conversion progress and summaries.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/mdb2json/internal/types"
)

// Printer writes progress lines to out. It implements converter.Progress.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter creates a Printer. With useColor set, headings and status words
// are colored.
func NewPrinter(out io.Writer, useColor bool) *Printer {
	return &Printer{out: out, color: useColor}
}

// ColorEnabled reports whether colored output should be written to w:
// w must be a terminal and the environment must allow color.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return false
	}
	return color.SupportColor()
}

func (p *Printer) paint(c color.Color, s string) string {
	if !p.color {
		return s
	}
	return c.Sprint(s)
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Start announces the source file.
func (p *Printer) Start(source string) {
	p.printf("Reading MDB file: %s\n", source)
}

// TablesFound lists the enumerated tables.
func (p *Printer) TablesFound(tables []string) {
	p.printf("Found %d tables: %s\n", len(tables), strings.Join(tables, ", "))
}

// TableStarted announces a table export.
func (p *Printer) TableStarted(table string) {
	p.printf("Converting table: %s\n", p.paint(color.Cyan, table))
}

// TableDone reports the parsed row count.
func (p *Printer) TableDone(table string, rows int) {
	p.printf("  - %d rows\n", rows)
}

// TableFailed reports a table that could not be exported.
func (p *Printer) TableFailed(table string) {
	p.printf("  - %s\n", p.paint(color.Yellow, "Failed to export table"))
}

// Converted prints the final summary of a conversion written to output.
func (p *Printer) Converted(output string, doc *types.Document) {
	p.printf("\n%s %s\n", p.paint(color.Green, "Successfully converted to:"), output)
	p.printf("Total tables: %d\n", doc.TableCount())
	p.printf("Total rows: %d\n", doc.RowCount())
}

// LoadSummary holds the figures printed after a load.
type LoadSummary struct {
	Target        string
	TablesLoaded  int
	TablesSkipped int
	TablesFailed  []string
	RowsLoaded    int64
	Verified      bool
	Verification  string
}

// Loaded prints the final summary of a load.
func (p *Printer) Loaded(s LoadSummary) {
	p.printf("\n%s %s\n", p.paint(color.Green, "Loaded into:"), s.Target)
	p.printf("Tables loaded: %d\n", s.TablesLoaded)
	p.printf("Tables skipped (no rows): %d\n", s.TablesSkipped)
	p.printf("Rows loaded: %d\n", s.RowsLoaded)
	if len(s.TablesFailed) > 0 {
		p.printf("%s %s\n", p.paint(color.Red, "Tables failed:"), strings.Join(s.TablesFailed, ", "))
	}
	if s.Verification != "" {
		status := p.paint(color.Green, "passed")
		if !s.Verified {
			status = p.paint(color.Red, "failed")
		}
		p.printf("Verification (%s): %s\n", s.Verification, status)
	}
}

// TableCount is one line of a table listing. Rows < 0 means unknown.
type TableCount struct {
	Name string
	Rows int
}

// Tables prints one table name per line. When any entry carries a row count
// the counts are right-aligned after the names, measured in display cells so
// wide characters line up.
func (p *Printer) Tables(tables []TableCount) {
	width := 0
	withCounts := false
	for _, t := range tables {
		if w := runewidth.StringWidth(t.Name); w > width {
			width = w
		}
		if t.Rows >= 0 {
			withCounts = true
		}
	}

	for _, t := range tables {
		if !withCounts {
			p.printf("%s\n", t.Name)
			continue
		}
		name := runewidth.FillRight(t.Name, width)
		count := "-"
		if t.Rows >= 0 {
			count = fmt.Sprintf("%d", t.Rows)
		}
		p.printf("%s  %8s\n", name, count)
	}
	p.printf("\nTotal: %d table(s)\n", len(tables))
}
