// Package converter turns an Access database file into a types.Document by
// driving the external mdbtools utilities table by table.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dbsmedya/mdb2json/internal/logger"
	"github.com/dbsmedya/mdb2json/internal/mdbtools"
	"github.com/dbsmedya/mdb2json/internal/types"
)

var (
	// ErrSourceNotFound is returned when the source file does not exist.
	ErrSourceNotFound = errors.New("source file not found")
	// ErrNoTables is returned when the listing utility reports no tables,
	// including when it fails.
	ErrNoTables = errors.New("no tables found in source file")
)

// Progress receives human-readable conversion events. Implementations must
// not fail; see report.Printer.
type Progress interface {
	Start(source string)
	TablesFound(tables []string)
	TableStarted(table string)
	TableDone(table string, rows int)
	TableFailed(table string)
}

type nopProgress struct{}

func (nopProgress) Start(string)          {}
func (nopProgress) TablesFound([]string)  {}
func (nopProgress) TableStarted(string)   {}
func (nopProgress) TableDone(string, int) {}
func (nopProgress) TableFailed(string)    {}

// Converter enumerates and exports the tables of a source file.
// Tables are processed one at a time in enumeration order.
type Converter struct {
	tools     mdbtools.Toolset
	delimiter rune
	logger    *logger.Logger
	progress  Progress
}

// New creates a Converter. A nil logger discards diagnostics and a nil
// progress reports nothing.
func New(tools mdbtools.Toolset, delimiter rune, log *logger.Logger, progress Progress) (*Converter, error) {
	if tools == nil {
		return nil, fmt.Errorf("toolset is nil")
	}
	if delimiter == 0 {
		delimiter = ','
	}
	if log == nil {
		log = logger.NewNop()
	}
	if progress == nil {
		progress = nopProgress{}
	}

	return &Converter{
		tools:     tools,
		delimiter: delimiter,
		logger:    log,
		progress:  progress,
	}, nil
}

// Convert builds the document for source. It fails only when the source is
// missing, no tables are listed, or ctx is cancelled; individual tables that
// cannot be exported or parsed are recorded with no rows.
func (c *Converter) Convert(ctx context.Context, source string) (*types.Document, error) {
	if err := checkSource(source); err != nil {
		return nil, err
	}

	c.progress.Start(source)

	tables, err := c.listOrFail(ctx, source)
	if err != nil {
		return nil, err
	}

	c.progress.TablesFound(tables)

	doc := types.NewDocument(DatabaseName(source))
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("conversion interrupted: %w", err)
		}
		c.progress.TableStarted(table)
		doc.SetTable(table, c.ExportTable(ctx, source, table))
	}

	c.logger.Debugw("Conversion complete",
		"tables", doc.TableCount(),
		"rows", doc.RowCount(),
	)

	return doc, nil
}

// Tables lists the tables of source. Like Convert, it fails when the source
// is missing or no tables are listed.
func (c *Converter) Tables(ctx context.Context, source string) ([]string, error) {
	if err := checkSource(source); err != nil {
		return nil, err
	}
	return c.listOrFail(ctx, source)
}

func (c *Converter) listOrFail(ctx context.Context, source string) ([]string, error) {
	tables := c.ListTables(ctx, source)
	if len(tables) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("listing interrupted: %w", err)
		}
		return nil, fmt.Errorf("%w: %s", ErrNoTables, source)
	}
	return tables, nil
}

// ListTables returns the table names of source. A failing listing utility is
// logged and reported as no tables.
func (c *Converter) ListTables(ctx context.Context, source string) []string {
	tables, err := c.tools.ListTables(ctx, source)
	if err != nil {
		c.logger.WithSource(source).Errorw("Error getting tables", "error", err)
		return nil
	}
	return tables
}

// ExportTable exports and coerces one table. Export and parse failures are
// logged and yield an empty row list; they never abort the run.
func (c *Converter) ExportTable(ctx context.Context, source, table string) []*types.Row {
	log := c.logger.WithTable(table)

	text, err := c.tools.ExportTable(ctx, source, table)
	if err != nil {
		log.Warnw("Error exporting table", "error", err)
		c.progress.TableFailed(table)
		return []*types.Row{}
	}
	if text == "" {
		log.Warn("Export produced no output")
		c.progress.TableFailed(table)
		return []*types.Row{}
	}

	rows, err := ParseTable(text, c.delimiter)
	if err != nil {
		log.Warnw("Error parsing CSV, table left empty", "error", err)
		rows = []*types.Row{}
	}

	c.progress.TableDone(table, len(rows))
	return rows
}

func checkSource(source string) error {
	info, err := os.Stat(source)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, source)
	}
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("source %s is a directory", source)
	}
	return nil
}
