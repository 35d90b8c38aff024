package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dbsmedya/mdb2json/internal/logger"
	"github.com/dbsmedya/mdb2json/internal/sqlutil"
	"github.com/dbsmedya/mdb2json/internal/types"
)

// LoadStats contains statistics about a load run.
type LoadStats struct {
	TablesLoaded  int
	TablesSkipped int // Tables with no rows
	TablesFailed  int
	RowsLoaded    int64
	RowsPerTable  map[string]int64
	// ExpectedRows is the row count each loaded table must hold after the
	// load: rows present before it plus rows inserted.
	ExpectedRows map[string]int64
	Failed       []string
	Duration     time.Duration
}

// Loader writes the tables of a converted document into a SQL database, one
// transaction per table.
type Loader struct {
	db      *sql.DB
	replace bool
	logger  *logger.Logger
}

// NewLoader creates a loader. With replace set, each table is dropped before
// it is recreated.
func NewLoader(db *sql.DB, replace bool, log *logger.Logger) (*Loader, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Loader{db: db, replace: replace, logger: log}, nil
}

// Load writes every non-empty table of doc. A table that fails is rolled
// back, logged and counted; the remaining tables are still loaded.
// Only context cancellation stops the run early.
func (l *Loader) Load(ctx context.Context, doc *types.Document) (*LoadStats, error) {
	startTime := time.Now()

	stats := &LoadStats{
		RowsPerTable: make(map[string]int64),
		ExpectedRows: make(map[string]int64),
	}

	l.logger.Infof("Loading %d tables (replace=%t)", doc.TableCount(), l.replace)

	for _, table := range doc.TableNames() {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("load interrupted: %w", err)
		}

		rows, _ := doc.Table(table)
		if len(rows) == 0 {
			l.logger.Debugf("Skipping table %q (no rows)", table)
			stats.TablesSkipped++
			continue
		}

		before, inserted, err := l.loadTable(ctx, table, rows)
		if err != nil {
			if ctx.Err() != nil {
				return stats, fmt.Errorf("load interrupted: %w", ctx.Err())
			}
			l.logger.Errorf("Failed to load table %q: %v", table, err)
			stats.TablesFailed++
			stats.Failed = append(stats.Failed, table)
			continue
		}

		stats.TablesLoaded++
		stats.RowsLoaded += inserted
		stats.RowsPerTable[table] = inserted
		stats.ExpectedRows[table] = before + inserted

		l.logger.Debugf("Loaded %d rows into table %q", inserted, table)
	}

	stats.Duration = time.Since(startTime)

	l.logger.Infof("Load complete: %d tables, %d rows, %d skipped, %d failed, duration: %s",
		stats.TablesLoaded,
		stats.RowsLoaded,
		stats.TablesSkipped,
		stats.TablesFailed,
		stats.Duration,
	)

	return stats, nil
}

// loadTable creates the table if needed and inserts rows in one transaction.
// It returns the row count found before inserting and the inserted count.
func (l *Loader) loadTable(ctx context.Context, table string, rows []*types.Row) (before, inserted int64, err error) {
	columns := rows[0].Columns()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				l.logger.Errorf("Failed to rollback transaction for table %q: %v", table, rbErr)
			}
		}
	}()

	if l.replace {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+sqlutil.QuoteIdentifier(table)); err != nil {
			return 0, 0, fmt.Errorf("failed to drop table: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, buildCreateTableQuery(table, columns, rows)); err != nil {
		return 0, 0, fmt.Errorf("failed to create table: %w", err)
	}

	countQuery := "SELECT COUNT(*) FROM " + sqlutil.QuoteIdentifier(table)
	if err := tx.QueryRowContext(ctx, countQuery).Scan(&before); err != nil {
		return 0, 0, fmt.Errorf("failed to count existing rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, buildInsertQuery(table, columns))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(columns))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return 0, 0, err
		}
		for j, column := range columns {
			v, _ := row.Get(column)
			args[j] = sqlutil.BindValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, 0, fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	return before, inserted, nil
}

// buildCreateTableQuery returns a CREATE TABLE IF NOT EXISTS statement with
// column types inferred from the row values.
// Example: CREATE TABLE IF NOT EXISTS `Customers` (`id` BIGINT, `name` TEXT)
func buildCreateTableQuery(table string, columns []string, rows []*types.Row) string {
	defs := make([]byte, 0, 32*len(columns))
	values := make([]any, len(rows))
	for i, column := range columns {
		for j, row := range rows {
			values[j], _ = row.Get(column)
		}
		if i > 0 {
			defs = append(defs, ", "...)
		}
		defs = append(defs, sqlutil.QuoteIdentifier(column)...)
		defs = append(defs, ' ')
		defs = append(defs, sqlutil.ColumnType(values)...)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", sqlutil.QuoteIdentifier(table), defs)
}

// buildInsertQuery returns an INSERT statement with one placeholder per column.
// Example: INSERT INTO `Customers` (`id`, `name`) VALUES (?, ?)
func buildInsertQuery(table string, columns []string) string {
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		sqlutil.QuoteIdentifier(table),
		sqlutil.QuoteIdentifiers(columns),
		sqlutil.Placeholders(len(columns)),
	)
}
