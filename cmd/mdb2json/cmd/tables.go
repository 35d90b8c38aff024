package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mdb2json/internal/logger"
	"github.com/dbsmedya/mdb2json/internal/report"
)

var tablesRows bool

var tablesCmd = &cobra.Command{
	Use:   "tables <source>",
	Short: "List the tables of an Access file",
	Long: `Tables prints the table names of an Access file in the order the listing
utility reports them.

With --rows each table is exported and its row count is shown; tables that
cannot be exported show "-".

Example:
  mdb2json tables pesmi.mdb
  mdb2json tables pesmi.mdb --rows`,
	Args: cobra.ExactArgs(1),
	RunE: runTables,
}

func init() {
	tablesCmd.Flags().BoolVar(&tablesRows, "rows", false,
		"Export each table and show its row count")

	rootCmd.AddCommand(tablesCmd)
}

// failureTracker records which tables failed to export.
type failureTracker struct {
	failed map[string]bool
}

func (f *failureTracker) Start(string)          {}
func (f *failureTracker) TablesFound([]string)  {}
func (f *failureTracker) TableStarted(string)   {}
func (f *failureTracker) TableDone(string, int) {}
func (f *failureTracker) TableFailed(table string) {
	f.failed[table] = true
}

func runTables(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := loadConfig(GetCLIOverrides())
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := signalContext(log)
	defer cancel()

	tracker := &failureTracker{failed: make(map[string]bool)}
	conv, err := newConverter(cfg, log, tracker)
	if err != nil {
		return err
	}

	source := args[0]
	tables, err := conv.Tables(ctx, source)
	if err != nil {
		return err
	}

	listing := make([]report.TableCount, len(tables))
	for i, table := range tables {
		listing[i] = report.TableCount{Name: table, Rows: -1}
		if !tablesRows {
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("listing interrupted: %w", err)
		}
		rows := conv.ExportTable(ctx, source, table)
		if !tracker.failed[table] {
			listing[i].Rows = len(rows)
		}
	}

	newPrinter(cmd).Tables(listing)
	return nil
}
