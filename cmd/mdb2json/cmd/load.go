package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/mdb2json/internal/config"
	"github.com/dbsmedya/mdb2json/internal/database"
	"github.com/dbsmedya/mdb2json/internal/lock"
	"github.com/dbsmedya/mdb2json/internal/logger"
	"github.com/dbsmedya/mdb2json/internal/report"
	"github.com/dbsmedya/mdb2json/internal/sink"
	"github.com/dbsmedya/mdb2json/internal/verifier"
)

var (
	loadDriver     string
	loadDSN        string
	loadReplace    bool
	loadSkipVerify bool
	loadForce      bool
)

var loadCmd = &cobra.Command{
	Use:   "load <source>",
	Short: "Load the tables of an Access file into a SQL database",
	Long: `Load converts an Access file the same way as convert and writes each
non-empty table into a SQLite or MySQL database, one transaction per table.

Column types are inferred from the converted values (BIGINT, DOUBLE,
BOOLEAN or TEXT). Existing tables are appended to unless --replace is given.
After loading, row counts are verified unless verification is skipped.

Loads into MySQL take an advisory lock on the target database so that two
loads never interleave.

Example:
  mdb2json load pesmi.mdb --dsn pesmi.db
  mdb2json load pesmi.mdb --driver mysql --config mdb2json.yaml --replace`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadDriver, "driver", "",
		"Override database driver (sqlite, mysql)")
	loadCmd.Flags().StringVar(&loadDSN, "dsn", "",
		"Override the SQLite database path")
	loadCmd.Flags().BoolVar(&loadReplace, "replace", false,
		"Drop and recreate each table before loading")
	loadCmd.Flags().BoolVar(&loadSkipVerify, "skip-verify", false,
		"Skip row count verification after loading")
	loadCmd.Flags().BoolVar(&loadForce, "force", false,
		"Load even if the MySQL advisory lock cannot be acquired (use with caution)")

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	overrides := GetCLIOverrides()
	overrides.Driver = loadDriver
	overrides.DatabasePath = loadDSN
	overrides.SkipVerify = loadSkipVerify

	cfg, err := loadConfig(overrides)
	if err != nil {
		return err
	}
	if err := cfg.ValidateForLoad(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := signalContext(log)
	defer cancel()

	source := args[0]
	printer := newPrinter(cmd)
	conv, err := newConverter(cfg, log, printer)
	if err != nil {
		return err
	}

	doc, err := conv.Convert(ctx, source)
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.Driver == "mysql" {
		if !loadForce {
			loadLock := lock.NewAdvisoryLock(db, lock.LoadLockName(cfg.Database.Database))
			if err := loadLock.AcquireOrFail(ctx); err != nil {
				if errors.Is(err, lock.ErrLockTimeout) {
					return fmt.Errorf("another load into %q is running (use --force to override)", cfg.Database.Database)
				}
				return fmt.Errorf("failed to acquire load lock: %w", err)
			}
			defer func() {
				if err := loadLock.ReleaseLock(context.Background()); err != nil {
					log.Warnw("Failed to release load lock", "error", err)
				}
			}()
			log.Infow("Acquired advisory lock for load", "lock", loadLock.LockName())
		} else {
			log.Warn("Skipping advisory lock acquisition (--force flag used)")
		}
	}

	loader, err := sink.NewLoader(db, loadReplace, log.WithSource(source))
	if err != nil {
		return err
	}

	stats, err := loader.Load(ctx, doc)
	if err != nil {
		return err
	}

	summary := report.LoadSummary{
		Target:        describeTarget(&cfg.Database),
		TablesLoaded:  stats.TablesLoaded,
		TablesSkipped: stats.TablesSkipped,
		TablesFailed:  stats.Failed,
		RowsLoaded:    stats.RowsLoaded,
	}

	v, err := verifier.NewVerifier(db, verifier.VerificationMethod(cfg.Verification.Method), log)
	if err != nil {
		return err
	}
	verifyStats, verifyErr := v.Verify(ctx, doc.TableNames(), stats.ExpectedRows)
	if verifyStats != nil && verifyStats.Method != verifier.MethodSkip {
		summary.Verification = string(verifyStats.Method)
		summary.Verified = verifyErr == nil
	}

	printer.Loaded(summary)

	if verifyErr != nil {
		return verifyErr
	}
	return nil
}

// describeTarget returns a printable name for the configured database.
func describeTarget(cfg *config.DatabaseConfig) string {
	if cfg.Driver == "mysql" {
		return fmt.Sprintf("mysql://%s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
	}
	return cfg.Path
}
