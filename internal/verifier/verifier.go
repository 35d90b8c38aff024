// Package verifier checks that loaded tables hold the expected number of rows.
package verifier

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/mdb2json/internal/logger"
	"github.com/dbsmedya/mdb2json/internal/sqlutil"
)

// VerificationMethod defines how to verify a load.
type VerificationMethod string

const (
	// MethodCount compares table row counts with the expected counts.
	MethodCount VerificationMethod = "count"
	// MethodSkip skips verification entirely
	MethodSkip VerificationMethod = "skip"
)

// VerifyResult holds verification results for a single table.
type VerifyResult struct {
	Table         string
	ExpectedCount int64
	ActualCount   int64
	Match         bool
	ErrorMessage  string
}

// VerifyStats contains overall verification statistics.
type VerifyStats struct {
	TablesVerified int
	TablesPassed   int
	TablesFailed   int
	TotalRows      int64
	Method         VerificationMethod
	Results        []VerifyResult
}

// Verifier compares loaded tables with the counts the loader reported.
type Verifier struct {
	db     *sql.DB
	method VerificationMethod
	logger *logger.Logger
}

// NewVerifier creates a new verifier. An empty method means MethodCount.
func NewVerifier(db *sql.DB, method VerificationMethod, log *logger.Logger) (*Verifier, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	if method == "" {
		method = MethodCount
	}
	if method != MethodCount && method != MethodSkip {
		return nil, fmt.Errorf("unsupported verification method: %s", method)
	}

	return &Verifier{
		db:     db,
		method: method,
		logger: log,
	}, nil
}

// Verify checks each table in order against expected. Every table is checked
// even after a mismatch; the returned error reports how many failed.
func (v *Verifier) Verify(ctx context.Context, tables []string, expected map[string]int64) (*VerifyStats, error) {
	if v.method == MethodSkip {
		v.logger.Info("Verification SKIPPED (method=skip)")
		return &VerifyStats{
			Method: MethodSkip,
		}, nil
	}

	stats := &VerifyStats{
		Method: v.method,
	}

	v.logger.Infof("Starting verification (method=%s) for %d tables", v.method, len(tables))

	for _, table := range tables {
		want, ok := expected[table]
		if !ok {
			v.logger.Debugf("Skipping table %q (not loaded)", table)
			continue
		}

		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("verification interrupted: %w", err)
		}

		result, err := v.verifyByCount(ctx, table, want)
		if err != nil {
			return stats, fmt.Errorf("verification failed for table %s: %w", table, err)
		}

		stats.TablesVerified++
		stats.TotalRows += result.ActualCount
		stats.Results = append(stats.Results, *result)

		if result.Match {
			stats.TablesPassed++
			v.logger.Debugf("Verification PASSED for table %q (%d rows)", table, result.ActualCount)
		} else {
			stats.TablesFailed++
			v.logger.Errorf("Verification FAILED for table %q: %s", table, result.ErrorMessage)
		}
	}

	v.logger.Infof("Verification complete: %d tables verified, %d passed, %d failed, %d total rows",
		stats.TablesVerified, stats.TablesPassed, stats.TablesFailed, stats.TotalRows)

	if stats.TablesFailed > 0 {
		return stats, fmt.Errorf("verification failed: %d tables had mismatches", stats.TablesFailed)
	}

	return stats, nil
}

// verifyByCount compares the table's row count with want.
func (v *Verifier) verifyByCount(ctx context.Context, table string, want int64) (*VerifyResult, error) {
	query := "SELECT COUNT(*) FROM " + sqlutil.QuoteIdentifier(table)

	var count int64
	if err := v.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	result := &VerifyResult{
		Table:         table,
		ExpectedCount: want,
		ActualCount:   count,
		Match:         count == want,
	}
	if !result.Match {
		result.ErrorMessage = fmt.Sprintf("row count mismatch: expected=%d, actual=%d", want, count)
	}

	return result, nil
}
