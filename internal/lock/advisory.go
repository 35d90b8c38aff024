// Package lock provides MySQL advisory locking so that two loads never write
// into the same database at once.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrLockTimeout is returned when another instance holds the lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// TimeoutShort is how long AcquireOrFail waits, in seconds.
const TimeoutShort = 1

// AdvisoryLock is a named MySQL lock taken with GET_LOCK().
// GET_LOCK is scoped to a session, so the lock pins one pooled connection
// from acquisition until release.
type AdvisoryLock struct {
	db       *sql.DB
	lockName string
	conn     *sql.Conn
}

// NewAdvisoryLock creates a lock with the given name. Nothing is acquired
// until AcquireLock is called.
func NewAdvisoryLock(db *sql.DB, lockName string) *AdvisoryLock {
	return &AdvisoryLock{
		db:       db,
		lockName: lockName,
	}
}

// AcquireLock waits up to timeoutSeconds for the lock and reports whether it
// was obtained.
//
// MySQL GET_LOCK() return values:
//   - 1: Lock was obtained successfully
//   - 0: Timeout was reached without obtaining the lock
//   - NULL: An error occurred (e.g., out of memory, thread killed)
func (a *AdvisoryLock) AcquireLock(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.conn != nil {
		return true, nil
	}

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to reserve connection: %w", err)
	}

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.lockName, timeoutSeconds).Scan(&result); err != nil {
		conn.Close()
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}

	if !result.Valid {
		conn.Close()
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q (possible database error)", a.lockName)
	}

	switch result.Int64 {
	case 1:
		a.conn = conn
		return true, nil
	case 0:
		conn.Close()
		return false, nil
	default:
		conn.Close()
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

// AcquireOrFail acquires the lock with a short timeout and returns
// ErrLockTimeout if another instance holds it.
func (a *AdvisoryLock) AcquireOrFail(ctx context.Context) error {
	acquired, err := a.AcquireLock(ctx, TimeoutShort)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another instance", ErrLockTimeout, a.lockName)
	}
	return nil
}

// ReleaseLock releases the lock and returns its connection to the pool.
// Releasing a lock that is not held is a no-op.
func (a *AdvisoryLock) ReleaseLock(ctx context.Context) error {
	if a.conn == nil {
		return nil
	}
	conn := a.conn
	a.conn = nil
	defer conn.Close()

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.lockName).Scan(&result); err != nil {
		return fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}
	if !result.Valid || result.Int64 != 1 {
		return fmt.Errorf("lock %q was not held by this session", a.lockName)
	}
	return nil
}

// IsHeld reports whether this instance holds the lock.
func (a *AdvisoryLock) IsHeld() bool {
	return a.conn != nil
}

// LockName returns the name of the advisory lock.
func (a *AdvisoryLock) LockName() string {
	return a.lockName
}

// LoadLockName returns the lock name guarding loads into database.
// Example: LoadLockName("legacy db") -> "mdb2json:load:legacy_db"
func LoadLockName(database string) string {
	sanitized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, database)

	// MySQL limits lock names to 64 characters.
	name := "mdb2json:load:" + sanitized
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}
