package lock

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndRelease(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT GET_LOCK\(\?, \?\)`).
		WithArgs("mdb2json:load:shop", TimeoutShort).
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(1))
	mock.ExpectQuery(`SELECT RELEASE_LOCK\(\?\)`).
		WithArgs("mdb2json:load:shop").
		WillReturnRows(sqlmock.NewRows([]string{"RELEASE_LOCK"}).AddRow(1))

	l := NewAdvisoryLock(db, "mdb2json:load:shop")
	require.NoError(t, l.AcquireOrFail(context.Background()))
	assert.True(t, l.IsHeld())

	// A second acquire while held does not query again.
	acquired, err := l.AcquireLock(context.Background(), TimeoutShort)
	require.NoError(t, err)
	assert.True(t, acquired)

	require.NoError(t, l.ReleaseLock(context.Background()))
	assert.False(t, l.IsHeld())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireOrFail_HeldElsewhere(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT GET_LOCK`).
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(0))

	l := NewAdvisoryLock(db, "mdb2json:load:shop")
	err = l.AcquireOrFail(context.Background())
	assert.True(t, errors.Is(err, ErrLockTimeout))
	assert.False(t, l.IsHeld())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcquireLock_Null(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT GET_LOCK`).
		WillReturnRows(sqlmock.NewRows([]string{"GET_LOCK"}).AddRow(nil))

	l := NewAdvisoryLock(db, "x")
	_, err = l.AcquireLock(context.Background(), TimeoutShort)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned NULL")
	assert.False(t, l.IsHeld())
}

func TestAcquireLock_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT GET_LOCK`).WillReturnError(errors.New("connection refused"))

	l := NewAdvisoryLock(db, "x")
	_, err = l.AcquireLock(context.Background(), TimeoutShort)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute GET_LOCK")
}

func TestReleaseLock_NotHeld(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := NewAdvisoryLock(db, "x")
	assert.NoError(t, l.ReleaseLock(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadLockName(t *testing.T) {
	assert.Equal(t, "mdb2json:load:shop", LoadLockName("shop"))
	assert.Equal(t, "mdb2json:load:legacy_db", LoadLockName("legacy db"))
	assert.Equal(t, "mdb2json:load:a_b_c", LoadLockName("a;b`c"))

	long := LoadLockName(strings.Repeat("x", 100))
	assert.Len(t, long, 64)
	assert.True(t, strings.HasPrefix(long, "mdb2json:load:"))
}
