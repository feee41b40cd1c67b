package counting

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// The insert race cannot be provoked reliably against a real database, so
// these tests script it: the first UPDATE misses, the INSERT collides with
// a concurrent scanner, and the retry UPDATE decides the outcome.
func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return NewStore(gormDB), mock
}

// scanWithOverrides supplies description and expected qty so the insert path
// skips the virtual-item lookup.
func scanWithOverrides() ScanRequest {
	desc := "widget"
	expected := 5
	return ScanRequest{Code: "X1", Increment: 1, Description: &desc, ExpectedQty: &expected}
}

func TestUpsertCount_InsertRaceWonOnRetry(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("UPDATE `physical_items`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `physical_items`").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'CNT-001-X1'"))
	mock.ExpectExec("UPDATE `physical_items`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT \\* FROM `physical_items`").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "session_id", "code", "qty", "description", "expected_qty"}).
			AddRow(1, "CNT-001", "X1", 2, "widget", 5))

	items, err := store.UpsertCount(context.Background(), "CNT-001", scanWithOverrides())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Qty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCount_InsertRaceLostTwice(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("UPDATE `physical_items`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `physical_items`").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'CNT-001-X1'"))
	mock.ExpectExec("UPDATE `physical_items`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.UpsertCount(context.Background(), "CNT-001", scanWithOverrides())
	assert.ErrorIs(t, err, ErrConcurrency)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertCount_InsertErrorIsNotSwallowed(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectExec("UPDATE `physical_items`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO `physical_items`").
		WillReturnError(errors.New("table is read only"))

	_, err := store.UpsertCount(context.Background(), "CNT-001", scanWithOverrides())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConcurrency)
}
