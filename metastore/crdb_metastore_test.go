package metastore

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/stretchr/testify/require"
)

var ftCols = []string{"name", "conn_string", "remote_table", "rowid_column", "created_at", "updated_at"}

// plainTx runs f in a single plain transaction, without crdb retry savepoints
func plainTx(ctx context.Context, db *sql.DB, _ time.Duration, f func(ctx context.Context, tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := f(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func newMockStore(t *testing.T) (*CRDBMetaStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	ms := NewCRDBMetaStore(db)
	ms.tryTimeout = time.Second
	ms.execTx = plainTx
	return ms, mock
}

func TestGetForeignTable(t *testing.T) {
	ms, mock := newMockStore(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectForeignTables + ` where name = $1`)).
		WithArgs("events").
		WillReturnRows(sqlmock.NewRows(ftCols).AddRow("events", "clickhouse://localhost:9000", "default.events", "id", now, now))

	ft, err := ms.GetForeignTable(context.Background(), "events")
	require.NoError(t, err)
	require.Equal(t, "default.events", ft.Table)
	require.Equal(t, fdw.Options{
		fdw.OptConnString:  "clickhouse://localhost:9000",
		fdw.OptTable:       "default.events",
		fdw.OptRowIDColumn: "id",
	}, ft.Options())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForeignTableNotFound(t *testing.T) {
	ms, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta(selectForeignTables + ` where name = $1`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(ftCols))

	_, err := ms.GetForeignTable(context.Background(), "nope")
	require.ErrorIs(t, err, ErrTableNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListForeignTables(t *testing.T) {
	ms, mock := newMockStore(t)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectForeignTables + ` order by name`)).
		WillReturnRows(sqlmock.NewRows(ftCols).
			AddRow("a", "", "a", "id", now, now).
			AddRow("b", "", "b", "key", now, now))

	tables, err := ms.ListForeignTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 2)
	require.Equal(t, "key", tables[1].RowIDColumn)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateForeignTable(t *testing.T) {
	ms, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`select 1 from foreign_tables where name = $1`)).
		WithArgs("events").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))
	mock.ExpectExec(regexp.QuoteMeta(`insert into foreign_tables (name, conn_string, remote_table, rowid_column) values ($1, $2, $3, $4)`)).
		WithArgs("events", "", "events", "id").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := ms.CreateForeignTable(context.Background(), ForeignTable{Name: "events", Table: "events", RowIDColumn: "id"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateForeignTableExists(t *testing.T) {
	ms, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`select 1 from foreign_tables where name = $1`)).
		WithArgs("events").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectRollback()

	err := ms.CreateForeignTable(context.Background(), ForeignTable{Name: "events", Table: "events", RowIDColumn: "id"})
	require.ErrorIs(t, err, ErrTableExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateForeignTableInvalid(t *testing.T) {
	ms, mock := newMockStore(t)
	err := ms.CreateForeignTable(context.Background(), ForeignTable{Name: "events", Table: "events"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDropForeignTable(t *testing.T) {
	ms, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta(`delete from foreign_tables where name = $1`)).
		WithArgs("events").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`delete from foreign_tables where name = $1`)).
		WithArgs("events").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, ms.DropForeignTable(context.Background(), "events"))
	require.ErrorIs(t, ms.DropForeignTable(context.Background(), "events"), ErrTableNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
