package metastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danthegoodman1/chfdw/utils"
	"github.com/rs/zerolog"
)

const selectForeignTables = `select name, conn_string, remote_table, rowid_column, created_at, updated_at from foreign_tables`

type (
	TxFunc func(ctx context.Context, db *sql.DB, tryTimeout time.Duration, f func(ctx context.Context, tx *sql.Tx) error) error

	// CRDBMetaStore stores foreign tables in CockroachDB or Postgres.
	CRDBMetaStore struct {
		db         *sql.DB
		tryTimeout time.Duration
		execTx     TxFunc
	}

	rowScanner interface {
		Scan(dest ...any) error
	}
)

func NewCRDBMetaStore(db *sql.DB) *CRDBMetaStore {
	return &CRDBMetaStore{
		db:         db,
		tryTimeout: time.Second * 10,
		execTx:     utils.ReliableExecInTx,
	}
}

func (ms *CRDBMetaStore) CreateForeignTable(ctx context.Context, ft ForeignTable) error {
	if err := ft.Validate(); err != nil {
		return fmt.Errorf("invalid foreign table: %w", err)
	}
	err := ms.execTx(ctx, ms.db, ms.tryTimeout, func(ctx context.Context, tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `select 1 from foreign_tables where name = $1`, ft.Name).Scan(&exists)
		if err == nil {
			return ErrTableExists
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("error checking for existing table: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`insert into foreign_tables (name, conn_string, remote_table, rowid_column) values ($1, $2, $3, $4)`,
			ft.Name, ft.ConnString, ft.Table, ft.RowIDColumn,
		)
		if err != nil {
			return fmt.Errorf("error inserting foreign table: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Debug().Str("name", ft.Name).Str("remoteTable", ft.Table).Msg("created foreign table")
	return nil
}

func (ms *CRDBMetaStore) GetForeignTable(ctx context.Context, name string) (*ForeignTable, error) {
	var ft ForeignTable
	err := utils.ReliableExec(ctx, ms.db, ms.tryTimeout, func(ctx context.Context, conn *sql.Conn) error {
		err := scanForeignTable(conn.QueryRowContext(ctx, selectForeignTables+` where name = $1`, name), &ft)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTableNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

func (ms *CRDBMetaStore) ListForeignTables(ctx context.Context) ([]ForeignTable, error) {
	var tables []ForeignTable
	err := utils.ReliableExec(ctx, ms.db, ms.tryTimeout, func(ctx context.Context, conn *sql.Conn) error {
		tables = nil
		rows, err := conn.QueryContext(ctx, selectForeignTables+` order by name`)
		if err != nil {
			return fmt.Errorf("error in QueryContext: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var ft ForeignTable
			if err := scanForeignTable(rows, &ft); err != nil {
				return err
			}
			tables = append(tables, ft)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (ms *CRDBMetaStore) DropForeignTable(ctx context.Context, name string) error {
	return utils.ReliableExec(ctx, ms.db, ms.tryTimeout, func(ctx context.Context, conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `delete from foreign_tables where name = $1`, name)
		if err != nil {
			return fmt.Errorf("error in ExecContext: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("error in RowsAffected: %w", err)
		}
		if n == 0 {
			return ErrTableNotFound
		}
		logger.Debug().Str("name", name).Msg("dropped foreign table")
		return nil
	})
}

func (ms *CRDBMetaStore) Shutdown(context.Context) error {
	return ms.db.Close()
}

func scanForeignTable(row rowScanner, ft *ForeignTable) error {
	err := row.Scan(&ft.Name, &ft.ConnString, &ft.Table, &ft.RowIDColumn, &ft.CreatedAt, &ft.UpdatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("error scanning foreign table: %w", err)
	}
	return err
}
