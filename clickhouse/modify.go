package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/rs/zerolog"
)

var (
	ErrNoValues     = errors.New("row has no non-null values")
	ErrMissingRowID = errors.New("missing row id")
)

// modifier turns host row mutations into ClickHouse statements. Updates and
// deletes are mutations (ALTER TABLE ... UPDATE/DELETE) that ClickHouse
// applies asynchronously by rewriting parts.
type modifier struct {
	client   Client
	reporter fdw.Reporter

	table    string
	rowIDCol string
	ready    bool
}

func (m *modifier) begin(opts fdw.Options) {
	m.table = fdw.RequireOption(fdw.OptTable, opts, m.reporter)
	m.rowIDCol = fdw.RequireOption(fdw.OptRowIDColumn, opts, m.reporter)
	m.ready = m.table != "" && m.rowIDCol != ""
	if !m.ready {
		fdw.Report(m.reporter, fdw.NewError(fdw.ErrCodeOptionMissing, "options `table` and `rowid_column` must not be empty", nil))
	}
}

func (m *modifier) active() bool {
	return m.client != nil && m.ready
}

func (m *modifier) insert(ctx context.Context, row *cell.Row) {
	if !m.active() {
		return
	}

	block, err := InsertBlock(row)
	if err != nil {
		code := fdw.ErrCodeFDW
		if errors.Is(err, fdw.ErrUnsupportedType) {
			code = fdw.ErrCodeInvalidDataType
		}
		fdw.Report(m.reporter, fdw.NewError(code, "insert failed", err))
		return
	}

	if err := m.client.Insert(ctx, m.table, block); err != nil {
		fdw.Report(m.reporter, fdw.NewError(fdw.ErrCodeFDW, "insert failed", err))
		return
	}
	zerolog.Ctx(ctx).Debug().Strs("columns", block.ColumnNames()).Msg("inserted row")
}

func (m *modifier) update(ctx context.Context, rowID *cell.Cell, newRow *cell.Row) {
	if !m.active() {
		return
	}
	if rowID == nil {
		fdw.Report(m.reporter, fdw.NewError(fdw.ErrCodeFDW, "update failed", ErrMissingRowID))
		return
	}

	sql, ok := UpdateStmt(m.table, m.rowIDCol, rowID, newRow)
	if !ok {
		zerolog.Ctx(ctx).Debug().Msg("update has no columns to set, skipping")
		return
	}
	m.exec(ctx, "update failed", sql)
}

func (m *modifier) delete(ctx context.Context, rowID *cell.Cell) {
	if !m.active() {
		return
	}
	if rowID == nil {
		fdw.Report(m.reporter, fdw.NewError(fdw.ErrCodeFDW, "delete failed", ErrMissingRowID))
		return
	}
	m.exec(ctx, "delete failed", DeleteStmt(m.table, m.rowIDCol, rowID))
}

func (m *modifier) exec(ctx context.Context, failMsg, sql string) {
	if err := m.client.Exec(ctx, sql); err != nil {
		fdw.Report(m.reporter, fdw.NewError(fdw.ErrCodeFDW, failMsg, err))
		return
	}
	zerolog.Ctx(ctx).Debug().Str("sql", sql).Msg("executed mutation")
}

// InsertBlock converts the non-null cells of row into a one row block. Any
// cell outside the outbound mapping rejects the whole row.
func InsertBlock(row *cell.Row) (*Block, error) {
	var names []string
	var vals []any
	for i, col := range row.Cols {
		c := row.Cells[i]
		if c == nil {
			continue
		}
		v, err := ToRemoteValue(c)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		names = append(names, col)
		vals = append(vals, v)
	}
	if len(names) == 0 {
		return nil, ErrNoValues
	}

	block := NewBlock(names, nil)
	if err := block.AppendRow(vals...); err != nil {
		return nil, fmt.Errorf("error in block.AppendRow: %w", err)
	}
	return block, nil
}

// UpdateStmt renders the mutation for one row. The row id column is never
// part of the SET list. ok is false when there is nothing to set.
func UpdateStmt(table, rowIDCol string, rowID *cell.Cell, newRow *cell.Row) (sql string, ok bool) {
	var sets []string
	for i, col := range newRow.Cols {
		if col == rowIDCol {
			continue
		}
		sets = append(sets, col+" = "+cell.Literal(newRow.Cells[i]))
	}
	if len(sets) == 0 {
		return "", false
	}
	return fmt.Sprintf("alter table %s update %s where %s = %s", table, strings.Join(sets, ", "), rowIDCol, cell.Literal(rowID)), true
}

func DeleteStmt(table, rowIDCol string, rowID *cell.Cell) string {
	return fmt.Sprintf("alter table %s delete where %s = %s", table, rowIDCol, cell.Literal(rowID))
}
