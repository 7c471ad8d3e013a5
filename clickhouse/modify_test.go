package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/stretchr/testify/require"
)

func newModifyingFdw(t *testing.T) (*ClickHouseFdw, *fakeClient, *fdw.CollectReporter) {
	t.Helper()
	client := newFakeClient()
	r := &fdw.CollectReporter{}
	w := NewClickHouseFdwWithClient(client, r)
	w.BeginModify(context.Background(), eventsOpts)
	require.Empty(t, r.Errors())
	return w, client, r
}

func TestDelete(t *testing.T) {
	w, client, r := newModifyingFdw(t)
	w.Delete(context.Background(), cell.I64(42))
	require.Equal(t, []string{"alter table events delete where id = 42"}, client.execs)
	require.Empty(t, r.Errors())
}

func TestDeleteStringRowID(t *testing.T) {
	require.Equal(t, `alter table events delete where id = 'a\'b'`, DeleteStmt("events", "id", cell.String("a'b")))
}

func TestUpdateSkipsRowIDAndRendersNull(t *testing.T) {
	w, client, _ := newModifyingFdw(t)
	row := cell.NewRow()
	row.Push("id", cell.I64(7))
	row.Push("name", cell.String("bob"))
	row.Push("x", nil)
	row.Push("active", cell.Bool(true))

	w.Update(context.Background(), cell.I64(7), row)
	require.Equal(t, []string{"alter table events update name = 'bob', x = null, active = true where id = 7"}, client.execs)
}

func TestUpdateOnlyRowIDIsSkipped(t *testing.T) {
	w, client, r := newModifyingFdw(t)
	row := cell.NewRow()
	row.Push("id", cell.I64(7))

	w.Update(context.Background(), cell.I64(7), row)
	require.Empty(t, client.execs)
	require.Empty(t, r.Errors())
}

func TestUpdateMissingRowID(t *testing.T) {
	w, client, r := newModifyingFdw(t)
	row := cell.NewRow()
	row.Push("name", cell.String("bob"))

	w.Update(context.Background(), nil, row)
	require.Empty(t, client.execs)
	require.ErrorIs(t, r.Errors()[0], ErrMissingRowID)
}

func TestUpdateTimestampLiteral(t *testing.T) {
	row := cell.NewRow()
	row.Push("seen", cell.Timestamp(time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)))
	sql, ok := UpdateStmt("events", "id", cell.I64(1), row)
	require.True(t, ok)
	require.Equal(t, "alter table events update seen = toDateTime64('2023-01-02 03:04:05', 9, 'UTC') where id = 1", sql)
}

func TestInsert(t *testing.T) {
	w, client, r := newModifyingFdw(t)
	row := cell.NewRow()
	row.Push("id", cell.I64(1))
	row.Push("name", cell.String("a"))
	row.Push("gone", nil)
	row.Push("active", cell.Bool(true))
	row.Push("score", cell.F64(0.5))

	w.Insert(context.Background(), row)
	require.Empty(t, r.Errors())
	require.Len(t, client.inserts, 1)

	ins := client.inserts[0]
	require.Equal(t, "events", ins.table)
	require.Equal(t, 1, ins.block.RowCount())
	require.Equal(t, []string{"id", "name", "active", "score"}, ins.block.ColumnNames())
	require.Equal(t, []any{int64(1), "a", uint8(1), 0.5}, ins.block.Row(0))
}

func TestInsertUnsupportedTypeRejectsRow(t *testing.T) {
	w, client, r := newModifyingFdw(t)
	row := cell.NewRow()
	row.Push("id", cell.I64(1))
	row.Push("small", cell.I32(3))

	w.Insert(context.Background(), row)
	require.Empty(t, client.inserts)
	require.True(t, r.HasCode(fdw.ErrCodeInvalidDataType))
}

func TestInsertAllNullRow(t *testing.T) {
	w, client, r := newModifyingFdw(t)
	row := cell.NewRow()
	row.Push("id", nil)

	w.Insert(context.Background(), row)
	require.Empty(t, client.inserts)
	require.ErrorIs(t, r.Errors()[0], ErrNoValues)
}

func TestModifyRemoteFailuresAreReported(t *testing.T) {
	w, client, r := newModifyingFdw(t)
	client.execErr = errRemote
	client.insertErr = errRemote

	row := cell.NewRow()
	row.Push("id", cell.I64(1))
	row.Push("name", cell.String("a"))
	w.Insert(context.Background(), row)
	w.Update(context.Background(), cell.I64(1), row)
	w.Delete(context.Background(), cell.I64(1))

	errs := r.Errors()
	require.Len(t, errs, 3)
	for _, err := range errs {
		require.Equal(t, fdw.ErrCodeFDW, err.Code)
		require.ErrorIs(t, err, errRemote)
	}
	require.Equal(t, "insert failed", errs[0].Msg)
	require.Equal(t, "update failed", errs[1].Msg)
	require.Equal(t, "delete failed", errs[2].Msg)
}

func TestBeginModifyBlankIdentityIsInert(t *testing.T) {
	client := newFakeClient()
	r := &fdw.CollectReporter{}
	w := NewClickHouseFdwWithClient(client, r)
	w.BeginModify(context.Background(), fdw.Options{fdw.OptTable: "events", fdw.OptRowIDColumn: ""})
	require.True(t, r.HasCode(fdw.ErrCodeOptionMissing))

	row := cell.NewRow()
	row.Push("id", cell.I64(1))
	w.Insert(context.Background(), row)
	w.Delete(context.Background(), cell.I64(1))
	require.Empty(t, client.inserts)
	require.Empty(t, client.execs)
	w.EndModify(context.Background())
}
