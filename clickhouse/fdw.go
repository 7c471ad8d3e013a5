package clickhouse

import (
	"context"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/danthegoodman1/chfdw/gologger"
	"github.com/danthegoodman1/chfdw/utils"
	"github.com/rs/zerolog"
)

var (
	logger = gologger.NewLogger()

	_ fdw.ForeignDataWrapper = (*ClickHouseFdw)(nil)
)

type (
	// ClickHouseFdw serves one foreign table access session. It owns a single
	// remote session; with no session every operation returns nothing and
	// writes are skipped. It is not safe for concurrent use.
	ClickHouseFdw struct {
		ID string

		client   Client
		reporter fdw.Reporter
		scan     scanner
		modify   modifier
	}
)

// NewClickHouseFdw connects using the conn_string option. An empty
// conn_string gives a session-less wrapper silently; a failed connect is
// reported and gives the same.
func NewClickHouseFdw(ctx context.Context, opts fdw.Options, reporter fdw.Reporter) *ClickHouseFdw {
	var client Client
	connStr := fdw.RequireOption(fdw.OptConnString, opts, reporter)
	if connStr != "" {
		c, err := Connect(ctx, connStr)
		if err != nil {
			fdw.Report(reporter, fdw.NewError(fdw.ErrCodeConnection, "connection failed", err))
		} else {
			client = c
		}
	}
	return NewClickHouseFdwWithClient(client, reporter)
}

// NewClickHouseFdwWithClient wraps an already open client, which may be nil.
func NewClickHouseFdwWithClient(client Client, reporter fdw.Reporter) *ClickHouseFdw {
	if reporter == nil {
		reporter = fdw.LogReporter{}
	}
	return &ClickHouseFdw{
		ID:       utils.GenRandomID("ses_"),
		client:   client,
		reporter: reporter,
		scan:     scanner{client: client, reporter: reporter},
		modify:   modifier{client: client, reporter: reporter},
	}
}

// Connected reports whether the wrapper holds a remote session.
func (w *ClickHouseFdw) Connected() bool {
	return w.client != nil
}

func (w *ClickHouseFdw) Close() error {
	if w.client == nil {
		return nil
	}
	logger.Debug().Str("sessionID", w.ID).Msg("closing clickhouse session")
	err := w.client.Close()
	w.client = nil
	w.scan.client = nil
	w.modify.client = nil
	return err
}

func (w *ClickHouseFdw) ctx(ctx context.Context, table string) context.Context {
	return gologger.WithSession(ctx, w.ID, table)
}

func (w *ClickHouseFdw) GetRelSize(ctx context.Context, quals []fdw.Qual, columns []string, _ []fdw.Sort, _ *fdw.Limit, opts fdw.Options) (int64, int32) {
	ctx = w.ctx(ctx, opts[fdw.OptTable])
	rows, width := w.scan.estimate(ctx, quals, columns, opts)
	zerolog.Ctx(ctx).Debug().Int64("rows", rows).Int32("width", width).Msg("estimated rel size")
	return rows, width
}

func (w *ClickHouseFdw) BeginScan(ctx context.Context, _ []fdw.Qual, _ []string, _ []fdw.Sort, _ *fdw.Limit, opts fdw.Options) {
	if w.scan.state != scanSizeEstimated {
		zerolog.Ctx(w.ctx(ctx, opts[fdw.OptTable])).Debug().Str("state", w.scan.state.String()).Msg("begin scan without a size estimate")
	}
	w.scan.begin()
}

func (w *ClickHouseFdw) IterScan(ctx context.Context) *cell.Row {
	return w.scan.next(w.ctx(ctx, w.scan.table))
}

func (w *ClickHouseFdw) EndScan(context.Context) {
	w.scan.end()
}

func (w *ClickHouseFdw) BeginModify(_ context.Context, opts fdw.Options) {
	w.modify.begin(opts)
}

func (w *ClickHouseFdw) Insert(ctx context.Context, row *cell.Row) {
	w.modify.insert(w.ctx(ctx, w.modify.table), row)
}

func (w *ClickHouseFdw) Update(ctx context.Context, rowID *cell.Cell, newRow *cell.Row) {
	w.modify.update(w.ctx(ctx, w.modify.table), rowID, newRow)
}

func (w *ClickHouseFdw) Delete(ctx context.Context, rowID *cell.Cell) {
	w.modify.delete(w.ctx(ctx, w.modify.table), rowID)
}

func (w *ClickHouseFdw) EndModify(context.Context) {}
