package clickhouse

import (
	"context"
	"time"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/rs/zerolog"
)

type scanState uint8

const (
	scanIdle scanState = iota
	scanSizeEstimated
	scanScanning
)

func (s scanState) String() string {
	switch s {
	case scanIdle:
		return "idle"
	case scanSizeEstimated:
		return "size_estimated"
	case scanScanning:
		return "scanning"
	default:
		return "unknown"
	}
}

// scanner runs one remote select per scan and hands the buffered block out
// row by row. rowIdx never exceeds block.RowCount().
type scanner struct {
	client   Client
	reporter fdw.Reporter

	table    string
	rowIDCol string

	block     *Block
	rowIdx    int
	noColumns bool
	// failed stops the scan after a row could not be converted
	failed bool
	state  scanState
}

// estimate resolves the table identity, runs the query and keeps its result.
// It returns (rows, requested columns*8), or (0, 0) when nothing could be
// fetched.
func (s *scanner) estimate(ctx context.Context, quals []fdw.Qual, columns []string, opts fdw.Options) (int64, int32) {
	s.table = fdw.RequireOption(fdw.OptTable, opts, s.reporter)
	s.rowIDCol = fdw.RequireOption(fdw.OptRowIDColumn, opts, s.reporter)
	s.block = nil
	s.rowIdx = 0
	s.failed = false
	s.state = scanSizeEstimated
	if s.table == "" || s.rowIDCol == "" {
		return 0, 0
	}
	if s.client == nil {
		return 0, 0
	}

	logger := zerolog.Ctx(ctx)
	sql := Deparse(quals, columns, s.table)
	s.noColumns = len(columns) == 0

	st := time.Now()
	// the whole result is fetched up front
	block, err := s.client.Query(ctx, sql)
	if err != nil {
		fdw.Report(s.reporter, fdw.NewError(fdw.ErrCodeFDW, "query failed", err))
		return 0, 0
	}
	logger.Debug().Str("sql", sql).Int("rows", block.RowCount()).Str("durationHuman", time.Since(st).String()).Msg("fetched scan block")

	s.block = block
	if s.noColumns {
		return int64(block.RowCount()), 0
	}
	return int64(block.RowCount()), int32(block.ColumnCount() * 8)
}

func (s *scanner) begin() {
	s.rowIdx = 0
	s.failed = false
	s.state = scanScanning
}

// next returns the next row, or nil at end of data. After a conversion
// failure every call returns nil.
func (s *scanner) next(ctx context.Context) *cell.Row {
	if s.block == nil || s.failed || s.rowIdx >= s.block.RowCount() {
		return nil
	}

	row := cell.NewRow()
	if !s.noColumns {
		for _, col := range s.block.Columns {
			c, err := ToCell(col.Type, col.Values[s.rowIdx])
			if err != nil {
				s.failed = true
				zerolog.Ctx(ctx).Debug().Str("column", col.Name).Int("row", s.rowIdx).Msg("stopping scan on unconvertible value")
				fdw.Report(s.reporter, fdw.NewError(fdw.ErrCodeInvalidDataType, "column "+col.Name+" cannot be read", err))
				return nil
			}
			row.Push(col.Name, c)
		}
	}

	s.rowIdx++
	return row
}

func (s *scanner) end() {
	s.block = nil
	s.rowIdx = 0
	s.state = scanIdle
}
