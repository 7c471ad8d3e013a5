package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/danthegoodman1/chfdw/parquet_accumulator"
	"github.com/danthegoodman1/chfdw/partitioner"
	"github.com/danthegoodman1/chfdw/utils"
	"github.com/rs/zerolog"
	"github.com/xitongsys/parquet-go/writer"
)

type (
	// Writer stores one finished export file.
	Writer interface {
		WriteFile(ctx context.Context, fileName string, byteStream io.Reader, contentType *string) error
	}

	Request struct {
		Columns     []string
		Quals       []fdw.Qual
		Partitioner []partitioner.PartitionPlan
	}

	Stats struct {
		NumRows      int64
		NumFiles     int64
		BytesWritten int64
		TimeMS       int64
		Files        []string
	}

	partitionData struct {
		Accumulator parquet_accumulator.ParquetSchemaAccumulator
		Rows        []*cell.Row
	}
)

// Export scans the foreign table through w and writes the rows as one
// parquet file per partition under prefix/name/<partition>/. Scan errors go
// to w's reporter; the caller decides whether a partial export counts.
func Export(ctx context.Context, w fdw.ForeignDataWrapper, opts fdw.Options, req Request, prefix, name string, out Writer) (*Stats, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	estimate, _ := w.GetRelSize(ctx, req.Quals, req.Columns, nil, nil, opts)
	logger.Debug().Int64("estimatedRows", estimate).Msg("starting export scan")

	parts := make(map[string]*partitionData)
	var order []string

	w.BeginScan(ctx, req.Quals, req.Columns, nil, nil, opts)
	for row := w.IterScan(ctx); row != nil; row = w.IterScan(ctx) {
		partID, err := partitioner.GetRowPartition(row.Map(), req.Partitioner)
		if err != nil {
			w.EndScan(ctx)
			return nil, fmt.Errorf("error getting partition for row: %w", err)
		}
		p, exists := parts[partID]
		if !exists {
			p = &partitionData{Accumulator: parquet_accumulator.NewParquetAccumulator()}
			parts[partID] = p
			order = append(order, partID)
		}
		p.Rows = append(p.Rows, row)
		p.Accumulator.WriteRow(row)
	}
	w.EndScan(ctx)

	stats := &Stats{}
	for _, partID := range order {
		partData := parts[partID]
		b, err := writeParquet(partData)
		if err != nil {
			return nil, fmt.Errorf("error writing partition %q: %w", partID, err)
		}

		byteLen := b.Len()
		fileName := path.Join(prefix, name, partID, fmt.Sprintf("%s.parquet", utils.GenKSortedID("")))
		if err := out.WriteFile(ctx, fileName, b, utils.Ptr("application/vnd.apache.parquet")); err != nil {
			return nil, fmt.Errorf("error uploading %s: %w", fileName, err)
		}

		logger.Debug().Str("partition", partID).Strs("columns", partData.Accumulator.GetColumnNames()).Strs("types", partData.Accumulator.GetColumnTypes()).Msg("wrote partition")

		stats.NumRows += int64(len(partData.Rows))
		stats.BytesWritten += int64(byteLen)
		stats.NumFiles++
		stats.Files = append(stats.Files, fileName)
	}

	stats.TimeMS = time.Since(start).Milliseconds()
	logger.Debug().Int64("rows", stats.NumRows).Int64("files", stats.NumFiles).Msg("export done")
	return stats, nil
}

func writeParquet(partData *partitionData) (*bytes.Buffer, error) {
	parquetSchema, err := partData.Accumulator.GetSchemaString()
	if err != nil {
		return nil, fmt.Errorf("error in GetSchemaString: %w", err)
	}

	var b bytes.Buffer
	pw, err := writer.NewJSONWriterFromWriter(parquetSchema, &b, 4)
	if err != nil {
		return nil, fmt.Errorf("error in NewJSONWriterFromWriter: %w", err)
	}

	for _, row := range partData.Rows {
		rowBytes, err := parquet_accumulator.RowJSON(row)
		if err != nil {
			return nil, fmt.Errorf("error in RowJSON: %w", err)
		}
		if err = pw.Write(string(rowBytes)); err != nil {
			return nil, fmt.Errorf("error in pw.Write for row %s: %w", string(rowBytes), err)
		}
	}
	if err = pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("error in pw.WriteStop: %w", err)
	}
	return &b, nil
}
