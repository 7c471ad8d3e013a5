package fdw

import (
	"context"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/danthegoodman1/chfdw/gologger"
)

var (
	logger = gologger.NewLogger()
)

const (
	OptConnString  = "conn_string"
	OptTable       = "table"
	OptRowIDColumn = "rowid_column"
)

type (
	// Options is the string-keyed option set of a foreign table.
	Options map[string]string

	Sort struct {
		Field      string
		Reversed   bool
		NullsFirst bool
	}

	Limit struct {
		Count  int64
		Offset int64
	}

	// ForeignDataWrapper is the lifecycle a host engine drives for one foreign
	// table access session. Every method blocks until the remote store has
	// answered. Failures are sent to the session's Reporter and the method
	// degrades to an empty or no-op result.
	ForeignDataWrapper interface {
		// GetRelSize returns the estimated row count and average row width.
		// Sorts and limit are accepted but not pushed down.
		GetRelSize(ctx context.Context, quals []Qual, columns []string, sorts []Sort, limit *Limit, opts Options) (rows int64, width int32)
		BeginScan(ctx context.Context, quals []Qual, columns []string, sorts []Sort, limit *Limit, opts Options)
		// IterScan returns the next row, or nil at end of data.
		IterScan(ctx context.Context) *cell.Row
		EndScan(ctx context.Context)

		BeginModify(ctx context.Context, opts Options)
		Insert(ctx context.Context, row *cell.Row)
		Update(ctx context.Context, rowID *cell.Cell, newRow *cell.Row)
		Delete(ctx context.Context, rowID *cell.Cell)
		EndModify(ctx context.Context)
	}
)

// RequireOption returns the named option. A missing key is reported as
// ConfigurationMissing and yields "". A present but empty value is returned
// as is without a report.
func RequireOption(name string, opts Options, r Reporter) string {
	v, ok := opts[name]
	if !ok {
		Report(r, NewError(ErrCodeOptionMissing, "required option `"+name+"` not specified", nil))
		return ""
	}
	return v
}
