package metastore

import (
	"context"
	"time"

	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/danthegoodman1/chfdw/gologger"
	"github.com/danthegoodman1/chfdw/utils"
	"github.com/go-playground/validator/v10"
)

var (
	logger = gologger.NewLogger()

	validate = validator.New()

	ErrTableNotFound = utils.PermError("foreign table not found")
	ErrTableExists   = utils.PermError("foreign table already exists")
)

type (
	// MetaStore keeps the foreign table definitions the gateway serves.
	MetaStore interface {
		CreateForeignTable(ctx context.Context, ft ForeignTable) error
		GetForeignTable(ctx context.Context, name string) (*ForeignTable, error)
		ListForeignTables(ctx context.Context) ([]ForeignTable, error)
		DropForeignTable(ctx context.Context, name string) error

		Shutdown(ctx context.Context) error
	}

	ForeignTable struct {
		Name string `validate:"required"`
		// ConnString may be empty, which serves the table with no remote session
		ConnString  string
		Table       string `validate:"required"`
		RowIDColumn string `validate:"required"`

		CreatedAt time.Time
		UpdatedAt time.Time
	}
)

func (ft ForeignTable) Validate() error {
	return validate.Struct(ft)
}

// Options returns the wrapper options for the table.
func (ft ForeignTable) Options() fdw.Options {
	return fdw.Options{
		fdw.OptConnString:  ft.ConnString,
		fdw.OptTable:       ft.Table,
		fdw.OptRowIDColumn: ft.RowIDColumn,
	}
}
