package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/danthegoodman1/chfdw/clickhouse"
	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/danthegoodman1/chfdw/utils"
	"github.com/spf13/cobra"
)

var (
	connString  string
	table       string
	rowIDColumn string
	jsonOutput  bool

	ErrReported = errors.New("the wrapper reported errors")
)

var rootCmd = &cobra.Command{
	Use:   "chfdw",
	Short: "Drive a ClickHouse foreign table from the command line",
	Long: `chfdw runs the foreign table lifecycle (estimate, scan, insert, update, delete)
against a ClickHouse table, the same way a host database would.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&connString, "conn", "c", utils.GetEnvOrDefault("CLICKHOUSE_DSN", "clickhouse://localhost:9000"), "ClickHouse connection string")
	rootCmd.PersistentFlags().StringVarP(&table, "table", "t", "", "Remote table name")
	rootCmd.PersistentFlags().StringVarP(&rowIDColumn, "rowid", "r", "", "Column identifying a row")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")
	_ = rootCmd.MarkPersistentFlagRequired("table")
	_ = rootCmd.MarkPersistentFlagRequired("rowid")

	rootCmd.AddCommand(estimateCmd, scanCmd, insertCmd, updateCmd, deleteCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func options() fdw.Options {
	return fdw.Options{
		fdw.OptConnString:  connString,
		fdw.OptTable:       table,
		fdw.OptRowIDColumn: rowIDColumn,
	}
}

// openWrapper connects for a single command. Reports are collected and
// printed by finish.
func openWrapper(ctx context.Context) (*clickhouse.ClickHouseFdw, *fdw.CollectReporter, error) {
	r := &fdw.CollectReporter{}
	w := clickhouse.NewClickHouseFdw(ctx, options(), r)
	if r.HasCode(fdw.ErrCodeConnection) {
		return nil, nil, finish(r)
	}
	return w, r, nil
}

func finish(r *fdw.CollectReporter) error {
	errs := r.Errors()
	for _, e := range errs {
		pgErr := e.PgError()
		fmt.Fprintf(os.Stderr, "%s: %s (SQLSTATE %s)\n", pgErr.Severity, pgErr.Message, pgErr.Code)
	}
	if len(errs) > 0 {
		return ErrReported
	}
	return nil
}
