package main

import (
	"fmt"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/spf13/cobra"
)

var (
	columns []string
	wheres  []string
	limit   int
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Print the estimated row count and width of a scan",
	RunE: func(cmd *cobra.Command, args []string) error {
		quals, err := parseQuals(wheres)
		if err != nil {
			return err
		}
		w, r, err := openWrapper(cmd.Context())
		if err != nil {
			return err
		}
		defer w.Close()

		rows, width := w.GetRelSize(cmd.Context(), quals, columns, nil, nil, options())
		if jsonOutput {
			fmt.Printf("{\"rows\":%d,\"width\":%d}\n", rows, width)
		} else {
			fmt.Printf("rows=%d width=%d\n", rows, width)
		}
		return finish(r)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the table and print the rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		quals, err := parseQuals(wheres)
		if err != nil {
			return err
		}
		w, r, err := openWrapper(ctx)
		if err != nil {
			return err
		}
		defer w.Close()

		opts := options()
		w.GetRelSize(ctx, quals, columns, nil, nil, opts)
		w.BeginScan(ctx, quals, columns, nil, nil, opts)
		var rows []*cell.Row
		for row := w.IterScan(ctx); row != nil; row = w.IterScan(ctx) {
			rows = append(rows, row)
		}
		w.EndScan(ctx)

		if err := printRows(columns, rows); err != nil {
			return err
		}
		return finish(r)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{estimateCmd, scanCmd} {
		cmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to fetch, comma separated")
		cmd.Flags().StringArrayVarP(&wheres, "where", "w", nil, "Condition as `field op value`, may be repeated")
	}
	scanCmd.Flags().IntVarP(&limit, "limit", "l", 40, "Maximum number of rows to display (0 for unlimited)")
}

func parseQuals(wheres []string) ([]fdw.Qual, error) {
	quals := make([]fdw.Qual, 0, len(wheres))
	for _, where := range wheres {
		q, err := ParseQual(where)
		if err != nil {
			return nil, err
		}
		quals = append(quals, q)
	}
	return quals, nil
}
