package main

import (
	"fmt"

	"github.com/danthegoodman1/chfdw/datastore"
	"github.com/danthegoodman1/chfdw/export"
	"github.com/danthegoodman1/chfdw/partitioner"
	"github.com/danthegoodman1/chfdw/utils"
	"github.com/spf13/cobra"
)

var (
	exportDir  string
	partitions []string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Scan the table into partitioned parquet files on local disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		quals, err := parseQuals(wheres)
		if err != nil {
			return err
		}
		plans := make([]partitioner.PartitionPlan, len(partitions))
		for i, p := range partitions {
			if plans[i], err = ParsePartitionPlan(p); err != nil {
				return err
			}
		}
		dds, err := datastore.NewDiskDataStore(exportDir)
		if err != nil {
			return err
		}

		w, r, err := openWrapper(ctx)
		if err != nil {
			return err
		}
		defer w.Close()

		stats, err := export.Export(ctx, w, options(), export.Request{
			Columns:     columns,
			Quals:       quals,
			Partitioner: plans,
		}, utils.EXPORT_PREFIX, table, dds)
		if err != nil {
			return err
		}
		for _, f := range stats.Files {
			fmt.Println(f)
		}
		fmt.Printf("(%d rows, %d files, %d bytes in %dms)\n", stats.NumRows, stats.NumFiles, stats.BytesWritten, stats.TimeMS)
		return finish(r)
	},
}

func init() {
	exportCmd.Flags().StringSliceVar(&columns, "columns", nil, "Columns to fetch, comma separated")
	exportCmd.Flags().StringArrayVarP(&wheres, "where", "w", nil, "Condition as `field op value`, may be repeated")
	exportCmd.Flags().StringVarP(&exportDir, "dir", "o", utils.GetEnvOrDefault("EXPORT_DIR", "."), "Directory to write files under")
	exportCmd.Flags().StringArrayVarP(&partitions, "partition", "p", nil, "Partition as `as=func(arg)`, may be repeated")
}
