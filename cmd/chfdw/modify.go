package main

import (
	"fmt"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/spf13/cobra"
)

var insertCmd = &cobra.Command{
	Use:   "insert <json object>...",
	Short: "Insert one row per flat JSON object",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rows := make([]*cell.Row, len(args))
		for i, arg := range args {
			row, err := rowFromArg(arg)
			if err != nil {
				return err
			}
			rows[i] = row
		}

		w, r, err := openWrapper(ctx)
		if err != nil {
			return err
		}
		defer w.Close()

		w.BeginModify(ctx, options())
		for _, row := range rows {
			w.Insert(ctx, row)
		}
		w.EndModify(ctx)
		return finish(r)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <rowid> <json object>",
	Short: "Update the row with the given id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		rowID := ParseValue(args[0])
		row, err := rowFromArg(args[1])
		if err != nil {
			return err
		}

		w, r, err := openWrapper(ctx)
		if err != nil {
			return err
		}
		defer w.Close()

		w.BeginModify(ctx, options())
		w.Update(ctx, rowID, row)
		w.EndModify(ctx)
		return finish(r)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <rowid>...",
	Short: "Delete rows by id",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		w, r, err := openWrapper(ctx)
		if err != nil {
			return err
		}
		defer w.Close()

		w.BeginModify(ctx, options())
		for _, arg := range args {
			w.Delete(ctx, ParseValue(arg))
		}
		w.EndModify(ctx)
		return finish(r)
	},
}

func rowFromArg(arg string) (*cell.Row, error) {
	m, err := cell.DecodeObject([]byte(arg))
	if err != nil {
		return nil, fmt.Errorf("row is not a JSON object: %w", err)
	}
	return cell.RowFromJSON(m)
}
