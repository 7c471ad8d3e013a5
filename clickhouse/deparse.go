package clickhouse

import (
	"strings"

	"github.com/danthegoodman1/chfdw/fdw"
)

// Deparse builds the remote select for a scan. Quals are AND-joined in the
// given order. With no columns requested (e.g. count(*)) a constant is
// selected so the row count is still right.
func Deparse(quals []fdw.Qual, columns []string, table string) string {
	tgts := strings.Join(columns, ", ")
	if len(columns) == 0 {
		tgts = "1"
	}
	if len(quals) == 0 {
		return "select " + tgts + " from " + table
	}

	conds := make([]string, len(quals))
	for i, q := range quals {
		conds[i] = q.Deparse()
	}
	return "select " + tgts + " from " + table + " where " + strings.Join(conds, " and ")
}
