package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/danthegoodman1/chfdw/partitioner"
)

var (
	ErrBadCondition = errors.New("condition must look like `field op value`")
	ErrBadPartition = errors.New("partition must look like `as=func(arg, ...)`")
)

// ParseQual reads `field op value`. The operator may span words (is not,
// not like) and a value in single quotes is always a string.
func ParseQual(s string) (fdw.Qual, error) {
	parts := strings.Fields(s)
	if len(parts) < 3 {
		return fdw.Qual{}, fmt.Errorf("%w: %q", ErrBadCondition, s)
	}
	field := parts[0]

	valueStart := len(parts) - 1
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), field))
	// a quoted value may contain spaces
	if i := strings.Index(rest, "'"); i > 0 && strings.HasSuffix(rest, "'") {
		op := strings.Join(strings.Fields(rest[:i]), " ")
		return fdw.Qual{Field: field, Operator: op, Value: cell.String(unquote(rest[i:]))}, nil
	}
	op := strings.Join(parts[1:valueStart], " ")
	return fdw.Qual{Field: field, Operator: op, Value: ParseValue(parts[valueStart])}, nil
}

// ParseValue guesses the cell kind of a command line value.
func ParseValue(s string) *cell.Cell {
	switch {
	case s == "null":
		return nil
	case len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'"):
		return cell.String(unquote(s))
	case s == "true":
		return cell.Bool(true)
	case s == "false":
		return cell.Bool(false)
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return cell.I64(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return cell.F64(f)
	}
	return cell.String(s)
}

func unquote(s string) string {
	s = s[1 : len(s)-1]
	return strings.ReplaceAll(strings.ReplaceAll(s, `\'`, `'`), `\\`, `\`)
}

// ParsePartitionPlan reads `y=toYear(ts)`.
func ParsePartitionPlan(s string) (partitioner.PartitionPlan, error) {
	as, call, ok := strings.Cut(s, "=")
	open := strings.Index(call, "(")
	if !ok || as == "" || open < 1 || !strings.HasSuffix(call, ")") {
		return partitioner.PartitionPlan{}, fmt.Errorf("%w: %q", ErrBadPartition, s)
	}
	plan := partitioner.PartitionPlan{As: strings.TrimSpace(as), Func: strings.TrimSpace(call[:open])}
	for _, arg := range strings.Split(call[open+1:len(call)-1], ",") {
		if arg = strings.TrimSpace(arg); arg != "" {
			plan.Args = append(plan.Args, arg)
		}
	}
	if len(plan.Args) == 0 {
		return partitioner.PartitionPlan{}, fmt.Errorf("%w: %q", ErrBadPartition, s)
	}
	return plan, nil
}
