package fdw

import (
	"strings"

	"github.com/danthegoodman1/chfdw/cell"
)

type (
	// Qual is a single pushed-down filter condition: Field Operator Value.
	// With an Array the condition is applied per element: UseOr means any
	// element matches (`x = ANY(...)`), otherwise all must (`x <> ALL(...)`).
	Qual struct {
		Field    string
		Operator string
		Value    *cell.Cell
		Array    []*cell.Cell
		UseOr    bool
	}
)

// Deparse renders the condition as remote query text.
func (q Qual) Deparse() string {
	if q.UseOr || q.Array != nil {
		conds := make([]string, 0, len(q.Array))
		for _, c := range q.Array {
			conds = append(conds, Qual{Field: q.Field, Operator: q.Operator, Value: c}.Deparse())
		}
		joiner, empty := " and ", "true"
		if q.UseOr {
			joiner, empty = " or ", "false"
		}
		switch len(conds) {
		case 0:
			return empty
		case 1:
			return conds[0]
		}
		return "(" + strings.Join(conds, joiner) + ")"
	}

	switch q.Operator {
	case "is", "is not":
		if q.Value == nil || (q.Value.Kind == cell.KindString && q.Value.S == "null") {
			return q.Field + " " + q.Operator + " null"
		}
	case "~~":
		return q.Field + " like " + cell.Literal(q.Value)
	case "!~~":
		return q.Field + " not like " + cell.Literal(q.Value)
	}
	return q.Field + " " + q.Operator + " " + cell.Literal(q.Value)
}
