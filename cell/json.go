package cell

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrUnsupportedJSON = errors.New("unsupported json value")
)

func (c *Cell) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	if (c.Kind == KindF32 || c.Kind == KindF64) && (math.IsNaN(c.F64) || math.IsInf(c.F64, 0)) {
		// encoding/json refuses these
		return json.Marshal(formatFloat(c.F64, 64))
	}
	return json.Marshal(c.Value())
}

// FromJSON converts a decoded JSON scalar into a cell. Integral numbers become
// I64, other numbers F64. A JSON null yields a nil cell.
func FromJSON(v any) (*Cell, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case float64:
		if t == math.Trunc(t) && t >= math.MinInt64 && t < math.MaxInt64 {
			return I64(int64(t)), nil
		}
		return F64(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return I64(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("error in Float64 for %s: %w", t.String(), err)
		}
		return F64(f), nil
	case int:
		return I64(int64(t)), nil
	case int64:
		return I64(t), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedJSON, v)
	}
}

// DecodeObject decodes one JSON object keeping numbers as json.Number, so
// integers past 2^53 reach FromJSON intact.
func DecodeObject(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("error in dec.Decode: %w", err)
	}
	return m, nil
}

// RowFromJSON builds a row from a flat JSON object. Keys are sorted
// so the column order is stable.
func RowFromJSON(m map[string]any) (*Row, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	row := NewRow()
	for _, k := range keys {
		c, err := FromJSON(m[k])
		if err != nil {
			return nil, fmt.Errorf("error converting column %s: %w", k, err)
		}
		row.Push(k, c)
	}
	return row, nil
}
