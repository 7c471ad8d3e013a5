package cell

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type (
	// Row is an ordered list of (column, cell) pairs. A nil cell is NULL.
	Row struct {
		Cols  []string
		Cells []*Cell
	}
)

func NewRow() *Row {
	return &Row{}
}

func (r *Row) Push(col string, c *Cell) {
	r.Cols = append(r.Cols, col)
	r.Cells = append(r.Cells, c)
}

func (r *Row) Len() int {
	return len(r.Cols)
}

// Get returns the cell for col and whether the column is present at all.
func (r *Row) Get(col string) (*Cell, bool) {
	for i, name := range r.Cols {
		if name == col {
			return r.Cells[i], true
		}
	}
	return nil, false
}

// Map returns the row as column -> plain Go value, NULLs as nil.
func (r *Row) Map() map[string]any {
	m := make(map[string]any, len(r.Cols))
	for i, name := range r.Cols {
		m[name] = r.Cells[i].Value()
	}
	return m
}

// MarshalJSON writes the row as an object keeping column order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, name := range r.Cols {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, fmt.Errorf("error in json.Marshal of column name: %w", err)
		}
		b.Write(k)
		b.WriteByte(':')
		v, err := json.Marshal(r.Cells[i])
		if err != nil {
			return nil, fmt.Errorf("error in json.Marshal of column %s: %w", name, err)
		}
		b.Write(v)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}
