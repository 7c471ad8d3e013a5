package clickhouse

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedValue = errors.New("unexpected value")
	ErrColumnMismatch  = errors.New("column count mismatch")
)

type (
	// Column is one column of a Block: its name, ClickHouse type and values.
	Column struct {
		Name   string
		Type   string
		Values []any
	}

	// Block is a columnar buffer of a whole query result, or of the rows
	// of a batch insert.
	Block struct {
		Columns []Column
		rows    int
	}
)

func NewBlock(names, types []string) *Block {
	b := &Block{Columns: make([]Column, len(names))}
	for i, name := range names {
		b.Columns[i].Name = name
		if i < len(types) {
			b.Columns[i].Type = types[i]
		}
	}
	return b
}

func (b *Block) AppendRow(values ...any) error {
	if len(values) != len(b.Columns) {
		return fmt.Errorf("%w: block has %d columns, got %d values", ErrColumnMismatch, len(b.Columns), len(values))
	}
	for i, v := range values {
		b.Columns[i].Values = append(b.Columns[i].Values, v)
	}
	b.rows++
	return nil
}

func (b *Block) RowCount() int {
	return b.rows
}

func (b *Block) ColumnCount() int {
	return len(b.Columns)
}

func (b *Block) ColumnNames() []string {
	names := make([]string, len(b.Columns))
	for i, c := range b.Columns {
		names[i] = c.Name
	}
	return names
}

// Row returns the values of row i in column order.
func (b *Block) Row(i int) []any {
	vals := make([]any, len(b.Columns))
	for c := range b.Columns {
		vals[c] = b.Columns[c].Values[i]
	}
	return vals
}
