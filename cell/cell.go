package cell

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgtype"
)

// Kind is the variant tag of a Cell.
type Kind uint8

const (
	KindBool Kind = iota + 1
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
	KindString
	KindTimestamp
)

// TimestampLayout is how timestamps are written in statement text. Trailing
// zero fractions are dropped so plain DateTime columns accept the literal.
const TimestampLayout = "2006-01-02 15:04:05.999999999"

var (
	ErrUnknownKind = errors.New("unknown cell kind")
)

type (
	// Cell is one column value in the host engine's type universe. Only the
	// field matching Kind is meaningful. A NULL is represented by a nil *Cell.
	Cell struct {
		Kind Kind

		B   bool    // KindBool
		I64 int64   // KindI16, KindI32, KindI64
		F64 float64 // KindF32, KindF64
		S   string  // KindString
		TS  pgtype.Timestamp
	}
)

func Bool(v bool) *Cell {
	return &Cell{Kind: KindBool, B: v}
}

func I16(v int16) *Cell {
	return &Cell{Kind: KindI16, I64: int64(v)}
}

func I32(v int32) *Cell {
	return &Cell{Kind: KindI32, I64: int64(v)}
}

func I64(v int64) *Cell {
	return &Cell{Kind: KindI64, I64: v}
}

func F32(v float32) *Cell {
	return &Cell{Kind: KindF32, F64: float64(v)}
}

func F64(v float64) *Cell {
	return &Cell{Kind: KindF64, F64: v}
}

func String(v string) *Cell {
	return &Cell{Kind: KindString, S: v}
}

// Timestamp stores t in UTC as a present pgtype.Timestamp.
func Timestamp(t time.Time) *Cell {
	return &Cell{Kind: KindTimestamp, TS: pgtype.Timestamp{Time: t.UTC(), Status: pgtype.Present}}
}

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "Bool"
	case KindI16:
		return "I16"
	case KindI32:
		return "I32"
	case KindI64:
		return "I64"
	case KindF32:
		return "F32"
	case KindF64:
		return "F64"
	case KindString:
		return "String"
	case KindTimestamp:
		return "Timestamp"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value returns the cell as a plain Go value of its natural type.
func (c *Cell) Value() any {
	if c == nil {
		return nil
	}
	switch c.Kind {
	case KindBool:
		return c.B
	case KindI16:
		return int16(c.I64)
	case KindI32:
		return int32(c.I64)
	case KindI64:
		return c.I64
	case KindF32:
		return float32(c.F64)
	case KindF64:
		return c.F64
	case KindString:
		return c.S
	case KindTimestamp:
		return c.TS.Time
	default:
		return nil
	}
}

// String renders the cell for logs and error messages, e.g. I64(42).
func (c *Cell) String() string {
	if c == nil {
		return "null"
	}
	return fmt.Sprintf("%s(%v)", c.Kind, c.Value())
}

func (c *Cell) Equal(o *Cell) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Kind != o.Kind {
		return false
	}
	switch c.Kind {
	case KindBool:
		return c.B == o.B
	case KindI16, KindI32, KindI64:
		return c.I64 == o.I64
	case KindF32, KindF64:
		return c.F64 == o.F64 || (math.IsNaN(c.F64) && math.IsNaN(o.F64))
	case KindString:
		return c.S == o.S
	case KindTimestamp:
		return c.TS.Time.Equal(o.TS.Time)
	default:
		return false
	}
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// Literal renders c as an inline SQL literal. Every statement and predicate
// builder goes through here so quoting lives in one place.
func Literal(c *Cell) string {
	if c == nil {
		return "null"
	}
	switch c.Kind {
	case KindBool:
		return strconv.FormatBool(c.B)
	case KindI16, KindI32, KindI64:
		return strconv.FormatInt(c.I64, 10)
	case KindF32:
		return formatFloat(c.F64, 32)
	case KindF64:
		return formatFloat(c.F64, 64)
	case KindString:
		return QuoteString(c.S)
	case KindTimestamp:
		// a bare string would be read in the column's own timezone
		return "toDateTime64(" + QuoteString(c.TS.Time.UTC().Format(TimestampLayout)) + ", 9, 'UTC')"
	default:
		return "null"
	}
}

// QuoteString wraps s in single quotes, escaping backslashes and quotes.
func QuoteString(s string) string {
	return "'" + stringEscaper.Replace(s) + "'"
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}
