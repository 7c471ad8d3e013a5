package clickhouse

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/danthegoodman1/chfdw/fdw"
)

type toCellFunc func(raw any) (*cell.Cell, error)

// inboundTypes is the whole ClickHouse -> Cell mapping, keyed by base type
// name (parameters and Nullable stripped). Anything not listed is rejected.
var inboundTypes = map[string]toCellFunc{
	// Bool is stored as UInt8 in ClickHouse
	"UInt8": func(raw any) (*cell.Cell, error) {
		v, err := as[uint8](raw)
		return cell.Bool(v != 0), err
	},
	"Int16": func(raw any) (*cell.Cell, error) {
		v, err := as[int16](raw)
		return cell.I16(v), err
	},
	"Int32": func(raw any) (*cell.Cell, error) {
		v, err := as[int32](raw)
		return cell.I32(v), err
	},
	"UInt32": func(raw any) (*cell.Cell, error) {
		v, err := as[uint32](raw)
		return cell.I64(int64(v)), err
	},
	// values above MaxInt64 wrap negative
	"UInt64": func(raw any) (*cell.Cell, error) {
		v, err := as[uint64](raw)
		return cell.I64(int64(v)), err
	},
	"Int64": func(raw any) (*cell.Cell, error) {
		v, err := as[int64](raw)
		return cell.I64(v), err
	},
	"Float32": func(raw any) (*cell.Cell, error) {
		v, err := as[float32](raw)
		return cell.F32(v), err
	},
	"Float64": func(raw any) (*cell.Cell, error) {
		v, err := as[float64](raw)
		return cell.F64(v), err
	},
	"String": func(raw any) (*cell.Cell, error) {
		v, err := as[string](raw)
		return cell.String(v), err
	},
	"DateTime":   toTimestamp,
	"DateTime64": toTimestamp,
}

func toTimestamp(raw any) (*cell.Cell, error) {
	v, err := as[time.Time](raw)
	if err != nil {
		return nil, err
	}
	return cell.Timestamp(time.Unix(0, v.UnixNano())), nil
}

func as[T any](raw any) (T, error) {
	v, ok := raw.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: expected %T, got %T", ErrUnexpectedValue, zero, raw)
	}
	return v, nil
}

// baseType strips Nullable(...) and any type parameters, so
// "Nullable(DateTime64(3, 'UTC'))" becomes ("DateTime64", true).
func baseType(typeTag string) (base string, nullable bool) {
	base = strings.TrimSpace(typeTag)
	if strings.HasPrefix(base, "Nullable(") && strings.HasSuffix(base, ")") {
		base = base[len("Nullable(") : len(base)-1]
		nullable = true
	}
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = base[:i]
	}
	return base, nullable
}

// ToCell converts one remote value of the given ClickHouse type into a cell.
// A NULL in a Nullable column gives a nil cell.
func ToCell(typeTag string, raw any) (*cell.Cell, error) {
	base, nullable := baseType(typeTag)
	conv, ok := inboundTypes[base]
	if !ok {
		return nil, fmt.Errorf("%w: data type %s is not supported", fdw.ErrUnsupportedType, typeTag)
	}

	if rv := reflect.ValueOf(raw); !rv.IsValid() || rv.Kind() == reflect.Pointer {
		if !rv.IsValid() || rv.IsNil() {
			if nullable {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: null in non-nullable %s column", ErrUnexpectedValue, typeTag)
		}
		raw = rv.Elem().Interface()
	}

	c, err := conv(raw)
	if err != nil {
		return nil, fmt.Errorf("error converting %s value: %w", typeTag, err)
	}
	return c, nil
}

// ToRemoteValue converts a cell into the Go value sent to ClickHouse on
// insert. Only Bool, F64, I64 and String are accepted.
func ToRemoteValue(c *cell.Cell) (any, error) {
	if c == nil {
		return nil, nil
	}
	switch c.Kind {
	case cell.KindBool:
		if c.B {
			return uint8(1), nil
		}
		return uint8(0), nil
	case cell.KindF64:
		return c.F64, nil
	case cell.KindI64:
		return c.I64, nil
	case cell.KindString:
		return c.S, nil
	default:
		return nil, fmt.Errorf("%w: field type %s not supported", fdw.ErrUnsupportedType, c)
	}
}
