package clickhouse

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/danthegoodman1/chfdw/fdw"
	"github.com/stretchr/testify/require"
)

func TestToCellMappingTable(t *testing.T) {
	ts := time.Date(2022, 12, 30, 13, 14, 15, 123456789, time.UTC)
	cases := []struct {
		tag  string
		raw  any
		want *cell.Cell
	}{
		{"UInt8", uint8(1), cell.Bool(true)},
		{"UInt8", uint8(0), cell.Bool(false)},
		{"UInt8", uint8(7), cell.Bool(true)},
		{"Int16", int16(-12), cell.I16(-12)},
		{"Int32", int32(1 << 30), cell.I32(1 << 30)},
		{"UInt32", uint32(math.MaxUint32), cell.I64(4294967295)},
		{"UInt64", uint64(42), cell.I64(42)},
		{"UInt64", uint64(math.MaxUint64), cell.I64(-1)},
		{"Int64", int64(math.MinInt64), cell.I64(math.MinInt64)},
		{"Float32", float32(1.5), cell.F32(1.5)},
		{"Float64", 2.25, cell.F64(2.25)},
		{"String", "hey", cell.String("hey")},
		{"DateTime", ts.Truncate(time.Second), cell.Timestamp(ts.Truncate(time.Second))},
		{"DateTime('Europe/Paris')", ts.Truncate(time.Second), cell.Timestamp(ts.Truncate(time.Second))},
		{"DateTime64(9)", ts, cell.Timestamp(ts)},
		{"DateTime64(3, 'UTC')", ts.Truncate(time.Millisecond), cell.Timestamp(ts.Truncate(time.Millisecond))},
		{"Nullable(String)", "hey", cell.String("hey")},
		{"Nullable(Int64)", int64(3), cell.I64(3)},
	}
	for _, tc := range cases {
		t.Run(tc.tag, func(t *testing.T) {
			got, err := ToCell(tc.tag, tc.raw)
			require.NoError(t, err)
			require.True(t, tc.want.Equal(got), "got %s want %s", got, tc.want)
		})
	}
}

func TestToCellTimestampIsUTCPresent(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("no tzdata")
	}
	got, err := ToCell("DateTime('Europe/Paris')", time.Date(2023, 6, 1, 12, 0, 0, 0, paris))
	require.NoError(t, err)
	require.Equal(t, time.UTC, got.TS.Time.Location())
	require.Equal(t, time.Date(2023, 6, 1, 10, 0, 0, 0, time.UTC), got.TS.Time)
}

func TestToCellNullable(t *testing.T) {
	var nilStr *string
	got, err := ToCell("Nullable(String)", nilStr)
	require.NoError(t, err)
	require.Nil(t, got)

	s := "x"
	got, err = ToCell("Nullable(String)", &s)
	require.NoError(t, err)
	require.True(t, cell.String("x").Equal(got))

	_, err = ToCell("String", nil)
	require.ErrorIs(t, err, ErrUnexpectedValue)
}

func TestToCellUnsupported(t *testing.T) {
	for _, tag := range []string{"Decimal(10, 2)", "UUID", "Array(String)", "LowCardinality(String)", "Int8", "Date"} {
		_, err := ToCell(tag, "whatever")
		require.True(t, errors.Is(err, fdw.ErrUnsupportedType), tag)
	}
}

func TestToCellWrongGoType(t *testing.T) {
	_, err := ToCell("Int32", int64(1))
	require.ErrorIs(t, err, ErrUnexpectedValue)
}

func TestRoundTripOutboundKinds(t *testing.T) {
	cases := []struct {
		tag    string
		raw    any
		remote any
	}{
		{"UInt8", uint8(1), uint8(1)},
		{"UInt32", uint32(4294967295), int64(4294967295)},
		{"UInt64", uint64(9), int64(9)},
		{"Int64", int64(-9), int64(-9)},
		{"Float64", 0.5, 0.5},
		{"String", "round trip", "round trip"},
	}
	for _, tc := range cases {
		c, err := ToCell(tc.tag, tc.raw)
		require.NoError(t, err)
		v, err := ToRemoteValue(c)
		require.NoError(t, err)
		require.Equal(t, tc.remote, v, tc.tag)
	}
}

func TestToRemoteValueUnsupported(t *testing.T) {
	for _, c := range []*cell.Cell{cell.I16(1), cell.I32(1), cell.F32(1), cell.Timestamp(time.Now())} {
		_, err := ToRemoteValue(c)
		require.ErrorIs(t, err, fdw.ErrUnsupportedType, c.String())
	}
	v, err := ToRemoteValue(cell.Bool(false))
	require.NoError(t, err)
	require.Equal(t, uint8(0), v)
}

func TestBaseType(t *testing.T) {
	base, nullable := baseType("Nullable(DateTime64(3, 'UTC'))")
	require.Equal(t, "DateTime64", base)
	require.True(t, nullable)

	base, nullable = baseType("String")
	require.Equal(t, "String", base)
	require.False(t, nullable)
}
