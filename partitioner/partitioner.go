package partitioner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// PartitionPlan derives one path segment `As=Func(Args...)` from a row.
	PartitionPlan struct {
		Func string   `validate:"required"`
		Args []string `validate:"required,min=1"`
		As   string   `validate:"required"`
	}

	PartitionFunc func(row map[string]any, args []string) (string, error)
)

var (
	Functions = make(map[string]PartitionFunc)

	ErrFuncNotFound = errors.New("partition function not found")

	ErrMissingArgs       = errors.New("missing args")
	ErrMissingColumns    = errors.New("missing one or more columns specified in args")
	ErrInvalidColumnType = errors.New("invalid column type")
)

func init() {
	RegisterFunctions()
}

func timeFunc(f func(t time.Time) string) PartitionFunc {
	return func(row map[string]any, args []string) (string, error) {
		t, err := parseTimeFunc(row, args)
		if err != nil {
			return "", fmt.Errorf("error in parseTimeFunc: %w", err)
		}
		return f(t), nil
	}
}

func RegisterFunctions() {
	Functions["toHour"] = timeFunc(func(t time.Time) string { return fmt.Sprint(t.Hour()) })
	Functions["toDay"] = timeFunc(func(t time.Time) string { return fmt.Sprint(t.Day()) })
	Functions["toMonth"] = timeFunc(func(t time.Time) string { return fmt.Sprint(int(t.Month())) })
	Functions["toYear"] = timeFunc(func(t time.Time) string { return fmt.Sprint(t.Year()) })
	Functions["toYearDay"] = timeFunc(func(t time.Time) string { return fmt.Sprint(t.YearDay()) })
	Functions["toYearWeek"] = timeFunc(func(t time.Time) string {
		_, week := t.ISOWeek()
		return fmt.Sprint(week)
	})
	Functions["toWeekDay"] = timeFunc(func(t time.Time) string { return fmt.Sprint(int(t.Weekday())) })
	// identity partitions on a column's own value
	Functions["column"] = func(row map[string]any, args []string) (string, error) {
		if len(args) == 0 {
			return "", ErrMissingArgs
		}
		value, exists := row[args[0]]
		if !exists {
			return "", ErrMissingColumns
		}
		if value == nil {
			return "null", nil
		}
		return fmt.Sprint(value), nil
	}
}

// GetRowPartition returns the partition path of row, e.g. y=2022/m=12.
// With no plans the path is empty.
func GetRowPartition(row map[string]any, partitioners []PartitionPlan) (string, error) {
	var finalParts []string
	for _, partFunc := range partitioners {
		f, ok := Functions[partFunc.Func]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrFuncNotFound, partFunc.Func)
		}

		s, err := f(row, partFunc.Args)
		if err != nil {
			return "", fmt.Errorf("error processing partition function %s: %w", partFunc.Func, err)
		}
		finalParts = append(finalParts, fmt.Sprintf("%s=%s", partFunc.As, s))
	}
	return strings.Join(finalParts, "/"), nil
}

func parseTimeFunc(row map[string]any, args []string) (time.Time, error) {
	if len(args) == 0 {
		return time.Time{}, ErrMissingArgs
	}

	key := args[0]
	if key == "now()" {
		return time.Now().UTC(), nil
	}

	value, exists := row[key]
	if !exists {
		return time.Time{}, ErrMissingColumns
	}

	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case string:
		// We have a datetime like YYYY-MM-DDTHH:mm:ss.sssZ
		t, err := time.Parse("2006-01-02T15:04:05.000Z", v)
		if err != nil {
			return time.Time{}, fmt.Errorf("error in time.Parse for string: %w", err)
		}
		return t, nil
	case float64:
		// float milliseconds, as decoded from JSON
		return time.UnixMilli(int64(v)).UTC(), nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	default:
		return time.Time{}, ErrInvalidColumnType
	}
}
