package partitioner

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestToDay(t *testing.T) {
	f := Functions["toDay"]

	day, err := f(map[string]any{"hey": "ho"}, []string{"now()"})
	if err != nil {
		t.Fatal(err)
	}

	if day != fmt.Sprint(time.Now().UTC().Day()) {
		t.Fatal("mismatched date")
	}

	day, err = f(map[string]any{"t": "2022-01-24T00:00:00.000Z"}, []string{"t"})
	if err != nil {
		t.Fatal(err)
	}

	if day != "24" {
		t.Fatal("mismatched date for t string")
	}

	day, err = f(map[string]any{"t": 1672406408279.0}, []string{"t"})
	if err != nil {
		t.Fatal(err)
	}

	if day != "30" {
		t.Fatal("mismatched date for t float")
	}

	day, err = f(map[string]any{"t": time.Date(2023, 3, 9, 23, 0, 0, 0, time.UTC)}, []string{"t"})
	if err != nil {
		t.Fatal(err)
	}

	if day != "9" {
		t.Fatal("mismatched date for t time")
	}

	_, err = f(map[string]any{"t": 1672406408279}, []string{"t"})
	if !errors.Is(err, ErrInvalidColumnType) {
		t.Fatal("did not get invalid col type")
	}

	_, err = f(map[string]any{"t": "nope"}, []string{"t"})
	if err == nil {
		t.Fatal("bad time string parsed")
	}
}

func TestGetRowPartition(t *testing.T) {
	row := map[string]any{
		"ts":     time.Date(2022, 12, 30, 10, 0, 0, 0, time.UTC),
		"region": "eu",
	}
	part, err := GetRowPartition(row, []PartitionPlan{
		{Func: "toYear", Args: []string{"ts"}, As: "y"},
		{Func: "toMonth", Args: []string{"ts"}, As: "m"},
		{Func: "column", Args: []string{"region"}, As: "region"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if part != "y=2022/m=12/region=eu" {
		t.Fatal("unexpected partition", part)
	}

	part, err = GetRowPartition(row, nil)
	if err != nil || part != "" {
		t.Fatal("expected empty partition", part, err)
	}

	_, err = GetRowPartition(row, []PartitionPlan{{Func: "toCentury", Args: []string{"ts"}, As: "c"}})
	if !errors.Is(err, ErrFuncNotFound) {
		t.Fatal("expected ErrFuncNotFound", err)
	}
}
