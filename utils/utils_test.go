package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRetryStopsOnPermError(t *testing.T) {
	calls := 0
	err := retry(context.Background(), time.Second*5, func() error {
		calls++
		return fmt.Errorf("wrapped: %w", PermError("nope"))
	})
	if !IsPermError(err) {
		t.Fatal("expected perm error, got", err)
	}
	if calls != 1 {
		t.Fatal("retried a permanent error", calls)
	}
}

func TestRetryRetries(t *testing.T) {
	calls := 0
	err := retry(context.Background(), time.Second*5, func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 3 {
		t.Fatal("expected 3 calls, got", calls)
	}
}

func TestDeref(t *testing.T) {
	if Deref[int64](nil, 60) != 60 {
		t.Fatal("bad fallback")
	}
	if Deref(Ptr(int64(5)), 60) != 5 {
		t.Fatal("bad deref")
	}
}
