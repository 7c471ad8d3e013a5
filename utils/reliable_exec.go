package utils

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/UltimateTournament/backoff/v4"
	"github.com/cockroachdb/cockroach-go/v2/crdb"
	"github.com/rs/zerolog"
)

// ReliableExec runs f on a pooled connection, retrying with exponential
// backoff until tryTimeout has elapsed. Returning a PermError stops retries.
func ReliableExec(ctx context.Context, db *sql.DB, tryTimeout time.Duration, f func(ctx context.Context, conn *sql.Conn) error) error {
	return retry(ctx, tryTimeout, func() error {
		conn, err := db.Conn(ctx)
		if err != nil {
			return fmt.Errorf("error in db.Conn: %w", err)
		}
		defer conn.Close()
		return f(ctx, conn)
	})
}

// ReliableExecInTx is ReliableExec inside a transaction that is retried on
// CockroachDB serialization failures.
func ReliableExecInTx(ctx context.Context, db *sql.DB, tryTimeout time.Duration, f func(ctx context.Context, tx *sql.Tx) error) error {
	return retry(ctx, tryTimeout, func() error {
		return crdb.ExecuteTx(ctx, db, nil, func(tx *sql.Tx) error {
			return f(ctx, tx)
		})
	})
}

func retry(ctx context.Context, tryTimeout time.Duration, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = tryTimeout
	return backoff.RetryNotify(func() error {
		err := op()
		if IsPermError(err) {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx), func(err error, d time.Duration) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("retryIn", d.String()).Msg("retrying catalog operation")
	})
}
