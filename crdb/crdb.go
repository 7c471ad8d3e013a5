package crdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danthegoodman1/chfdw/gologger"
	// registers the "pgx" database/sql driver
	_ "github.com/jackc/pgx/v4/stdlib"
)

var (
	StandardContextTimeout = 10 * time.Second

	logger = gologger.NewLogger()
)

// ConnectToDB opens the catalog database pool and checks it is reachable.
func ConnectToDB(ctx context.Context, dsn string) (*sql.DB, error) {
	logger.Debug().Msg("connecting to catalog DB...")
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("error in sql.Open: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Minute * 30)
	db.SetConnMaxIdleTime(time.Minute * 30)

	ctx, cancel := context.WithTimeout(ctx, StandardContextTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error in db.PingContext: %w", err)
	}
	logger.Debug().Msg("connected to catalog DB")
	return db, nil
}
