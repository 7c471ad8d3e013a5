package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danthegoodman1/chfdw/crdb"
	"github.com/danthegoodman1/chfdw/datastore"
	"github.com/danthegoodman1/chfdw/export"
	"github.com/danthegoodman1/chfdw/gologger"
	"github.com/danthegoodman1/chfdw/http_server"
	"github.com/danthegoodman1/chfdw/metastore"
	"github.com/danthegoodman1/chfdw/migrations"
	"github.com/danthegoodman1/chfdw/s3_helper"
	"github.com/danthegoodman1/chfdw/utils"
)

var logger = gologger.NewLogger()

func main() {
	logger.Debug().Msg("starting chfdw gateway")

	db, err := crdb.ConnectToDB(context.Background(), utils.CATALOG_DSN)
	if err != nil {
		logger.Error().Err(err).Msg("error connecting to catalog DB")
		os.Exit(1)
	}

	if utils.GetEnvOrDefault("RUN_MIGRATIONS", "false") == "true" {
		if _, err := migrations.RunMigrations(db); err != nil {
			logger.Error().Err(err).Msg("Error running migrations")
			os.Exit(1)
		}
	} else if err := migrations.CheckMigrations(db); err != nil {
		logger.Error().Err(err).Msg("Error checking migrations")
		os.Exit(1)
	}

	ms := metastore.NewCRDBMetaStore(db)

	var exportWriter export.Writer
	if utils.S3_BUCKET_NAME != "" {
		uploader, err := s3_helper.NewUploader()
		if err != nil {
			logger.Error().Err(err).Msg("error creating s3 uploader")
			os.Exit(1)
		}
		exportWriter = uploader
	} else if utils.EXPORT_DIR != "" {
		dds, err := datastore.NewDiskDataStore(utils.EXPORT_DIR)
		if err != nil {
			logger.Error().Err(err).Msg("error creating disk datastore")
			os.Exit(1)
		}
		exportWriter = dds
	} else {
		logger.Warn().Msg("neither S3_BUCKET_NAME nor EXPORT_DIR set, exports are disabled")
	}

	httpServer := http_server.StartHTTPServer(ms, exportWriter)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Warn().Msg("received shutdown signal!")

	// For AWS ALB needing some time to de-register pod
	sleepTime := utils.GetEnvOrDefaultInt("SHUTDOWN_SLEEP_SEC", 0)
	logger.Info().Msg(fmt.Sprintf("sleeping for %ds before exiting", sleepTime))

	time.Sleep(time.Second * time.Duration(sleepTime))
	logger.Info().Msg(fmt.Sprintf("slept for %ds, exiting", sleepTime))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown HTTP server")
	} else {
		logger.Info().Msg("successfully shutdown HTTP server")
	}

	if err := ms.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown metastore")
	} else {
		logger.Info().Msg("successfully shutdown metastore")
	}
}
