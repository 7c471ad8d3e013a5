package utils

import "os"

var (
	CATALOG_DSN = os.Getenv("CATALOG_DSN")

	AWS_ACCESS_KEY_ID     = os.Getenv("AWS_ACCESS_KEY_ID")
	AWS_SECRET_ACCESS_KEY = os.Getenv("AWS_SECRET_ACCESS_KEY")
	AWS_DEFAULT_REGION    = GetEnvOrDefault("AWS_DEFAULT_REGION", "us-east-1")

	S3_BUCKET_NAME = os.Getenv("S3_BUCKET_NAME")
	S3_ENDPOINT    = os.Getenv("S3_ENDPOINT")

	// EXPORT_PREFIX is the key prefix parquet exports are written under
	EXPORT_PREFIX = GetEnvOrDefault("EXPORT_PREFIX", "exports")
	// EXPORT_DIR writes exports to local disk when no bucket is set
	EXPORT_DIR = os.Getenv("EXPORT_DIR")
)
