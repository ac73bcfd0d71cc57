package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/akrylov/photosync/internal/flagx"
	"github.com/akrylov/photosync/internal/timex"
)

// jsonConfig is an intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "250ms" and integer nanoseconds. Pointer fields
// distinguish "absent" from "zero" so the overlay only touches keys that
// are actually present in the file.
type jsonConfig struct {
	Environment        *string         `json:"environment"`
	UserID             *string         `json:"user_id"`
	DatabaseDSN        *string         `json:"database_dsn"`
	MediaDBPath        *string         `json:"media_db_path"`
	PageSize           *int            `json:"page_size"`
	SyncWorkers        *int            `json:"sync_workers"`
	IndexRetryAttempts *int            `json:"index_retry_attempts"`
	IndexRetryBackoff  *timex.Duration `json:"index_retry_backoff"`
	S3AccessKey        *string         `json:"s3_access_key"`
	S3SecretKey        *string         `json:"s3_secret_key"`
	S3Bucket           *string         `json:"s3_bucket"`
	S3Region           *string         `json:"s3_region"`
	S3BaseEndpoint     *string         `json:"s3_base_endpoint"`
}

// parseJSON loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If neither flag is set, no
// file is loaded. Unreadable or malformed files panic: a config file that
// was explicitly requested but cannot be used is a startup error.
func parseJSON(config *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.Environment != nil {
		config.Environment = *c.Environment
	}
	if c.UserID != nil {
		config.UserID = *c.UserID
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.MediaDBPath != nil {
		config.MediaDBPath = *c.MediaDBPath
	}
	if c.PageSize != nil {
		config.PageSize = *c.PageSize
	}
	if c.SyncWorkers != nil {
		config.SyncWorkers = *c.SyncWorkers
	}
	if c.IndexRetryAttempts != nil {
		config.IndexRetryAttempts = *c.IndexRetryAttempts
	}
	if c.IndexRetryBackoff != nil {
		config.IndexRetryBackoff = time.Duration(c.IndexRetryBackoff.Duration)
	}
	if c.S3AccessKey != nil {
		config.S3AccessKey = *c.S3AccessKey
	}
	if c.S3SecretKey != nil {
		config.S3SecretKey = *c.S3SecretKey
	}
	if c.S3Bucket != nil {
		config.S3Bucket = *c.S3Bucket
	}
	if c.S3Region != nil {
		config.S3Region = *c.S3Region
	}
	if c.S3BaseEndpoint != nil {
		config.S3BaseEndpoint = *c.S3BaseEndpoint
	}
}
