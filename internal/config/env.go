package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays configuration from PHOTOSYNC_* environment variables.
// Only variables that are actually set touch the config, so the overlay
// composes with the JSON file and defaults. The retry backoff is handled
// separately because it accepts time.ParseDuration syntax.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}

	if v, ok := os.LookupEnv("PHOTOSYNC_INDEX_RETRY_BACKOFF"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.IndexRetryBackoff = d
	}
}
