package config

import (
	"flag"
	"os"

	"github.com/akrylov/photosync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN for the backup index
//	-m string   path to the sqlite media catalog
//	-u string   user id owning the backup
//	-n int      pagination page size
//	-w int      concurrent sync workers
//	-k string   S3 access key
//	-p string   S3 secret key
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Arguments are first filtered to the flags handled here using
// flagx.FilterArgs, avoiding collisions with the -c/-config overlay.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-m", "-u", "-n", "-w", "-k", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "backup index database DSN")
	fs.StringVar(&config.MediaDBPath, "m", config.MediaDBPath, "sqlite media catalog path")
	fs.StringVar(&config.UserID, "u", config.UserID, "user id")
	fs.IntVar(&config.PageSize, "n", config.PageSize, "pagination page size")
	fs.IntVar(&config.SyncWorkers, "w", config.SyncWorkers, "concurrent sync workers")
	fs.StringVar(&config.S3AccessKey, "k", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
