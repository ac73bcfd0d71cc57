package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJSON_OverlaysOnlyPresentKeys(t *testing.T) {
	path := writeTempConfig(t, `{
		"user_id": "u-42",
		"page_size": 10,
		"index_retry_backoff": "1s",
		"s3_bucket": "gallery"
	}`)

	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"photosync", "-c", path}

	var c Config
	c.LoadDefaults()
	parseJSON(&c)

	assert.Equal(t, "u-42", c.UserID)
	assert.Equal(t, 10, c.PageSize)
	assert.Equal(t, time.Second, c.IndexRetryBackoff)
	assert.Equal(t, "gallery", c.S3Bucket)

	// keys absent from the file keep their defaults
	assert.Equal(t, "media.db", c.MediaDBPath)
	assert.Equal(t, 4, c.SyncWorkers)
}

func TestParseJSON_NoFlagIsNoop(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"photosync"}

	var c Config
	c.LoadDefaults()
	before := c
	parseJSON(&c)

	assert.Equal(t, before, c)
}

func TestParseJSON_PanicsOnMissingFile(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"photosync", "-c", "/nonexistent/config.json"}

	var c Config
	c.LoadDefaults()
	assert.Panics(t, func() { parseJSON(&c) })
}
