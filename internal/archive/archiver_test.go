package archive

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/quantalab/qbenchd/internal/config"
)

func TestReportKeyLayout(t *testing.T) {
	now := time.Date(2026, 8, 29, 23, 59, 0, 0, time.UTC)
	key := reportKey("reports", "volume", "9f2c-aaaa", now)
	assert.Equal(t, "reports/volume/2026-08-29/9f2c-aaaa.json", key)
}

func TestReportKeyUsesUTCDate(t *testing.T) {
	// 01:00 on the 30th in UTC+2 is still the 29th in UTC.
	loc := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2026, 8, 30, 1, 0, 0, 0, loc)
	key := reportKey("reports", "vqe", "abc", now)
	assert.Equal(t, "reports/vqe/2026-08-29/abc.json", key)
}

func TestNewBuildsArchiver(t *testing.T) {
	a, err := New(&appconfig.ArchiveConfig{
		Enabled:   true,
		Bucket:    "qbench-reports",
		Region:    "auto",
		Endpoint:  "https://minio.local:9000",
		AccessKey: "key",
		SecretKey: "secret",
		Prefix:    "reports",
	}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "qbench-reports", a.bucket)
	assert.Equal(t, "reports", a.prefix)
}
