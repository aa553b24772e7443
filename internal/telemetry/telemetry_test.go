package telemetry_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"codeberg.org/mutker/lightctl/internal/logger"
	"codeberg.org/mutker/lightctl/internal/telemetry"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(ts int64) *telemetry.Snapshot {
	return &telemetry.Snapshot{
		Timestamp:      ts,
		AvgFrameMicros: 16700,
		Quality:        "ultra",
		ZoomMode:       "focused",
		Entities:       5,
		LitElements:    12,
		ActiveHazards:  1,
		Overrides:      0,
	}
}

func TestDisabledServiceIsNoop(t *testing.T) {
	svc, err := telemetry.NewService(telemetry.Config{Enabled: false}, logger.Default())
	require.NoError(t, err)

	assert.NoError(t, svc.Record(context.Background(), testSnapshot(1)))
	assert.NoError(t, svc.Close())
}

func TestEnabledServiceRequiresDBPath(t *testing.T) {
	_, err := telemetry.NewService(telemetry.Config{Enabled: true}, logger.Default())
	assert.Error(t, err)
}

func TestRecordRoundTrip(t *testing.T) {
	cfg := telemetry.Config{
		DBPath:       filepath.Join(t.TempDir(), "telemetry.db"),
		BatchSize:    2,
		BatchTimeout: 60,
		Enabled:      true,
	}

	svc, err := telemetry.NewService(cfg, logger.Default())
	require.NoError(t, err)

	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, svc.Record(ctx, testSnapshot(i)))
	}

	assert.Error(t, svc.Record(ctx, nil))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, svc.Record(canceled, testSnapshot(99)))

	// Close flushes the partial batch.
	require.NoError(t, svc.Close())

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM ticks").Scan(&count))
	assert.Equal(t, 3, count)

	var quality, zoomMode string
	var avgFrame int64
	require.NoError(t, db.QueryRow(
		"SELECT quality, zoom_mode, avg_frame_micros FROM ticks WHERE timestamp = 2",
	).Scan(&quality, &zoomMode, &avgFrame))
	assert.Equal(t, "ultra", quality)
	assert.Equal(t, "focused", zoomMode)
	assert.Equal(t, int64(16700), avgFrame)
}

func TestSchemaSurvivesReopen(t *testing.T) {
	cfg := telemetry.Config{
		DBPath:       filepath.Join(t.TempDir(), "telemetry.db"),
		BatchSize:    1,
		BatchTimeout: 60,
		Enabled:      true,
	}

	svc, err := telemetry.NewService(cfg, logger.Default())
	require.NoError(t, err)
	require.NoError(t, svc.Record(context.Background(), testSnapshot(1)))
	require.NoError(t, svc.Close())

	svc, err = telemetry.NewService(cfg, logger.Default())
	require.NoError(t, err)
	require.NoError(t, svc.Record(context.Background(), testSnapshot(2)))
	require.NoError(t, svc.Close())

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM ticks").Scan(&count))
	assert.Equal(t, 2, count)

	version, err := telemetry.GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, telemetry.SchemaVersion, version)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, telemetry.Config{Enabled: false}.Validate())
	assert.NoError(t, telemetry.Config{Enabled: true, DBPath: "/tmp/x.db"}.Validate())
	assert.Error(t, telemetry.Config{Enabled: true}.Validate())
}
