package catalog

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrotools/flowpost/internal/monitoring"
	"github.com/hydrotools/flowpost/internal/timeutil"
)

func openTestCatalog(t *testing.T, clock timeutil.Clock) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"), clock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	m.Run()
}

func TestOpen_MigratesToLatest(t *testing.T) {
	c := openTestCatalog(t, nil)

	version, dirty, err := c.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Re-running is a no-op.
	require.NoError(t, c.MigrateUp())
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	c, err := Open(path, nil)
	require.NoError(t, err)
	_, err = c.Record(context.Background(), Entry{RunID: "r", Kind: KindRaster, Path: "/out/a.asc"})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(path, nil)
	require.NoError(t, err)
	defer c.Close()

	entries, err := c.List(context.Background(), "r")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRecordAndList(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	c := openTestCatalog(t, clock)
	ctx := context.Background()

	run := uuid.NewString()
	other := uuid.NewString()

	id1, err := c.Record(ctx, Entry{RunID: run, SimTime: 7200, Kind: KindRaster, Field: "surface_water__depth", Path: "/out/depth_7200.0.asc", Rows: 10, Columns: 20})
	require.NoError(t, err)
	clock.Advance(time.Minute)
	id2, err := c.Record(ctx, Entry{RunID: run, SimTime: 3600, Kind: KindHydrograph, Path: "/out/discharge_3600.0.png"})
	require.NoError(t, err)
	_, err = c.Record(ctx, Entry{RunID: other, SimTime: 0, Kind: KindRaster, Path: "/other/depth_0.0.asc"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	entries, err := c.List(ctx, run)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, id2, entries[0].ID, "ordered by simulated time")
	assert.Equal(t, KindHydrograph, entries[0].Kind)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 1, 0, 0, time.UTC), entries[0].CreatedAt)

	assert.Equal(t, Entry{
		ID: id1, RunID: run, SimTime: 7200, Kind: KindRaster, Field: "surface_water__depth",
		Path: "/out/depth_7200.0.asc", Rows: 10, Columns: 20,
		CreatedAt: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}, entries[1])

	all, err := c.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	runs, err := c.Runs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{run, other}, runs)
}

func TestRecord_Invalid(t *testing.T) {
	c := openTestCatalog(t, nil)

	_, err := c.Record(context.Background(), Entry{Kind: KindRaster, Path: "/a.asc"})
	assert.ErrorIs(t, err, ErrInvalidEntry)
	_, err = c.Record(context.Background(), Entry{RunID: "r", Path: "/a.asc"})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestList_Empty(t *testing.T) {
	c := openTestCatalog(t, nil)

	entries, err := c.List(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMigrateDown(t *testing.T) {
	c := openTestCatalog(t, nil)

	require.NoError(t, c.MigrateDown())
	version, _, err := c.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	_, err = c.List(context.Background(), "")
	assert.Error(t, err, "table should be gone")
}

func TestClosedCatalog(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"), nil)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Record(context.Background(), Entry{RunID: "r", Kind: KindRaster, Path: "/a.asc"})
	assert.Error(t, err)
	_, err = c.Runs(context.Background())
	assert.Error(t, err)
}
