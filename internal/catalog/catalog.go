// Package catalog records every artifact a simulation run writes in a
// SQLite database, so outputs can be listed per run after the fact.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hydrotools/flowpost/internal/timeutil"
)

// Artifact kinds.
const (
	KindRaster     = "raster"
	KindHydrograph = "hydrograph"
)

// ErrInvalidEntry is returned by Record for entries missing required fields.
var ErrInvalidEntry = errors.New("catalog: invalid entry")

// Entry is one written artifact.
type Entry struct {
	ID      int64
	RunID   string
	SimTime float64
	Kind    string
	// Field is the node field name for rasters, empty for hydrographs.
	Field     string
	Path      string
	Rows      int
	Columns   int
	CreatedAt time.Time
}

// Catalog is safe for concurrent use.
type Catalog struct {
	db    *sql.DB
	clock timeutil.Clock
}

// Open opens (creating if needed) the catalog at path and migrates it to
// the latest schema. A nil clock uses the wall clock.
func Open(path string, clock timeutil.Clock) (*Catalog, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+"_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	c := &Catalog{db: db, clock: clock}
	if err := c.MigrateUp(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record stores e and returns its ID. CreatedAt is set from the clock.
func (c *Catalog) Record(ctx context.Context, e Entry) (int64, error) {
	if e.RunID == "" || e.Kind == "" || e.Path == "" {
		return 0, fmt.Errorf("%w: run id, kind and path are required", ErrInvalidEntry)
	}

	res, err := c.db.ExecContext(ctx, `
		INSERT INTO snapshots (run_id, sim_time, kind, field, path, nrows, ncols, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.SimTime, e.Kind, e.Field, e.Path, e.Rows, e.Columns,
		c.clock.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("record snapshot: %w", err)
	}
	return res.LastInsertId()
}

// List returns the entries of runID ordered by simulated time. An empty
// runID lists every run.
func (c *Catalog) List(ctx context.Context, runID string) ([]Entry, error) {
	query := `
		SELECT id, run_id, sim_time, kind, field, path, nrows, ncols, created_at
		FROM snapshots`
	var args []interface{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY run_id, sim_time, id`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
		)
		if err := rows.Scan(&e.ID, &e.RunID, &e.SimTime, &e.Kind, &e.Field, &e.Path, &e.Rows, &e.Columns, &created); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Runs returns the distinct run IDs in the catalog.
func (c *Catalog) Runs(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT run_id FROM snapshots ORDER BY run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
