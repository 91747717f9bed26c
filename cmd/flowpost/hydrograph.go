package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/hydrotools/flowpost/internal/catalog"
	"github.com/hydrotools/flowpost/internal/config"
	"github.com/hydrotools/flowpost/internal/fsutil"
	"github.com/hydrotools/flowpost/internal/hydrograph"
)

// loadConfig returns the config at path, or the built-in defaults when
// path is empty.
func loadConfig(path string) (*config.PostConfig, error) {
	if path == "" {
		return config.DefaultPostConfig(), nil
	}
	return config.LoadPostConfig(path)
}

func runHydrograph(args []string, stdout io.Writer) error {
	fs := newFlagSet("hydrograph", stdout)
	configPath := fs.String("config", "", "Post-processing config (.json)")
	in := fs.String("in", "", "Discharge record (required)")
	out := fs.String("o", "", "Output path; the extension picks the format (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *out == "" {
		return fmt.Errorf("hydrograph: -in and -o are required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	osfs := fsutil.OSFileSystem{}
	series, err := hydrograph.Load(osfs, *in)
	if err != nil {
		return err
	}
	if err := hydrograph.Render(osfs, series, cfg.PlotOptions(), *out); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %s (%d records, %d links)\n", *out, series.Len(), series.Columns())
	return nil
}

func runCatalog(args []string, stdout io.Writer) error {
	fs := newFlagSet("catalog", stdout)
	dbPath := fs.String("db", "", "Catalog database path (required)")
	runID := fs.String("run", "", "Only list this run")
	listRuns := fs.Bool("runs", false, "List run IDs only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		return fmt.Errorf("catalog: -db is required")
	}

	cat, err := catalog.Open(*dbPath, nil)
	if err != nil {
		return err
	}
	defer cat.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *listRuns {
		runs, err := cat.Runs(ctx)
		if err != nil {
			return err
		}
		for _, id := range runs {
			fmt.Fprintln(stdout, id)
		}
		return nil
	}

	entries, err := cat.List(ctx, *runID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tTIME\tKIND\tFIELD\tSHAPE\tPATH")
	for _, e := range entries {
		shape := "-"
		if e.Rows > 0 {
			shape = fmt.Sprintf("%dx%d", e.Rows, e.Columns)
		}
		field := e.Field
		if field == "" {
			field = "-"
		}
		fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\t%s\t%s\n", e.RunID, e.SimTime, e.Kind, field, shape, e.Path)
	}
	return tw.Flush()
}
