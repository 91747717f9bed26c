package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/hydrotools/flowpost/internal/hydrograph"
	"github.com/hydrotools/flowpost/internal/schedule"
)

// DefaultConfigPath is the path to the canonical post-processing defaults.
const DefaultConfigPath = "config/flowpost.defaults.json"

// PostConfig is the post-processing configuration of a simulation run.
// Every field is optional; the Get* methods supply the defaults.
type PostConfig struct {
	// Output layout
	OutputDir   *string `json:"output_dir,omitempty"`
	CatalogPath *string `json:"catalog_path,omitempty"` // empty disables the catalog

	// Snapshot trigger, in simulated seconds
	PlotInterval *float64 `json:"plot_interval,omitempty"`
	DtPrecision  *int     `json:"dt_precision,omitempty"`

	// Node fields exported on each snapshot
	DepthField     *string `json:"depth_field,omitempty"`
	ElevationField *string `json:"elevation_field,omitempty"`

	// Hydrograph
	DischargeFile   *string  `json:"discharge_file,omitempty"` // empty disables the plot
	DischargeLabels []string `json:"discharge_labels,omitempty"`
	PlotFormat      *string  `json:"plot_format,omitempty"` // png, svg, pdf or html
	PlotXMax        *float64 `json:"plot_x_max,omitempty"`
	PlotYMax        *float64 `json:"plot_y_max,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyPostConfig returns a PostConfig with all fields set to nil.
func EmptyPostConfig() *PostConfig {
	return &PostConfig{}
}

// DefaultPostConfig returns a PostConfig with every field populated from
// the built-in defaults.
func DefaultPostConfig() *PostConfig {
	c := EmptyPostConfig()
	return &PostConfig{
		OutputDir:       ptrString(c.GetOutputDir()),
		CatalogPath:     ptrString(c.GetCatalogPath()),
		PlotInterval:    ptrFloat64(c.GetPlotInterval()),
		DtPrecision:     ptrInt(c.GetDtPrecision()),
		DepthField:      ptrString(c.GetDepthField()),
		ElevationField:  ptrString(c.GetElevationField()),
		DischargeFile:   ptrString(c.GetDischargeFile()),
		DischargeLabels: c.GetDischargeLabels(),
		PlotFormat:      ptrString(c.GetPlotFormat()),
		PlotXMax:        ptrFloat64(c.GetPlotXMax()),
		PlotYMax:        ptrFloat64(c.GetPlotYMax()),
	}
}

// LoadPostConfig loads a PostConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadPostConfig(path string) (*PostConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyPostConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *PostConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/flowpost/ and deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadPostConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *PostConfig) Validate() error {
	if c.PlotInterval != nil {
		if !(*c.PlotInterval > 0) || math.IsInf(*c.PlotInterval, 0) {
			return fmt.Errorf("plot_interval must be positive, got %v", *c.PlotInterval)
		}
	}

	if c.DtPrecision != nil {
		if *c.DtPrecision < 0 || *c.DtPrecision > 15 {
			return fmt.Errorf("dt_precision must be between 0 and 15, got %d", *c.DtPrecision)
		}
	}

	if c.PlotFormat != nil {
		switch *c.PlotFormat {
		case "png", "svg", "pdf", "html":
		default:
			return fmt.Errorf("plot_format must be one of png, svg, pdf, html, got %q", *c.PlotFormat)
		}
	}

	if c.PlotXMax != nil && !(*c.PlotXMax > 0) {
		return fmt.Errorf("plot_x_max must be positive, got %v", *c.PlotXMax)
	}
	if c.PlotYMax != nil && !(*c.PlotYMax > 0) {
		return fmt.Errorf("plot_y_max must be positive, got %v", *c.PlotYMax)
	}

	if c.DepthField != nil && *c.DepthField == "" {
		return fmt.Errorf("depth_field must not be empty")
	}
	if c.ElevationField != nil && *c.ElevationField == "" {
		return fmt.Errorf("elevation_field must not be empty")
	}

	return nil
}

// GetOutputDir returns the output_dir value or the default.
func (c *PostConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return "output"
	}
	return *c.OutputDir
}

// GetCatalogPath returns the catalog_path value; empty means no catalog.
func (c *PostConfig) GetCatalogPath() string {
	if c.CatalogPath == nil {
		return ""
	}
	return *c.CatalogPath
}

// GetPlotInterval returns the plot_interval value or the default.
func (c *PostConfig) GetPlotInterval() float64 {
	if c.PlotInterval == nil {
		return 3600 // one simulated hour
	}
	return *c.PlotInterval
}

// GetDtPrecision returns the dt_precision value or the default.
func (c *PostConfig) GetDtPrecision() int {
	if c.DtPrecision == nil {
		return 2
	}
	return *c.DtPrecision
}

// GetDepthField returns the depth_field value or the default.
func (c *PostConfig) GetDepthField() string {
	if c.DepthField == nil {
		return "surface_water__depth"
	}
	return *c.DepthField
}

// GetElevationField returns the elevation_field value or the default.
func (c *PostConfig) GetElevationField() string {
	if c.ElevationField == nil {
		return "topographic__elevation"
	}
	return *c.ElevationField
}

// GetDischargeFile returns the discharge_file value or the default.
// An explicit empty string disables the hydrograph.
func (c *PostConfig) GetDischargeFile() string {
	if c.DischargeFile == nil {
		return "output0_link_surface_water__discharge.txt"
	}
	return *c.DischargeFile
}

// GetDischargeLabels returns the discharge_labels value or the default.
func (c *PostConfig) GetDischargeLabels() []string {
	if len(c.DischargeLabels) == 0 {
		return hydrograph.DefaultOptions().Labels
	}
	return c.DischargeLabels
}

// GetPlotFormat returns the plot_format value or the default.
func (c *PostConfig) GetPlotFormat() string {
	if c.PlotFormat == nil {
		return "png"
	}
	return *c.PlotFormat
}

// GetPlotXMax returns the plot_x_max value or the default.
func (c *PostConfig) GetPlotXMax() float64 {
	if c.PlotXMax == nil {
		return 86400
	}
	return *c.PlotXMax
}

// GetPlotYMax returns the plot_y_max value or the default.
func (c *PostConfig) GetPlotYMax() float64 {
	if c.PlotYMax == nil {
		return 80
	}
	return *c.PlotYMax
}

// Schedule returns the snapshot schedule described by the config.
func (c *PostConfig) Schedule() schedule.Schedule {
	return schedule.Schedule{Interval: c.GetPlotInterval(), Precision: c.GetDtPrecision()}
}

// PlotOptions returns hydrograph options with the configured labels and limits.
func (c *PostConfig) PlotOptions() hydrograph.Options {
	o := hydrograph.DefaultOptions()
	o.Labels = c.GetDischargeLabels()
	o.XMax = c.GetPlotXMax()
	o.YMax = c.GetPlotYMax()
	return o
}
