package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fakeyudi/cliptag/internal/engine"
)

// Config holds all configurable cliptag settings.
type Config struct {
	StoreBackend     string     `json:"store_backend"`     // "json" | "bolt" | "sqlite"
	DataDir          string     `json:"data_dir"`          // overrides $XDG_DATA_HOME/cliptag
	AutosaveInterval string     `json:"autosave_interval"` // Go duration, e.g. "2s"
	SkipSeconds      float64    `json:"skip_seconds"`
	SeedMode         string     `json:"seed_mode"` // "reuse" | "blank"
	LogLevel         string     `json:"log_level"`
	LogFile          string     `json:"log_file"`
	ExportDir        string     `json:"export_dir"`
	CategoriesFile   string     `json:"categories_file"` // CSV vocabulary, see LoadCategories
	Tolerances       Tolerances `json:"tolerances"`
}

// Tolerances overrides engine thresholds. Nil fields keep the lower layer's value.
type Tolerances struct {
	Overlap   *float64 `json:"overlap,omitempty"`
	Contain   *float64 `json:"contain,omitempty"`
	Adjacency *float64 `json:"adjacency,omitempty"`
	Navigate  *float64 `json:"navigate,omitempty"`
	MinSplit  *float64 `json:"min_split,omitempty"`
	MinDrag   *float64 `json:"min_drag,omitempty"`
	DragGap   *float64 `json:"drag_gap,omitempty"`
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	d := engine.DefaultTolerances()
	return Config{
		StoreBackend:     "json",
		AutosaveInterval: "2s",
		SkipSeconds:      10,
		SeedMode:         "reuse",
		LogLevel:         "warn",
		ExportDir:        ".",
		Tolerances: Tolerances{
			Overlap:   &d.Overlap,
			Contain:   &d.Contain,
			Adjacency: &d.Adjacency,
			Navigate:  &d.Navigate,
			MinSplit:  &d.MinSplit,
			MinDrag:   &d.MinDrag,
			DragGap:   &d.DragGap,
		},
	}
}

// Dir returns the cliptag config directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "cliptag"), nil
}

// LoadGlobal reads ~/.config/cliptag/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return loadFile(filepath.Join(dir, "config.json"), true)
}

// LoadProject reads .cliptagconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".cliptagconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge layers configs over Defaults in order; later layers win. Nil layers
// and unset fields are skipped.
func Merge(layers ...*Config) Config {
	result := Defaults()
	for _, l := range layers {
		if l == nil {
			continue
		}
		setString(&result.StoreBackend, l.StoreBackend)
		setString(&result.DataDir, l.DataDir)
		setString(&result.AutosaveInterval, l.AutosaveInterval)
		setString(&result.SeedMode, l.SeedMode)
		setString(&result.LogLevel, l.LogLevel)
		setString(&result.LogFile, l.LogFile)
		setString(&result.ExportDir, l.ExportDir)
		setString(&result.CategoriesFile, l.CategoriesFile)
		if l.SkipSeconds > 0 {
			result.SkipSeconds = l.SkipSeconds
		}
		t, o := &result.Tolerances, l.Tolerances
		setFloat(&t.Overlap, o.Overlap)
		setFloat(&t.Contain, o.Contain)
		setFloat(&t.Adjacency, o.Adjacency)
		setFloat(&t.Navigate, o.Navigate)
		setFloat(&t.MinSplit, o.MinSplit)
		setFloat(&t.MinDrag, o.MinDrag)
		setFloat(&t.DragGap, o.DragGap)
	}
	return result
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setFloat(dst **float64, v *float64) {
	if v != nil {
		c := *v
		*dst = &c
	}
}

// Validate checks values that cannot be caught by JSON decoding.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case "json", "bolt", "sqlite":
	default:
		return fmt.Errorf("store_backend: unknown backend %q", c.StoreBackend)
	}
	switch c.SeedMode {
	case "reuse", "blank":
	default:
		return fmt.Errorf("seed_mode: want \"reuse\" or \"blank\", got %q", c.SeedMode)
	}
	if _, err := c.Interval(); err != nil {
		return err
	}
	t := c.EngineTolerances()
	for name, v := range map[string]float64{
		"overlap": t.Overlap, "contain": t.Contain, "adjacency": t.Adjacency,
		"navigate": t.Navigate, "min_split": t.MinSplit, "min_drag": t.MinDrag, "drag_gap": t.DragGap,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("tolerances.%s: must be a finite number, got %v", name, v)
		}
		if v < 0 {
			return fmt.Errorf("tolerances.%s: must not be negative", name)
		}
	}
	if math.IsNaN(c.SkipSeconds) || math.IsInf(c.SkipSeconds, 0) {
		return fmt.Errorf("skip_seconds: must be a finite number, got %v", c.SkipSeconds)
	}
	return nil
}

// Interval parses AutosaveInterval. Zero saves on every change.
func (c Config) Interval() (time.Duration, error) {
	if c.AutosaveInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.AutosaveInterval)
	if err != nil {
		return 0, fmt.Errorf("autosave_interval: %w", err)
	}
	return d, nil
}

// EngineTolerances resolves the tolerance overrides against the engine defaults.
func (c Config) EngineTolerances() engine.Tolerances {
	t := engine.DefaultTolerances()
	pick := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	pick(&t.Overlap, c.Tolerances.Overlap)
	pick(&t.Contain, c.Tolerances.Contain)
	pick(&t.Adjacency, c.Tolerances.Adjacency)
	pick(&t.Navigate, c.Tolerances.Navigate)
	pick(&t.MinSplit, c.Tolerances.MinSplit)
	pick(&t.MinDrag, c.Tolerances.MinDrag)
	pick(&t.DragGap, c.Tolerances.DragGap)
	return t
}

// Seed maps SeedMode to the engine option value.
func (c Config) Seed() engine.SeedMode {
	if c.SeedMode == "blank" {
		return engine.StartBlank
	}
	return engine.ReuseLast
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
