package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "CLIPTAG_"

// LoadEnv builds a config layer from CLIPTAG_* variables. Variables from
// envFile (if it exists) are loaded first without overriding the real
// environment. Returns nil when no variable is set.
func LoadEnv(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, &ParseError{Path: envFile, Err: err}
		}
	}

	var cfg Config
	set := false
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok && v != "" {
			*dst = v
			set = true
		}
	}
	var firstErr error
	num := func(name string, dst **float64) {
		v, ok := os.LookupEnv(EnvPrefix + name)
		if !ok || v == "" {
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			return
		}
		*dst = &f
		set = true
	}

	str("STORE", &cfg.StoreBackend)
	str("DATA_DIR", &cfg.DataDir)
	str("AUTOSAVE_INTERVAL", &cfg.AutosaveInterval)
	str("SEED_MODE", &cfg.SeedMode)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FILE", &cfg.LogFile)
	str("EXPORT_DIR", &cfg.ExportDir)
	str("CATEGORIES_FILE", &cfg.CategoriesFile)

	var skip *float64
	num("SKIP_SECONDS", &skip)
	if skip != nil {
		cfg.SkipSeconds = *skip
	}
	num("OVERLAP_TOLERANCE", &cfg.Tolerances.Overlap)
	num("CONTAIN_TOLERANCE", &cfg.Tolerances.Contain)
	num("ADJACENCY_TOLERANCE", &cfg.Tolerances.Adjacency)
	num("NAVIGATE_TOLERANCE", &cfg.Tolerances.Navigate)
	num("MIN_SPLIT", &cfg.Tolerances.MinSplit)
	num("MIN_DRAG", &cfg.Tolerances.MinDrag)
	num("DRAG_GAP", &cfg.Tolerances.DragGap)

	if firstErr != nil {
		return nil, firstErr
	}
	if !set {
		return nil, nil
	}
	return &cfg, nil
}
