package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/fakeyudi/cliptag/internal/engine"
)

// Feature: cliptag, Property 8: Config merge precedence
func TestConfigMergePrecedence(t *testing.T) {
	// Generator for a non-empty string field value.
	nonEmptyString := rapid.StringMatching(`[a-zA-Z0-9/_.-]{1,20}`)

	// Each field is independently either unset or set.
	configGen := rapid.Custom(func(t *rapid.T) *Config {
		cfg := &Config{}
		if rapid.Bool().Draw(t, "hasExportDir") {
			cfg.ExportDir = nonEmptyString.Draw(t, "exportDir")
		}
		if rapid.Bool().Draw(t, "hasLogFile") {
			cfg.LogFile = nonEmptyString.Draw(t, "logFile")
		}
		if rapid.Bool().Draw(t, "hasDataDir") {
			cfg.DataDir = nonEmptyString.Draw(t, "dataDir")
		}
		if rapid.Bool().Draw(t, "hasMinSplit") {
			v := rapid.Float64Range(0, 5).Draw(t, "minSplit")
			cfg.Tolerances.MinSplit = &v
		}
		return cfg
	})

	rapid.Check(t, func(t *rapid.T) {
		layers := rapid.SliceOfN(configGen, 0, 4).Draw(t, "layers")

		merged := Merge(layers...)
		defaults := Defaults()

		checkStringField(t, "ExportDir", layers, func(c *Config) string { return c.ExportDir }, defaults.ExportDir, merged.ExportDir)
		checkStringField(t, "LogFile", layers, func(c *Config) string { return c.LogFile }, defaults.LogFile, merged.LogFile)
		checkStringField(t, "DataDir", layers, func(c *Config) string { return c.DataDir }, defaults.DataDir, merged.DataDir)

		want := *defaults.Tolerances.MinSplit
		for _, l := range layers {
			if l.Tolerances.MinSplit != nil {
				want = *l.Tolerances.MinSplit
			}
		}
		if got := merged.EngineTolerances().MinSplit; got != want {
			t.Fatalf("MinSplit: expected %v, got %v", want, got)
		}
	})
}

// checkStringField asserts the merge precedence rule for a single string
// field: the last layer that sets it wins, else the default.
func checkStringField(t *rapid.T, name string, layers []*Config, get func(*Config) string, defaultVal, mergedVal string) {
	t.Helper()
	want := defaultVal
	for _, l := range layers {
		if v := get(l); v != "" {
			want = v
		}
	}
	if mergedVal != want {
		t.Fatalf("%s: expected %q, got %q", name, want, mergedVal)
	}
}

func TestMergeDoesNotAliasLayers(t *testing.T) {
	v := 0.5
	layer := &Config{Tolerances: Tolerances{MinDrag: &v}}
	merged := Merge(layer)
	v = 9
	if got := merged.EngineTolerances().MinDrag; got != 0.5 {
		t.Errorf("merged config follows the layer: got %v", got)
	}
}

func TestDefaultsValues(t *testing.T) {
	d := Defaults()
	if d.StoreBackend != "json" {
		t.Errorf("StoreBackend: want %q, got %q", "json", d.StoreBackend)
	}
	if d.SkipSeconds != 10 {
		t.Errorf("SkipSeconds: want 10, got %v", d.SkipSeconds)
	}
	if d.EngineTolerances() != engine.DefaultTolerances() {
		t.Errorf("tolerances: want engine defaults, got %+v", d.EngineTolerances())
	}
	if iv, err := d.Interval(); err != nil || iv != 2*time.Second {
		t.Errorf("Interval: got %v, %v", iv, err)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	neg := -1.0
	bad := []Config{
		Merge(&Config{StoreBackend: "redis"}),
		Merge(&Config{SeedMode: "sometimes"}),
		Merge(&Config{AutosaveInterval: "soon"}),
		Merge(&Config{Tolerances: Tolerances{Overlap: &neg}}),
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if Merge(&Config{SeedMode: "blank"}).Seed() != engine.StartBlank {
		t.Error("seed_mode blank should map to StartBlank")
	}
}

func TestLoadGlobalMissingFileReturnsDefaults(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config, got nil")
	}
	if cfg.StoreBackend != Defaults().StoreBackend {
		t.Errorf("StoreBackend: want %q, got %q", Defaults().StoreBackend, cfg.StoreBackend)
	}
}

func TestLoadProjectMissingFileReturnsNil(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)

	cfg, err := LoadProject()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil config, got %+v", cfg)
	}
}

func TestLoadProjectOverridesTolerance(t *testing.T) {
	tmp := t.TempDir()
	t.Chdir(tmp)
	if err := os.WriteFile(".cliptagconfig", []byte(`{"tolerances": {"adjacency": 0.5}, "store_backend": "bolt"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	project, err := LoadProject()
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	merged := Merge(nil, project)
	if merged.StoreBackend != "bolt" || merged.EngineTolerances().Adjacency != 0.5 {
		t.Errorf("unexpected merge result %+v", merged)
	}
	if merged.EngineTolerances().MinSplit != engine.DefaultTolerances().MinSplit {
		t.Error("unset tolerance should keep its default")
	}
}

func TestLoadGlobalParseError(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	// Write an invalid JSON file where LoadGlobal expects it.
	cfgDir := filepath.Join(tmp, ".config", "cliptag")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte("{invalid json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadGlobal()
	if err == nil {
		t.Fatal("expected an error for invalid JSON, got nil")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *ParseError, got %T: %v", err, err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("CLIPTAG_STORE", "sqlite")
	t.Setenv("CLIPTAG_MIN_SPLIT", "0.25")

	envFile := filepath.Join(t.TempDir(), ".env")
	content := "CLIPTAG_LOG_LEVEL=debug\nCLIPTAG_STORE=bolt\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("CLIPTAG_LOG_LEVEL") })

	cfg, err := LoadEnv(envFile)
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg.StoreBackend != "sqlite" {
		t.Errorf("real environment should win over .env: got %q", cfg.StoreBackend)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel from .env: got %q", cfg.LogLevel)
	}
	if cfg.Tolerances.MinSplit == nil || *cfg.Tolerances.MinSplit != 0.25 {
		t.Errorf("MinSplit: got %v", cfg.Tolerances.MinSplit)
	}
}

func TestLoadEnvUnsetReturnsNil(t *testing.T) {
	cfg, err := LoadEnv(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected nil layer, got %+v", cfg)
	}
}

func TestLoadEnvBadNumber(t *testing.T) {
	t.Setenv("CLIPTAG_MIN_DRAG", "fast")
	if _, err := LoadEnv(""); err == nil {
		t.Fatal("expected error for non-numeric tolerance")
	}
}

func TestValidateRejectsNonFiniteEnv(t *testing.T) {
	for _, v := range []string{"NaN", "Inf", "-Inf", "+Inf"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("CLIPTAG_OVERLAP_TOLERANCE", v)
			env, err := LoadEnv("")
			if err != nil {
				t.Fatalf("LoadEnv: %v", err)
			}
			d := Defaults()
			if err := Merge(&d, env).Validate(); err == nil {
				t.Errorf("overlap tolerance %s should not validate", v)
			}
		})
	}

	t.Setenv("CLIPTAG_OVERLAP_TOLERANCE", "")
	t.Setenv("CLIPTAG_SKIP_SECONDS", "Inf")
	env, err := LoadEnv("")
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	d := Defaults()
	if err := Merge(&d, env).Validate(); err == nil {
		t.Error("infinite skip seconds should not validate")
	}
}

func TestLoadCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.csv")
	csv := "POSTURE,HIGH LEVEL BEHAVIOR,PA TYPE,Behavioral Parameters,Experimental situation\n" +
		"Sitting,Eating,Light,Indoors,Lab\n" +
		"Standing,,,,\n" +
		"Sitting,Reading,,,\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	v, err := LoadCategories(path)
	if err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	want := []string{"Posture_Unlabeled", "Sitting", "Standing"}
	if len(v.Posture) != len(want) {
		t.Fatalf("Posture = %v, want %v", v.Posture, want)
	}
	for i := range want {
		if v.Posture[i] != want[i] {
			t.Errorf("Posture[%d] = %q, want %q", i, v.Posture[i], want[i])
		}
	}
	if len(v.Behaviors) != 3 || len(v.Situations) != 2 {
		t.Errorf("unexpected vocabulary %+v", v)
	}
}

func TestLoadCategoriesDefault(t *testing.T) {
	v, err := LoadCategories("")
	if err != nil {
		t.Fatalf("LoadCategories: %v", err)
	}
	if len(v.Posture) < 2 || v.Posture[0] != "Posture_Unlabeled" {
		t.Errorf("unexpected default vocabulary %+v", v.Posture)
	}
}
