package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/config"
	"github.com/fakeyudi/cliptag/internal/logging"
	"github.com/fakeyudi/cliptag/internal/profile"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// activeProfile holds the loaded reviewer profile.
var activeProfile *profile.Profile

// logger is built from the merged config; logCloser releases its file.
var (
	logger    = slog.New(slog.DiscardHandler)
	logCloser io.Closer
)

// Command-line overrides that sit above every config layer.
var (
	flagStore   string
	flagDataDir string
	flagEnvFile string
)

var rootCmd = &cobra.Command{
	Use:          "cliptag",
	Short:        "Label time ranges of a recording and export them for analysis",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup check for the setup command itself.
		if cmd.Name() == "setup" {
			return nil
		}

		// First-run: profile missing → run setup wizard automatically.
		// Only do this when stdin is an interactive terminal.
		if !profile.Exists() {
			if term.IsTerminal(os.Stdin.Fd()) {
				fmt.Fprintln(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), "  Welcome to cliptag! Looks like this is your first time.")
				if err := runSetup(cmd, os.Stdin, true); err != nil {
					return err
				}
			}
			// Non-interactive (tests, pipes): continue anonymously.
		}

		activeProfile = nil
		if profile.Exists() {
			p, err := profile.Load()
			if err != nil {
				return fmt.Errorf("loading profile: %w", err)
			}
			activeProfile = p
		}

		var err error
		if cfg, err = loadConfig(); err != nil {
			return err
		}

		// Profile values fill in config gaps.
		if activeProfile != nil && cfg.ExportDir == "." && activeProfile.ExportDir != "" {
			cfg.ExportDir = activeProfile.ExportDir
		}

		if logCloser != nil {
			logCloser.Close()
		}
		logger, logCloser, err = logging.New(cfg.LogLevel, cfg.LogFile)
		if err != nil {
			return err
		}
		logger.Debug("config loaded", "store", cfg.StoreBackend, "data_dir", cfg.DataDir)
		return nil
	},
}

// loadConfig merges defaults, the global file, the project file, the
// environment and the command-line flags, in that order.
func loadConfig() (config.Config, error) {
	global, err := config.LoadGlobal()
	if err != nil {
		return config.Config{}, fmt.Errorf("loading global config: %w", err)
	}
	project, err := config.LoadProject()
	if err != nil {
		return config.Config{}, fmt.Errorf("loading project config: %w", err)
	}
	env, err := config.LoadEnv(flagEnvFile)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading environment: %w", err)
	}
	flags := &config.Config{StoreBackend: flagStore, DataDir: flagDataDir}

	merged := config.Merge(global, project, env, flags)
	if err := merged.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return merged, nil
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	err := rootCmd.Execute()
	if logCloser != nil {
		logCloser.Close()
	}
	if err != nil {
		os.Exit(1)
	}
}

// GetConfig returns the merged configuration for use by subcommands.
func GetConfig() config.Config {
	return cfg
}

// GetProfile returns the active reviewer profile.
func GetProfile() *profile.Profile {
	return activeProfile
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagStore, "store", "", "autosave backend: json, bolt or sqlite")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding autosaves")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", ".env", "file with CLIPTAG_* variables")
}
