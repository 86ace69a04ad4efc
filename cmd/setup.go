package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/profile"
	"github.com/fakeyudi/cliptag/internal/store"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set the reviewer name and ID written into labels",
	Long: `Prompts for the reviewer attribution stored with every label revision
and the default export directory. Existing answers are offered as defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetup(cmd, cmd.InOrStdin(), false)
	},
}

// runSetup asks for the reviewer profile on in and saves it. firstRun adds
// a short introduction.
func runSetup(cmd *cobra.Command, in io.Reader, firstRun bool) error {
	out := cmd.OutOrStdout()
	if firstRun {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Labels carry the name of whoever made them. Tell cliptag who you are.")
	}

	var existing *profile.Profile
	if profile.Exists() {
		p, err := profile.Load()
		if err != nil {
			// Start over rather than refuse; the new answers replace the file.
			fmt.Fprintf(cmd.ErrOrStderr(), "  ⚠ ignoring unreadable profile: %v\n", err)
		} else {
			existing = p
		}
	}

	prof, err := profile.RunSetup(existing, in, out)
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	if err := profile.Save(prof); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}

	author := prof.Author()
	fmt.Fprintf(out, "  ✓ Labels will be attributed to %s (%s).\n", author.Name, author.ID)
	if dir, err := store.DataDir(); err == nil {
		fmt.Fprintf(out, "  Autosaves live in %s.\n", dir)
	}
	fmt.Fprintln(out, "  Run 'cliptag open <media> --duration <seconds>' to start labeling.")
	fmt.Fprintln(out)
	return nil
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
