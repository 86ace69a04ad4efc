package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/export"
	"github.com/fakeyudi/cliptag/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status [media]",
	Short: "Show autosaved recordings, or the state of one recording",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			return mediaStatus(cmd, args[0])
		}

		c := GetConfig()
		dir := c.DataDir
		if dir == "" {
			dir, _ = store.DataDir()
		}
		cmd.Printf("Reviewer: %s\n", GetProfile().Author().Name)
		cmd.Printf("Store: %s (%s)\n", c.StoreBackend, dir)

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		summaries, err := st.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			cmd.Println("no autosaves")
			return nil
		}
		for _, s := range summaries {
			cmd.Printf("  %s  %d intervals  saved %s\n", s.VideoPath, s.Count, s.SavedAt.Local().Format(time.DateTime))
		}
		return nil
	},
}

func mediaStatus(cmd *cobra.Command, mediaPath string) error {
	s, err := openSession(cmd, mediaPath, 0)
	if err != nil {
		return err
	}
	defer s.Close()

	cmd.Printf("Media: %s\n", s.media)
	cmd.Printf("Fingerprint: %d\n", s.fingerprint)
	if s.duration > 0 {
		cmd.Printf("Duration: %s\n", export.Clock(s.duration))
	}
	cmd.Printf("Intervals: %d\n", s.eng.Len())
	var labeled float64
	for _, a := range s.eng.Intervals() {
		labeled += a.Duration()
	}
	cmd.Printf("Labeled: %s\n", export.Clock(labeled))
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
