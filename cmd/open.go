package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/autosave"
	"github.com/fakeyudi/cliptag/internal/media"
	"github.com/fakeyudi/cliptag/internal/tui"
)

var (
	openDuration float64
	openAt       timeFlag
)

var openCmd = &cobra.Command{
	Use:   "open <media>",
	Short: "Review a recording on an interactive timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], openDuration)
		if err != nil {
			return err
		}
		defer s.Close()
		if s.duration <= 0 {
			return fmt.Errorf("duration of %s is unknown, pass --duration in seconds", args[0])
		}

		vocab, err := vocabulary()
		if err != nil {
			return err
		}
		interval, err := GetConfig().Interval()
		if err != nil {
			return err
		}

		clock := media.NewClock(s.duration)
		clock.Seek(float64(openAt))
		s.pos = clock

		saver := autosave.New(s.store, s.snapshot, interval, logger)
		s.notify = saver.Changed
		// Record the duration even before the first edit.
		saver.Changed()

		return tui.Run(cmd.Context(), tui.Options{
			Engine:      s.eng,
			Clock:       clock,
			Saver:       saver,
			Vocabulary:  vocab,
			MediaPath:   s.media,
			Fingerprint: s.fingerprint,
			Skip:        GetConfig().SkipSeconds,
			Logger:      logger,
		})
	},
}

func init() {
	openCmd.Flags().Float64Var(&openDuration, "duration", 0, "media duration in seconds (remembered in the autosave)")
	openCmd.Flags().Var(&openAt, "at", "start position (seconds or m:ss)")
	rootCmd.AddCommand(openCmd)
}
