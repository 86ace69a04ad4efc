package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/annotation"
	"github.com/fakeyudi/cliptag/internal/export"
)

var (
	addStart    timeFlag
	addEnd      timeFlag
	addDuration float64
	addLabels   labelFlags
)

var addCmd = &cobra.Command{
	Use:   "add <media> --start <time> --end <time>",
	Short: "Add a labeled interval",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], addDuration)
		if err != nil {
			return err
		}
		defer s.Close()

		vocab, err := vocabulary()
		if err != nil {
			return err
		}
		labels, err := addLabels.apply(annotation.Blank(), cmd.Flags(), vocab)
		if err != nil {
			return err
		}

		if err := s.at(float64(addStart)); err != nil {
			return err
		}
		if err := s.eng.Begin(&labels); err != nil {
			return err
		}
		if err := s.at(float64(addEnd)); err != nil {
			return err
		}
		a, err := s.eng.Finish()
		if err != nil {
			return err
		}
		if err := s.save(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("Added %s (%s)\n", describe(a), a.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().Var(&addStart, "start", "interval start (seconds or m:ss)")
	addCmd.Flags().Var(&addEnd, "end", "interval end (seconds or m:ss)")
	addCmd.Flags().Float64Var(&addDuration, "duration", 0, "media duration in seconds")
	addLabels.register(addCmd.Flags())
	_ = addCmd.MarkFlagRequired("start")
	_ = addCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(addCmd)
}

// describe is the one-line form of an interval used in command output.
func describe(a *annotation.Annotation) string {
	return fmt.Sprintf("%s-%s", export.Clock(a.Start), export.Clock(a.End))
}
