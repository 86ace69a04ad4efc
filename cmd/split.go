package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/export"
)

var splitAt timeFlag

var splitCmd = &cobra.Command{
	Use:   "split <media> --at <time>",
	Short: "Split the interval at a position in two",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], 0)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.at(float64(splitAt)); err != nil {
			return err
		}

		second, err := s.eng.Split()
		if err != nil {
			return err
		}
		if err := s.save(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("Split at %s, new interval %s\n", export.Clock(float64(splitAt)), describe(second))
		return nil
	},
}

func init() {
	splitCmd.Flags().Var(&splitAt, "at", "split point (seconds or m:ss)")
	_ = splitCmd.MarkFlagRequired("at")
	rootCmd.AddCommand(splitCmd)
}
