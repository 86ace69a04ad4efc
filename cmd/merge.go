package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/annotation"
)

var (
	mergeAt        timeFlag
	mergeDirection string
)

var mergeCmd = &cobra.Command{
	Use:   "merge <media> --at <time> [--direction prev|next]",
	Short: "Merge the interval at a position with an adjacent neighbour",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], 0)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.at(float64(mergeAt)); err != nil {
			return err
		}

		var merged *annotation.Annotation
		switch mergeDirection {
		case "prev", "previous":
			merged, err = s.eng.MergePrevious()
		case "next":
			merged, err = s.eng.MergeNext()
		default:
			return fmt.Errorf("--direction: want prev or next, got %q", mergeDirection)
		}
		if err != nil {
			return err
		}
		if err := s.save(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("Merged into %s\n", describe(merged))
		return nil
	},
}

func init() {
	mergeCmd.Flags().Var(&mergeAt, "at", "a position inside the interval (seconds or m:ss)")
	mergeCmd.Flags().StringVar(&mergeDirection, "direction", "next", "neighbour to merge with: prev or next")
	_ = mergeCmd.MarkFlagRequired("at")
	rootCmd.AddCommand(mergeCmd)
}
