package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/export"
)

var (
	navAt        timeFlag
	navDirection string
)

var navCmd = &cobra.Command{
	Use:   "nav <media> --at <time> [--direction prev|next]",
	Short: "Print the nearest interval boundary before or after a position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], 0)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.at(float64(navAt)); err != nil {
			return err
		}

		var t float64
		switch navDirection {
		case "prev", "previous":
			t = s.eng.Previous()
		case "next":
			next, ok := s.eng.Next()
			if !ok {
				cmd.Println("no boundary ahead")
				return nil
			}
			t = next
		default:
			return fmt.Errorf("--direction: want prev or next, got %q", navDirection)
		}
		cmd.Printf("%s\t%s\n", formatTime(t), export.Clock(t))
		return nil
	},
}

func init() {
	navCmd.Flags().Var(&navAt, "at", "position (seconds or m:ss)")
	navCmd.Flags().StringVar(&navDirection, "direction", "next", "prev or next")
	_ = navCmd.MarkFlagRequired("at")
	rootCmd.AddCommand(navCmd)
}
