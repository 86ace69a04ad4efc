package cmd

import (
	"github.com/spf13/cobra"
)

var deleteAt timeFlag

var deleteCmd = &cobra.Command{
	Use:   "delete <media> --at <time>",
	Short: "Delete the interval at a position, or the last one before it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], 0)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.at(float64(deleteAt)); err != nil {
			return err
		}

		a, err := s.eng.Delete()
		if err != nil {
			return err
		}
		if err := s.save(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("Deleted %s\n", describe(a))
		return nil
	},
}

func init() {
	deleteCmd.Flags().Var(&deleteAt, "at", "position (seconds or m:ss)")
	_ = deleteCmd.MarkFlagRequired("at")
	rootCmd.AddCommand(deleteCmd)
}
