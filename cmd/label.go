package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/engine"
)

var (
	labelAt     timeFlag
	labelFields labelFlags
)

var labelCmd = &cobra.Command{
	Use:   "label <media> --at <time>",
	Short: "Change the labels of the interval at a position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !labelFields.changed(cmd.Flags()) {
			return errors.New("nothing to change, pass at least one label option")
		}
		s, err := openSession(cmd, args[0], 0)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.at(float64(labelAt)); err != nil {
			return err
		}

		target := s.eng.EditTarget()
		if target.Kind != engine.TargetCommitted {
			return engine.ErrNoInterval
		}
		vocab, err := vocabulary()
		if err != nil {
			return err
		}
		// Malformed stored labels are replaced wholesale.
		base, _ := target.Annotation.Labels()
		labels, err := labelFields.apply(base, cmd.Flags(), vocab)
		if err != nil {
			return err
		}
		if _, err := s.eng.ApplyLabels(labels); err != nil {
			return err
		}
		if err := s.save(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("Labeled %s\n", describe(target.Annotation))
		return nil
	},
}

func init() {
	labelCmd.Flags().Var(&labelAt, "at", "a position inside the interval (seconds or m:ss)")
	labelFields.register(labelCmd.Flags())
	_ = labelCmd.MarkFlagRequired("at")
	rootCmd.AddCommand(labelCmd)
}
