package cmd

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/store"
)

var discardCmd = &cobra.Command{
	Use:   "discard <media>",
	Short: "Delete the autosave of a recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if _, err := st.Load(cmd.Context(), abs); err != nil {
			if errors.Is(err, store.ErrNoAutosave) {
				cmd.Println("no autosave for " + abs)
				return nil
			}
			return err
		}
		if err := st.Delete(cmd.Context(), abs); err != nil {
			return err
		}
		cmd.Println("Discarded autosave for " + abs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discardCmd)
}
