package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/export"
	"github.com/fakeyudi/cliptag/internal/store"
)

var importForce bool

var importCmd = &cobra.Command{
	Use:   "import <media> <labels.json|archive.zip>",
	Short: "Replace a recording's intervals with an exported label file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", args[1])
			}
			return err
		}
		doc, err := export.ParserFor(data).Parse(data)
		if err != nil {
			return err
		}

		s, err := openSession(cmd, args[0], 0)
		if err != nil {
			return err
		}
		defer s.Close()

		if werr := store.Verify(doc, s.fingerprint); werr != nil {
			var mismatch *store.FingerprintMismatchWarning
			if errors.As(werr, &mismatch) && !importForce {
				return fmt.Errorf("labels were made for different media (fingerprint %d, media %d); pass --force to import anyway",
					mismatch.Stored, mismatch.Actual)
			}
			cmd.PrintErrln("warning: importing labels made for different media")
		}

		replaced := s.eng.Len()
		if err := s.eng.Load(doc.List()); err != nil {
			return fmt.Errorf("labels file is inconsistent: %w", err)
		}
		if s.duration == 0 {
			s.duration = doc.Duration
		}
		if err := s.save(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("Imported %d intervals (replaced %d)\n", s.eng.Len(), replaced)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importForce, "force", false, "import even when the media fingerprint differs")
	rootCmd.AddCommand(importCmd)
}
