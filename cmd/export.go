package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/export"
)

var (
	exportFormat string
	exportOutDir string
)

var exportCmd = &cobra.Command{
	Use:   "export <media>",
	Short: "Write the label archive for a recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], 0)
		if err != nil {
			return err
		}
		defer s.Close()

		b := export.Build(s.snapshot())
		for _, skipped := range b.Skipped {
			cmd.PrintErrln("warning: skipped " + skipped.Error())
		}

		outDir := exportOutDir
		if outDir == "" {
			outDir = GetConfig().ExportDir
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
		stem := strings.TrimSuffix(filepath.Base(s.media), filepath.Ext(s.media))

		type output struct {
			name string
			r    export.Renderer
		}
		var outputs []output
		switch exportFormat {
		case "zip":
			outputs = append(outputs, output{stem + "_labels.zip", &export.ZIPRenderer{}})
		case "json":
			outputs = append(outputs, output{stem + "_" + export.LabelsFile, &export.JSONRenderer{}})
		case "csv":
			for _, c := range b.Files() {
				outputs = append(outputs, output{stem + "_" + c.File, &export.CSVRenderer{File: c.File}})
			}
		case "markdown", "md":
			outputs = append(outputs, output{stem + "_labels.md", &export.MarkdownRenderer{}})
		default:
			return fmt.Errorf("--format: want zip, csv, json or markdown, got %q", exportFormat)
		}

		for _, o := range outputs {
			data, err := o.r.Render(b)
			if err != nil {
				return fmt.Errorf("rendering %s: %w", o.name, err)
			}
			path := filepath.Join(outDir, o.name)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			cmd.Printf("Wrote %s\n", path)
		}
		if len(outputs) == 0 {
			cmd.Println("no intervals to export")
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "zip", "zip, csv, json or markdown")
	exportCmd.Flags().StringVarP(&exportOutDir, "output", "o", "", "output directory (default: export_dir from config)")
	rootCmd.AddCommand(exportCmd)
}
