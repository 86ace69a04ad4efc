package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/annotation"
	"github.com/fakeyudi/cliptag/internal/export"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list <media>",
	Short: "List the intervals of a recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, args[0], 0)
		if err != nil {
			return err
		}
		defer s.Close()

		var r export.Renderer
		switch listFormat {
		case "text":
			printIntervals(cmd, s.eng.Intervals())
			return nil
		case "markdown", "md":
			r = &export.MarkdownRenderer{}
		case "json":
			r = &export.JSONRenderer{}
		default:
			return fmt.Errorf("--format: want text, markdown or json, got %q", listFormat)
		}
		data, err := r.Render(export.Build(s.snapshot()))
		if err != nil {
			return err
		}
		cmd.Println(strings.TrimRight(string(data), "\n"))
		return nil
	},
}

// printIntervals writes one line per interval with its real labels.
func printIntervals(cmd *cobra.Command, list []*annotation.Annotation) {
	if len(list) == 0 {
		cmd.Println("no intervals")
		return
	}
	for i, a := range list {
		cmd.Printf("%3d  %s  %s\n", i+1, describe(a), labelSummary(a))
	}
}

// labelSummary lists the non-sentinel labels of a as category=value pairs.
func labelSummary(a *annotation.Annotation) string {
	l, err := a.Labels()
	if err != nil {
		return "(unreadable labels)"
	}
	var parts []string
	add := func(name, sentinel string, vals ...string) {
		var real []string
		for _, v := range vals {
			if v != sentinel {
				real = append(real, v)
			}
		}
		if len(real) > 0 {
			parts = append(parts, name+"="+strings.Join(real, ","))
		}
	}
	add("posture", annotation.PostureUnlabeled, l.Posture)
	add("behavior", annotation.BehaviorUnlabeled, l.Behaviors...)
	add("pa", annotation.ActivityTypeUnlabeled, l.ActivityType)
	add("params", annotation.ParameterUnlabeled, l.Parameters...)
	add("situation", annotation.SituationUnlabeled, l.Situation)
	if l.Notes != "" {
		parts = append(parts, fmt.Sprintf("notes=%q", l.Notes))
	}
	if len(parts) == 0 {
		return "unlabeled"
	}
	return strings.Join(parts, "  ")
}

func init() {
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "output format: text, markdown or json")
	rootCmd.AddCommand(listCmd)
}
