package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fakeyudi/cliptag/internal/annotation"
)

// Renderer serializes a Bundle to bytes.
type Renderer interface {
	Render(b *Bundle) ([]byte, error)
}

// JSONRenderer renders the bundle's document as indented labels.json.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(b *Bundle) ([]byte, error) {
	return json.MarshalIndent(b.Document, "", "    ")
}

// CSVRenderer renders the rows of one category file.
type CSVRenderer struct {
	File string
}

func (r *CSVRenderer) Render(b *Bundle) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return nil, err
	}
	for _, rec := range b.Records[r.File] {
		row := []string{
			formatSeconds(rec.Start),
			formatSeconds(rec.Stop),
			rec.Prediction,
			rec.Source,
			rec.LabelSet,
			formatSeconds(rec.VideoStart),
			formatSeconds(rec.VideoEnd),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// formatSeconds writes the shortest exact decimal, keeping a ".0" on whole
// numbers so every time column reads as a float.
func formatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// ZIPRenderer renders the full archive: labels.json plus every non-empty
// category CSV.
type ZIPRenderer struct{}

func (r *ZIPRenderer) Render(b *Bundle) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	entries := []struct {
		name string
		r    Renderer
	}{{LabelsFile, &JSONRenderer{}}}
	for _, c := range b.Files() {
		entries = append(entries, struct {
			name string
			r    Renderer
		}{c.File, &CSVRenderer{File: c.File}})
	}

	for _, e := range entries {
		data, err := e.r.Render(b)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", e.name, err)
		}
		f, err := zw.Create(e.name)
		if err != nil {
			return nil, err
		}
		if _, err := f.Write(data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarkdownRenderer renders a human-readable table of the intervals.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(b *Bundle) ([]byte, error) {
	var sb strings.Builder
	doc := b.Document

	fmt.Fprintf(&sb, "# %s\n\n", doc.VideoPath)
	fmt.Fprintf(&sb, "- Intervals: %d\n", len(doc.Annotations))
	if doc.Duration > 0 {
		fmt.Fprintf(&sb, "- Duration: %s\n", Clock(doc.Duration))
	}
	if !doc.SavedAt.IsZero() {
		fmt.Fprintf(&sb, "- Saved: %s\n", doc.SavedAt.Format("2006-01-02 15:04:05 MST"))
	}
	sb.WriteString("\n")

	if len(doc.Annotations) == 0 {
		sb.WriteString("_No intervals._\n")
		return []byte(sb.String()), nil
	}

	sb.WriteString("| # | Start | End | Posture | Behavior | PA type | Parameters | Situation | Notes |\n")
	sb.WriteString("|---|-------|-----|---------|----------|---------|------------|-----------|-------|\n")
	for i, a := range doc.List() {
		l, err := a.Labels()
		if err != nil {
			fmt.Fprintf(&sb, "| %d | %s | %s | _unreadable labels_ | | | | | |\n", i+1, Clock(a.Start), Clock(a.End))
			continue
		}
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			i+1, Clock(a.Start), Clock(a.End),
			cell(l.Posture, annotation.PostureUnlabeled),
			cells(l.Behaviors, annotation.BehaviorUnlabeled),
			cell(l.ActivityType, annotation.ActivityTypeUnlabeled),
			cells(l.Parameters, annotation.ParameterUnlabeled),
			cell(l.Situation, annotation.SituationUnlabeled),
			escapeCell(l.Notes),
		)
	}
	return []byte(sb.String()), nil
}

func cell(v, sentinel string) string {
	if v == sentinel {
		return ""
	}
	return escapeCell(v)
}

func cells(vs []string, sentinel string) string {
	var out []string
	for _, v := range vs {
		if v != sentinel {
			out = append(out, escapeCell(v))
		}
	}
	return strings.Join(out, ", ")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// Clock formats seconds as h:mm:ss.mmm, dropping the hour when zero.
func Clock(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	ms := int64(sec*1000 + 0.5)
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	ms %= 1000
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms)
	}
	return fmt.Sprintf("%02d:%02d.%03d", m, s, ms)
}
