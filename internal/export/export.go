// Package export turns an autosave document into the label archive handed to
// downstream tooling: labels.json plus one CSV per label category, zipped.
package export

import (
	"github.com/fakeyudi/cliptag/internal/annotation"
	"github.com/fakeyudi/cliptag/internal/store"
)

// Source marks every exported row as human-labeled.
const Source = "human"

// LabelsFile is the archive entry holding the full document.
const LabelsFile = "labels.json"

// Header is the first row of every category CSV.
var Header = []string{"START_TIME", "STOP_TIME", "PREDICTION", "SOURCE", "LABELSET", "VIDEO_START_TIME", "VIDEO_END_TIME"}

// Category maps a label category to its CSV file and labelset name.
type Category struct {
	Name     string
	File     string
	LabelSet string
	values   func(annotation.Labels) []string
}

// Categories lists the exported categories in archive order. Notes are not
// exported.
var Categories = []Category{
	{annotation.CategoryPosture, "posture.csv", "posture", func(l annotation.Labels) []string { return []string{l.Posture} }},
	{annotation.CategoryBehavior, "high_level_behavior.csv", "hlb", func(l annotation.Labels) []string { return l.Behaviors }},
	{annotation.CategoryActivityType, "pa_type.csv", "pa_type", func(l annotation.Labels) []string { return []string{l.ActivityType} }},
	{annotation.CategoryParameters, "behavioral_parameters.csv", "behavioral_parameters", func(l annotation.Labels) []string { return l.Parameters }},
	{annotation.CategorySituation, "experimental_situation.csv", "experimental_situation", func(l annotation.Labels) []string { return []string{l.Situation} }},
}

// Record is one CSV row: one selected value of one interval.
type Record struct {
	Start      float64 `json:"start"`
	Stop       float64 `json:"stop"`
	Prediction string  `json:"prediction"`
	Source     string  `json:"source"`
	LabelSet   string  `json:"labelset"`
	VideoStart float64 `json:"video_start"`
	VideoEnd   float64 `json:"video_end"`
}

// Bundle is the renderable content of an export archive.
type Bundle struct {
	Document *store.Document
	// Records holds the rows per CSV file name.
	Records map[string][]Record
	// Skipped lists intervals whose labels could not be decoded.
	Skipped []error
}

// Build derives the per-category rows from doc. Sentinel values are
// exported like any other selection; empty values are not.
func Build(doc *store.Document) *Bundle {
	b := &Bundle{Document: doc, Records: map[string][]Record{}}
	for _, a := range doc.List() {
		l, err := a.Labels()
		if err != nil {
			b.Skipped = append(b.Skipped, err)
			continue
		}
		for _, c := range Categories {
			for _, v := range c.values(l) {
				if v == "" {
					continue
				}
				b.Records[c.File] = append(b.Records[c.File], Record{
					Start:      a.Start,
					Stop:       a.End,
					Prediction: v,
					Source:     Source,
					LabelSet:   c.LabelSet,
					VideoStart: a.Start,
					VideoEnd:   a.End,
				})
			}
		}
	}
	return b
}

// Files returns the CSV files that have rows, in archive order.
func (b *Bundle) Files() []Category {
	var out []Category
	for _, c := range Categories {
		if len(b.Records[c.File]) > 0 {
			out = append(out, c)
		}
	}
	return out
}
