package export_test

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/cliptag/internal/annotation"
	"github.com/fakeyudi/cliptag/internal/export"
	"github.com/fakeyudi/cliptag/internal/store"
)

func labeled(t testing.TB, start, end float64, l annotation.Labels) *annotation.Annotation {
	t.Helper()
	a := annotation.New(start, end, annotation.Anonymous)
	if err := a.SetLabels(l, annotation.Anonymous); err != nil {
		t.Fatalf("SetLabels: %v", err)
	}
	return a
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	out := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		out[f.Name] = string(b)
	}
	return out
}

func TestBuildOneRowPerValue(t *testing.T) {
	doc := store.NewDocument([]*annotation.Annotation{
		labeled(t, 0, 1.5, annotation.Labels{Posture: "Sitting", Behaviors: []string{"Eating", "Reading"}, Notes: "not exported"}),
	}, "/v/clip.mp4", 1, 10)

	b := export.Build(doc)

	posture := b.Records["posture.csv"]
	if len(posture) != 1 || posture[0].Prediction != "Sitting" || posture[0].LabelSet != "posture" || posture[0].Source != "human" {
		t.Errorf("unexpected posture rows: %+v", posture)
	}
	if hlb := b.Records["high_level_behavior.csv"]; len(hlb) != 2 || hlb[1].Prediction != "Reading" || hlb[0].LabelSet != "hlb" {
		t.Errorf("unexpected behavior rows: %+v", hlb)
	}
	if pa := b.Records["pa_type.csv"]; len(pa) != 1 || pa[0].Prediction != annotation.ActivityTypeUnlabeled {
		t.Errorf("sentinels should be exported: %+v", pa)
	}
	for _, rows := range b.Records {
		for _, r := range rows {
			if r.Prediction == "not exported" {
				t.Error("notes leaked into export")
			}
		}
	}
}

func TestBuildSkipsUndecodableIntervals(t *testing.T) {
	bad := annotation.New(0, 1, annotation.Anonymous)
	bad.Revisions[0].Body = "not json"
	doc := store.NewDocument([]*annotation.Annotation{bad, labeled(t, 2, 3, annotation.Labels{Posture: "Lying"})}, "/v/clip.mp4", 1, 10)

	b := export.Build(doc)
	if len(b.Skipped) != 1 {
		t.Fatalf("expected one skipped interval, got %d", len(b.Skipped))
	}
	if got := b.Records["posture.csv"]; len(got) != 1 || got[0].Start != 2 {
		t.Errorf("unexpected posture rows: %+v", got)
	}
}

func TestZIPRendererLayout(t *testing.T) {
	doc := store.NewDocument([]*annotation.Annotation{
		labeled(t, 0, 1.25, annotation.Labels{Posture: "Sitting"}),
	}, "/v/clip.mp4", 77, 10)
	b := export.Build(doc)
	// Drop a category to check that empty files are omitted.
	delete(b.Records, "experimental_situation.csv")

	data, err := (&export.ZIPRenderer{}).Render(b)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	files := readZip(t, data)

	if _, ok := files[export.LabelsFile]; !ok {
		t.Fatal("archive is missing labels.json")
	}
	if _, ok := files["experimental_situation.csv"]; ok {
		t.Error("empty category should not produce a file")
	}
	rows, err := csv.NewReader(strings.NewReader(files["posture.csv"])).ReadAll()
	if err != nil {
		t.Fatalf("parse posture.csv: %v", err)
	}
	want := [][]string{
		export.Header,
		{"0.0", "1.25", "Sitting", "human", "posture", "0.0", "1.25"},
	}
	if len(rows) != len(want) || strings.Join(rows[0], ",") != strings.Join(want[0], ",") || strings.Join(rows[1], ",") != strings.Join(want[1], ",") {
		t.Errorf("posture.csv = %v, want %v", rows, want)
	}
}

// Feature: cliptag, Property 7: Export archive round-trip
func TestExportImportRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 5).Draw(rt, "n")
		list := make([]*annotation.Annotation, n)
		at := 0.0
		for i := range list {
			at += rapid.Float64Range(0, 5).Draw(rt, "gap")
			length := rapid.Float64Range(0.1, 30).Draw(rt, "length")
			list[i] = labeled(t, at, at+length, annotation.Labels{
				Posture:   rapid.SampledFrom([]string{"Sitting", "Standing", ""}).Draw(rt, "posture"),
				Behaviors: rapid.SliceOfN(rapid.SampledFrom([]string{"Eating", "Reading", "Walking"}), 0, 3).Draw(rt, "behaviors"),
			})
			at += length
		}
		doc := store.NewDocument(list, "/v/clip.mp4", rapid.Int64().Draw(rt, "hash"), at)

		data, err := (&export.ZIPRenderer{}).Render(export.Build(doc))
		if err != nil {
			rt.Fatalf("Render: %v", err)
		}
		back, err := export.ParserFor(data).Parse(data)
		if err != nil {
			rt.Fatalf("Parse: %v", err)
		}
		if back.VideoHash != doc.VideoHash || len(back.Annotations) != len(doc.Annotations) {
			rt.Fatalf("round trip changed header or count")
		}
		for i, a := range back.List() {
			if a.ID != list[i].ID || a.Start != list[i].Start || a.End != list[i].End {
				rt.Errorf("interval %d changed: %+v", i, a)
			}
			got, _ := a.Labels()
			want, _ := list[i].Labels()
			if !got.Equal(want) {
				rt.Errorf("interval %d labels changed", i)
			}
		}
	})
}

func TestMarkdownRendererTable(t *testing.T) {
	doc := store.NewDocument([]*annotation.Annotation{
		labeled(t, 61.5, 75, annotation.Labels{Posture: "Sitting", Notes: "a|b"}),
	}, "/v/clip.mp4", 1, 3700)

	out, err := (&export.MarkdownRenderer{}).Render(export.Build(doc))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	s := string(out)
	for _, want := range []string{"# /v/clip.mp4", "- Duration: 1:01:40.000", "| 1 | 01:01.500 | 01:15.000 | Sitting |", `a\|b`} {
		if !strings.Contains(s, want) {
			t.Errorf("markdown missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, annotation.BehaviorUnlabeled) {
		t.Error("sentinels should render as empty cells")
	}
}
