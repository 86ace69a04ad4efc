package cmd

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fakeyudi/cliptag/internal/export"
	"github.com/fakeyudi/cliptag/internal/store"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	resetFlags(root)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

// resetFlags puts every flag back to its default so runs do not leak into
// each other through the package-level flag variables.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// sandbox isolates HOME, XDG_DATA_HOME and the working directory, and
// returns the path of a fake media file.
func sandbox(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmp, "data"))
	t.Chdir(tmp)
	media := filepath.Join(tmp, "clip.mp4")
	require.NoError(t, os.WriteFile(media, []byte("not really a video"), 0o644))
	return media
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := executeCommand(rootCmd, args...)
	require.NoError(t, err, out)
	return out
}

func TestAddListLabel(t *testing.T) {
	media := sandbox(t)

	out := run(t, "add", media, "--start", "1:00", "--end", "75.5", "--posture", "Sitting", "--behavior", "Eating", "--behavior", "Reading")
	assert.Contains(t, out, "Added 01:00.000-01:15.500")

	out = run(t, "list", media)
	assert.Contains(t, out, "posture=Sitting")
	assert.Contains(t, out, "behavior=Eating,Reading")

	run(t, "label", media, "--at", "70", "--posture", "Standing", "--notes", "turned around")
	out = run(t, "list", media)
	assert.Contains(t, out, "posture=Standing")
	assert.Contains(t, out, "behavior=Eating,Reading", "untouched categories are kept")
	assert.Contains(t, out, `notes="turned around"`)
}

func TestAddRejectsOverlapAndUnknownLabel(t *testing.T) {
	media := sandbox(t)
	run(t, "add", media, "--start", "10", "--end", "20")

	_, err := executeCommand(rootCmd, "add", media, "--start", "15", "--end", "25")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inside interval")

	_, err = executeCommand(rootCmd, "add", media, "--start", "30", "--end", "40", "--posture", "Levitating")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Levitating")

	out := run(t, "list", media)
	assert.Equal(t, 1, strings.Count(out, "\n"), "only the first interval was stored: %s", out)
}

func TestLabelWithoutInterval(t *testing.T) {
	media := sandbox(t)
	_, err := executeCommand(rootCmd, "label", media, "--at", "5", "--posture", "Sitting")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no interval")

	_, err = executeCommand(rootCmd, "label", media, "--at", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")
}

func TestSplitMergeDeleteNav(t *testing.T) {
	media := sandbox(t)
	run(t, "add", media, "--start", "0", "--end", "10", "--posture", "Lying")

	out := run(t, "split", media, "--at", "4")
	assert.Contains(t, out, "new interval 00:04.000-00:10.000")

	out = run(t, "nav", media, "--at", "1", "--direction", "next")
	assert.Contains(t, out, "4s")

	out = run(t, "list", media)
	assert.Equal(t, 2, strings.Count(out, "posture=Lying"))

	out = run(t, "merge", media, "--at", "2", "--direction", "next")
	assert.Contains(t, out, "Merged into 00:00.000-00:10.000")

	out = run(t, "delete", media, "--at", "30")
	assert.Contains(t, out, "Deleted 00:00.000-00:10.000", "delete falls back to the last interval before the position")
	assert.Contains(t, run(t, "list", media), "no intervals")
}

func TestMergeRefusesGap(t *testing.T) {
	media := sandbox(t)
	run(t, "add", media, "--start", "0", "--end", "10")
	run(t, "add", media, "--start", "12", "--end", "20")

	_, err := executeCommand(rootCmd, "merge", media, "--at", "5")
	require.Error(t, err)
	_, err = executeCommand(rootCmd, "merge", media, "--at", "5", "--direction", "sideways")
	require.Error(t, err)
}

func TestPositionOutsideKnownDuration(t *testing.T) {
	media := sandbox(t)
	run(t, "add", media, "--start", "0", "--end", "10", "--duration", "60")
	_, err := executeCommand(rootCmd, "split", media, "--at", "90")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the media")
}

func TestBadTimeFlag(t *testing.T) {
	media := sandbox(t)
	_, err := executeCommand(rootCmd, "add", media, "--start", "1:75", "--end", "2:00")
	require.Error(t, err)
}

func TestExportZipAndImportRoundTrip(t *testing.T) {
	media := sandbox(t)
	run(t, "add", media, "--start", "0", "--end", "5", "--posture", "Sitting", "--notes", "private")
	run(t, "add", media, "--start", "5", "--end", "9", "--behavior", "Eating")

	outDir := filepath.Join(filepath.Dir(media), "out")
	out := run(t, "export", media, "-o", outDir)
	archive := filepath.Join(outDir, "clip_labels.zip")
	assert.Contains(t, out, archive)

	data, err := os.ReadFile(archive)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, export.LabelsFile)
	assert.Contains(t, names, "posture.csv")

	run(t, "discard", media)
	assert.Contains(t, run(t, "list", media), "no intervals")

	out = run(t, "import", media, archive)
	assert.Contains(t, out, "Imported 2 intervals (replaced 0)")
	assert.Contains(t, run(t, "list", media), "posture=Sitting")
}

func TestExportCSVFiles(t *testing.T) {
	media := sandbox(t)
	run(t, "add", media, "--start", "0", "--end", "5", "--posture", "Sitting")

	outDir := t.TempDir()
	run(t, "export", media, "--format", "csv", "-o", outDir)
	data, err := os.ReadFile(filepath.Join(outDir, "clip_posture.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(export.Header, ","), lines[0])
	assert.Equal(t, "0.0,5.0,Sitting,human,posture,0.0,5.0", lines[1])
}

func TestImportFingerprintMismatchNeedsForce(t *testing.T) {
	media := sandbox(t)
	doc := store.NewDocument(nil, media, 12345, 60)
	data, err := (&export.JSONRenderer{}).Render(&export.Bundle{Document: doc})
	require.NoError(t, err)
	labels := filepath.Join(filepath.Dir(media), "labels.json")
	require.NoError(t, os.WriteFile(labels, data, 0o644))

	_, err = executeCommand(rootCmd, "import", media, labels)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	out := run(t, "import", media, labels, "--force")
	assert.Contains(t, out, "Imported 0 intervals")
}

func TestListMarkdown(t *testing.T) {
	media := sandbox(t)
	run(t, "add", media, "--start", "0", "--end", "5", "--situation", "Lab protocol")
	out := run(t, "list", media, "--format", "markdown")
	assert.Contains(t, out, "| 1 | 00:00.000 | 00:05.000 |")
	assert.Contains(t, out, "Lab protocol")
}

func TestStatus(t *testing.T) {
	media := sandbox(t)
	out := run(t, "status")
	assert.Contains(t, out, "no autosaves")

	run(t, "add", media, "--start", "0", "--end", "5")
	out = run(t, "status")
	assert.Contains(t, out, "1 intervals")

	out = run(t, "status", media)
	assert.Contains(t, out, "Intervals: 1")
	assert.Contains(t, out, "Labeled: 00:05.000")
}

func TestStoreBackendFlag(t *testing.T) {
	media := sandbox(t)
	for _, backend := range []string{store.BackendBolt, store.BackendSQLite} {
		run(t, "--store", backend, "add", media, "--start", "0", "--end", "5")
		out := run(t, "--store", backend, "list", media)
		assert.Contains(t, out, "00:00.000-00:05.000", backend)
	}
	// The default json store never saw those writes.
	assert.Contains(t, run(t, "list", media), "no intervals")
}

func TestSetupWritesProfile(t *testing.T) {
	media := sandbox(t)
	rootCmd.SetIn(strings.NewReader("Ada\nr-1\n/exports\n"))
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"setup"})
	_, err := rootCmd.ExecuteC()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "attributed to Ada (r-1)")

	// New revisions are attributed to the reviewer.
	run(t, "add", media, "--start", "0", "--end", "1")
	out := run(t, "list", media, "--format", "json")
	assert.Contains(t, out, `"user_name": "Ada"`)
}

func TestInvalidConfigIsReported(t *testing.T) {
	media := sandbox(t)
	require.NoError(t, os.WriteFile(".cliptagconfig", []byte(`{"seed_mode": "sometimes"}`), 0o644))
	_, err := executeCommand(rootCmd, "list", media)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed_mode")
}

func TestMissingMedia(t *testing.T) {
	sandbox(t)
	_, err := executeCommand(rootCmd, "list", "nope.mp4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading media")
}

// Feature: cliptag, Property 10: Clock and seconds notations parse to the same time
func TestParseTimeNotations(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := rapid.IntRange(0, 5).Draw(rt, "h")
		m := rapid.IntRange(0, 59).Draw(rt, "m")
		ms := rapid.IntRange(0, 59999).Draw(rt, "ms")
		want := float64(h*3600+m*60) + float64(ms)/1000

		clock := fmt.Sprintf("%d:%02d:%06.3f", h, m, float64(ms)/1000)
		got, err := parseTime(clock)
		if err != nil {
			rt.Fatalf("parseTime(%q): %v", clock, err)
		}
		secs, err := parseTime(fmt.Sprintf("%.3f", want))
		if err != nil {
			rt.Fatalf("parseTime seconds: %v", err)
		}
		if diff := got - want; diff > 1e-6 || diff < -1e-6 {
			rt.Fatalf("parseTime(%q) = %v, want %v", clock, got, want)
		}
		if diff := secs - got; diff > 1e-6 || diff < -1e-6 {
			rt.Fatalf("seconds %v and clock %v disagree", secs, got)
		}
	})
}

func TestParseTimeRejects(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "1:2:3:4", "1:60", "NaN"} {
		_, err := parseTime(in)
		assert.Error(t, err, in)
	}
}
