package profile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakeyudi/cliptag/internal/annotation"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	assert.False(t, Exists())

	require.NoError(t, Save(&Profile{Name: "Ada", ReviewerID: "r-7", ExportDir: "/exports"}))
	assert.True(t, Exists())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, annotation.Author{ID: "r-7", Name: "Ada"}, got.Author())
}

func TestLoadMissingProfile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cliptag setup")
}

func TestAuthorFallsBackToAnonymous(t *testing.T) {
	var p *Profile
	assert.Equal(t, annotation.Anonymous, p.Author())
	assert.Equal(t, annotation.Author{ID: "NA", Name: "Bo"}, (&Profile{Name: "Bo"}).Author())
}

func TestRunSetupUsesAnswersAndDefaults(t *testing.T) {
	in := strings.NewReader("Grace\n\n/tmp/out\n")
	var out bytes.Buffer

	prof, err := RunSetup(&Profile{ReviewerID: "keep-me", ExportDir: "."}, in, &out)
	require.NoError(t, err)
	assert.Equal(t, "Grace", prof.Name)
	assert.Equal(t, "keep-me", prof.ReviewerID, "empty answer keeps the default")
	assert.Equal(t, "/tmp/out", prof.ExportDir)
	assert.Contains(t, out.String(), "reviewer setup")
}

func TestRunSetupGeneratesReviewerID(t *testing.T) {
	prof, err := RunSetup(nil, strings.NewReader("Lin\n\n\n"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Len(t, prof.ReviewerID, 8)
	assert.Equal(t, ".", prof.ExportDir)
}
