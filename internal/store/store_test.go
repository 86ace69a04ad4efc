package store_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/cliptag/internal/annotation"
	"github.com/fakeyudi/cliptag/internal/store"
)

var backends = []string{store.BackendJSON, store.BackendBolt, store.BackendSQLite}

func openStore(t *testing.T, backend string) store.Store {
	t.Helper()
	s, err := store.Open(store.Options{Backend: backend, Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(%s): %v", backend, err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// generateAnnotation produces an arbitrary annotation with a valid range.
func generateAnnotation(t *rapid.T, label string) *annotation.Annotation {
	start := rapid.Float64Range(0, 10_000).Draw(t, label+"_start")
	length := rapid.Float64Range(0.01, 600).Draw(t, label+"_length")
	by := annotation.Author{
		ID:   rapid.StringN(1, 12, -1).Draw(t, label+"_user_id"),
		Name: rapid.StringN(1, 24, -1).Draw(t, label+"_user_name"),
	}
	a := annotation.New(start, start+length, by)
	l := annotation.Labels{
		Posture: rapid.SampledFrom([]string{"", "Sitting", "Standing", "Lying"}).Draw(t, label+"_posture"),
		Notes:   rapid.StringN(0, 40, -1).Draw(t, label+"_notes"),
	}
	if err := a.SetLabels(l, by); err != nil {
		t.Fatalf("SetLabels: %v", err)
	}
	if rapid.Bool().Draw(t, label+"_has_shape") {
		x := rapid.Float64Range(0, 1).Draw(t, label+"_x1")
		a.Shape.X1 = &x
	}
	return a
}

// Feature: cliptag, Property 6: Autosave persistence round-trip
func TestAutosaveRoundTrip(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			s := openStore(t, backend)
			media := filepath.Join(t.TempDir(), "clip.mp4")

			rapid.Check(t, func(t *rapid.T) {
				n := rapid.IntRange(0, 6).Draw(t, "n")
				list := make([]*annotation.Annotation, n)
				for i := range list {
					list[i] = generateAnnotation(t, "a")
				}
				hash := rapid.Int64().Draw(t, "hash")
				original := store.NewDocument(list, media, hash, 120)

				if err := s.Save(context.Background(), original); err != nil {
					t.Fatalf("Save: %v", err)
				}
				loaded, err := s.Load(context.Background(), media)
				if err != nil {
					t.Fatalf("Load: %v", err)
				}

				if loaded.VideoHash != hash {
					t.Errorf("VideoHash mismatch: got %d, want %d", loaded.VideoHash, hash)
				}
				if loaded.VideoPath != media {
					t.Errorf("VideoPath mismatch: got %q, want %q", loaded.VideoPath, media)
				}
				got := loaded.List()
				if len(got) != len(list) {
					t.Fatalf("annotation count mismatch: got %d, want %d", len(got), len(list))
				}
				for i, want := range list {
					g := got[i]
					if g.ID != want.ID || g.Start != want.Start || g.End != want.End {
						t.Errorf("annotation %d: got %s [%v,%v], want %s [%v,%v]", i, g.ID, g.Start, g.End, want.ID, want.Start, want.End)
					}
					if len(g.Revisions) != len(want.Revisions) || g.Revisions[0] != want.Revisions[0] {
						t.Errorf("annotation %d revisions mismatch", i)
					}
					if (g.Shape.X1 == nil) != (want.Shape.X1 == nil) {
						t.Errorf("annotation %d shape mismatch", i)
					}
				}
			})
		})
	}
}

// TestLoadReturnsErrNoAutosave verifies that Load returns ErrNoAutosave when
// nothing has been saved for the media.
func TestLoadReturnsErrNoAutosave(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			s := openStore(t, backend)
			_, err := s.Load(context.Background(), "/videos/missing.mp4")
			if !errors.Is(err, store.ErrNoAutosave) {
				t.Errorf("expected ErrNoAutosave, got: %v", err)
			}
		})
	}
}

func TestDeleteAndList(t *testing.T) {
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			s := openStore(t, backend)
			ctx := context.Background()
			a := annotation.New(0, 1, annotation.Anonymous)

			for _, p := range []string{"/videos/a.mp4", "/videos/b.mp4"} {
				if err := s.Save(ctx, store.NewDocument([]*annotation.Annotation{a}, p, 1, 10)); err != nil {
					t.Fatalf("Save: %v", err)
				}
			}
			sums, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(sums) != 2 {
				t.Fatalf("List returned %d entries, want 2", len(sums))
			}

			if err := s.Delete(ctx, "/videos/a.mp4"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := s.Delete(ctx, "/videos/a.mp4"); err != nil {
				t.Fatalf("second Delete: %v", err)
			}
			if _, err := s.Load(ctx, "/videos/a.mp4"); !errors.Is(err, store.ErrNoAutosave) {
				t.Errorf("expected ErrNoAutosave after delete, got %v", err)
			}
			if _, err := s.Load(ctx, "/videos/b.mp4"); err != nil {
				t.Errorf("b.mp4 should survive: %v", err)
			}
		})
	}
}

// TestJSONStoreIgnoresOtherMediaWithSameStem covers two files that map to the
// same <stem>_autosave.json.
func TestJSONStoreIgnoresOtherMediaWithSameStem(t *testing.T) {
	s := openStore(t, store.BackendJSON)
	ctx := context.Background()

	if err := s.Save(ctx, store.NewDocument(nil, "/one/clip.mp4", 1, 10)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := s.Load(ctx, "/two/clip.mov"); !errors.Is(err, store.ErrNoAutosave) {
		t.Errorf("expected ErrNoAutosave for other media, got %v", err)
	}
}

func TestJSONStoreFileLayout(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(store.Options{Dir: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	a := annotation.New(1.5, 4, annotation.Anonymous)
	if err := s.Save(context.Background(), store.NewDocument([]*annotation.Annotation{a}, "/v/session 3.mp4", 42, 10)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "autosave", "session 3_autosave.json"))
	if err != nil {
		t.Fatalf("autosave file missing: %v", err)
	}
	var raw struct {
		Annotations []struct {
			ID    string `json:"id"`
			Range struct {
				Start float64 `json:"start"`
				End   float64 `json:"end"`
			} `json:"range"`
			Comments []struct {
				Body string `json:"body"`
			} `json:"comments"`
		} `json:"annotations"`
		VideoHash int64  `json:"videohash"`
		VideoPath string `json:"video_path"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw.VideoHash != 42 || raw.VideoPath != "/v/session 3.mp4" {
		t.Errorf("unexpected header: %+v", raw)
	}
	if len(raw.Annotations) != 1 || raw.Annotations[0].Range.Start != 1.5 || raw.Annotations[0].Comments[0].Body == "" {
		t.Errorf("unexpected annotations: %+v", raw.Annotations)
	}
}

func TestLoadRejectsFutureSchema(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(store.Options{Dir: dir})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	doc := store.NewDocument(nil, "/v/clip.mp4", 1, 10)
	doc.SchemaVersion = "2.0.0"
	if err := s.Save(context.Background(), doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	_, err = s.Load(context.Background(), "/v/clip.mp4")
	var se *store.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
}

func TestLegacyDocumentWithoutSchemaVersion(t *testing.T) {
	doc := &store.Document{VideoPath: "/v/clip.mp4"}
	if err := doc.CheckSchema(); err != nil {
		t.Errorf("legacy document rejected: %v", err)
	}
}

func TestVerify(t *testing.T) {
	doc := store.NewDocument(nil, "/v/clip.mp4", 1234, 10)

	if err := store.Verify(doc, 1234); err != nil {
		t.Errorf("matching fingerprint: %v", err)
	}
	err := store.Verify(doc, 99)
	var w *store.FingerprintMismatchWarning
	if !errors.As(err, &w) {
		t.Fatalf("expected *FingerprintMismatchWarning, got %v", err)
	}
	if w.Stored != 1234 || w.Actual != 99 {
		t.Errorf("unexpected warning %+v", w)
	}

	doc.VideoHash = 0
	if err := store.Verify(doc, 99); err != nil {
		t.Errorf("document without fingerprint should verify: %v", err)
	}
}

// TestOpenFailurePropagatesError verifies that Open returns an error when the
// data directory cannot be created.
func TestOpenFailurePropagatesError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root; permission checks are ineffective")
	}

	tmp := t.TempDir()
	if err := os.Chmod(tmp, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(tmp, 0o755) })

	if _, err := store.Open(store.Options{Dir: filepath.Join(tmp, "cliptag")}); err == nil {
		t.Fatal("expected error opening store in unwritable directory, got nil")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := store.Open(store.Options{Backend: "redis", Dir: t.TempDir()}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
