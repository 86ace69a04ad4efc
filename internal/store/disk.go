package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const autosaveSuffix = "_autosave.json"

// diskStore keeps one <stem>_autosave.json per media file in dir.
type diskStore struct {
	dir string
}

func newDiskStore(dir string) (*diskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating autosave directory: %w", err)
	}
	return &diskStore{dir: dir}, nil
}

// path names the file for videoPath. Two media files with the same stem
// share a slot; Load tells them apart by the stored video_path.
func (d *diskStore) path(videoPath string) string {
	base := filepath.Base(videoPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(d.dir, stem+autosaveSuffix)
}

// Save marshals doc to JSON and writes it atomically via a temp file + os.Rename.
func (d *diskStore) Save(_ context.Context, doc *Document) error {
	stamp(doc)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to persist autosave: %w", err)
	}

	// Write to a temp file in the same directory so os.Rename is atomic.
	tmp, err := os.CreateTemp(d.dir, "autosave-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to persist autosave: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to persist autosave: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to persist autosave: %w", err)
	}
	if err = os.Rename(tmpName, d.path(doc.VideoPath)); err != nil {
		return fmt.Errorf("failed to persist autosave: %w", err)
	}
	return nil
}

// Load reads the autosave for videoPath.
// Returns ErrNoAutosave if the file does not exist or belongs to other media.
func (d *diskStore) Load(_ context.Context, videoPath string) (*Document, error) {
	doc, err := readDocument(d.path(videoPath))
	if err != nil {
		return nil, err
	}
	if doc.VideoPath != key(videoPath) {
		return nil, ErrNoAutosave
	}
	return doc, nil
}

func readDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoAutosave
		}
		return nil, fmt.Errorf("failed to read autosave: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse autosave %s: %w", filepath.Base(path), err)
	}
	if err := doc.CheckSchema(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete removes the autosave for videoPath if it belongs to that media.
func (d *diskStore) Delete(ctx context.Context, videoPath string) error {
	if _, err := d.Load(ctx, videoPath); err != nil {
		if errors.Is(err, ErrNoAutosave) {
			return nil
		}
		return err
	}
	if err := os.Remove(d.path(videoPath)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete autosave: %w", err)
	}
	return nil
}

// List summarizes every readable autosave file, newest first.
func (d *diskStore) List(_ context.Context) ([]Summary, error) {
	matches, err := filepath.Glob(filepath.Join(d.dir, "*"+autosaveSuffix))
	if err != nil {
		return nil, err
	}
	var out []Summary
	for _, m := range matches {
		doc, err := readDocument(m)
		if err != nil {
			continue
		}
		out = append(out, summarize(doc))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

func (d *diskStore) Close() error { return nil }
