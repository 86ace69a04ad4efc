// Package store persists autosave documents keyed by media file. Three
// backends share one interface: JSON files next to each other in the data
// directory, a bbolt database, or a SQLite database.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoAutosave is returned by Load when nothing is stored for a media file.
var ErrNoAutosave = errors.New("no autosave for this media")

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
)

// Store persists one Document per media path.
type Store interface {
	Save(ctx context.Context, d *Document) error
	Load(ctx context.Context, videoPath string) (*Document, error) // returns ErrNoAutosave if none exists
	Delete(ctx context.Context, videoPath string) error
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

// Summary describes a stored document without its annotations.
type Summary struct {
	VideoPath string
	Count     int
	SavedAt   time.Time
}

// Options selects and locates a backend.
type Options struct {
	Backend string // json (default), bolt or sqlite
	Dir     string // defaults to DataDir()
}

// Open returns the configured backend, creating its directory.
func Open(opts Options) (Store, error) {
	dir := opts.Dir
	if dir == "" {
		var err error
		if dir, err = DataDir(); err != nil {
			return nil, fmt.Errorf("resolving data directory: %w", err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	switch opts.Backend {
	case "", BackendJSON:
		return newDiskStore(filepath.Join(dir, "autosave"))
	case BackendBolt:
		return newBoltStore(filepath.Join(dir, "autosave.db"))
	case BackendSQLite:
		return newSQLiteStore(filepath.Join(dir, "autosave.sqlite"))
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

// DataDir returns the cliptag-specific XDG data directory.
// Path: $XDG_DATA_HOME/cliptag or ~/.local/share/cliptag
func DataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "cliptag"), nil
}

// key is the canonical form of a media path used by every backend.
func key(videoPath string) string {
	if abs, err := filepath.Abs(videoPath); err == nil {
		return abs
	}
	return filepath.Clean(videoPath)
}

// now is the save clock.
var now = time.Now

// stamp fills in the fields every backend writes.
func stamp(d *Document) {
	d.VideoPath = key(d.VideoPath)
	if d.SchemaVersion == "" {
		d.SchemaVersion = SchemaVersion
	}
	d.SavedAt = now().UTC()
}

func summarize(d *Document) Summary {
	return Summary{VideoPath: d.VideoPath, Count: len(d.Annotations), SavedAt: d.SavedAt}
}
