package store

import (
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/fakeyudi/cliptag/internal/annotation"
)

// SchemaVersion is written into every saved document.
const SchemaVersion = "1.1.0"

// compatible accepts every 1.x document. Files written before versioning
// carry no schema_version and are read as 1.0.0.
var compatible = mustConstraint("^1.0.0")

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// Document is the persisted autosave for one media file.
type Document struct {
	SchemaVersion string    `json:"schema_version,omitempty"`
	Annotations   []Record  `json:"annotations"`
	VideoHash     int64     `json:"videohash"`
	VideoPath     string    `json:"video_path"`
	Duration      float64   `json:"duration,omitempty"`
	SavedAt       time.Time `json:"saved_at,omitzero"`
}

// Record is the wire form of one annotation.
type Record struct {
	ID       string                `json:"id"`
	Range    Span                  `json:"range"`
	Shape    annotation.Shape      `json:"shape"`
	Comments []annotation.Revision `json:"comments"`
}

// Span is a record's time range in seconds.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewDocument snapshots list for the media at videoPath.
func NewDocument(list []*annotation.Annotation, videoPath string, hash int64, duration float64) *Document {
	d := &Document{
		SchemaVersion: SchemaVersion,
		Annotations:   make([]Record, 0, len(list)),
		VideoHash:     hash,
		VideoPath:     videoPath,
		Duration:      duration,
	}
	for _, a := range list {
		d.Annotations = append(d.Annotations, Record{
			ID:       a.ID,
			Range:    Span{Start: a.Start, End: a.End},
			Shape:    a.Shape,
			Comments: append([]annotation.Revision(nil), a.Revisions...),
		})
	}
	return d
}

// List converts the records back into annotations.
func (d *Document) List() []*annotation.Annotation {
	out := make([]*annotation.Annotation, 0, len(d.Annotations))
	for _, r := range d.Annotations {
		out = append(out, &annotation.Annotation{
			ID:        r.ID,
			Start:     r.Range.Start,
			End:       r.Range.End,
			Shape:     r.Shape,
			Revisions: append([]annotation.Revision(nil), r.Comments...),
		})
	}
	return out
}

// SchemaError reports a document written by an incompatible version.
type SchemaError struct {
	Version string
	Err     error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unreadable schema version %q: %v", e.Version, e.Err)
	}
	return fmt.Sprintf("unsupported schema version %s (want %s)", e.Version, compatible)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// CheckSchema verifies the document can be read by this version.
func (d *Document) CheckSchema() error {
	raw := d.SchemaVersion
	if raw == "" {
		raw = "1.0.0"
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return &SchemaError{Version: raw, Err: err}
	}
	if !compatible.Check(v) {
		return &SchemaError{Version: raw}
	}
	return nil
}

// FingerprintMismatchWarning is advisory: the media at VideoPath no longer
// matches the fingerprint stored with its annotations.
type FingerprintMismatchWarning struct {
	VideoPath string
	Stored    int64
	Actual    int64
}

func (w *FingerprintMismatchWarning) Error() string {
	return fmt.Sprintf("%s changed since it was annotated (fingerprint %d, stored %d)", w.VideoPath, w.Actual, w.Stored)
}

// Verify compares the document's stored fingerprint with actual. A document
// without a stored fingerprint always verifies.
func Verify(d *Document, actual int64) error {
	if d.VideoHash == 0 || d.VideoHash == actual {
		return nil
	}
	return &FingerprintMismatchWarning{VideoPath: d.VideoPath, Stored: d.VideoHash, Actual: actual}
}
