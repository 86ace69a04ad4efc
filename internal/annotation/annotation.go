// Package annotation holds the labeled-interval record and the codec for its
// six-category label payload.
package annotation

import (
	"time"

	"github.com/google/uuid"
)

// Author attributes a label revision to a reviewer.
type Author struct {
	ID   string
	Name string
}

// Anonymous is used when no reviewer profile is configured.
var Anonymous = Author{ID: "NA", Name: "NA"}

// Shape is optional spatial metadata. It is carried through edits untouched.
type Shape struct {
	X1 *float64 `json:"x1"`
	X2 *float64 `json:"x2"`
	Y1 *float64 `json:"y1"`
	Y2 *float64 `json:"y2"`
}

// Meta describes when and by whom a revision was written.
type Meta struct {
	Datetime string `json:"datetime"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

// Revision is one entry of an annotation's label history. Body holds the
// serialized Labels (see EncodeLabels).
type Revision struct {
	ID   string `json:"id"`
	Meta Meta   `json:"meta"`
	Body string `json:"body"`
}

// Annotation is a labeled [Start, End] range in seconds. Revisions[0] is the
// active label set; later entries are historical and only carried along.
type Annotation struct {
	ID        string
	Start     float64
	End       float64
	Shape     Shape
	Revisions []Revision
}

// New returns an annotation with a fresh identity and blank labels.
func New(start, end float64, by Author) *Annotation {
	a := &Annotation{
		ID:    uuid.New().String(),
		Start: start,
		End:   end,
	}
	body, _ := EncodeLabels(Blank())
	a.Revisions = []Revision{newRevision(body, by)}
	return a
}

func newRevision(body string, by Author) Revision {
	if by.ID == "" {
		by.ID = Anonymous.ID
	}
	if by.Name == "" {
		by.Name = Anonymous.Name
	}
	return Revision{
		ID: uuid.New().String(),
		Meta: Meta{
			Datetime: time.Now().Format(time.RFC3339Nano),
			UserID:   by.ID,
			UserName: by.Name,
		},
		Body: body,
	}
}

// Duration returns End - Start.
func (a *Annotation) Duration() float64 {
	return a.End - a.Start
}

// Labels decodes the active revision. On a malformed body it returns Blank()
// together with a *LabelDecodeError so callers can degrade to "unlabeled".
func (a *Annotation) Labels() (Labels, error) {
	if len(a.Revisions) == 0 {
		return Blank(), nil
	}
	l, err := DecodeLabels(a.Revisions[0].Body)
	if err != nil {
		return Blank(), &LabelDecodeError{AnnotationID: a.ID, Err: err}
	}
	return l, nil
}

// SetLabels replaces the active revision with a new one holding l.
func (a *Annotation) SetLabels(l Labels, by Author) error {
	body, err := EncodeLabels(l)
	if err != nil {
		return err
	}
	rev := newRevision(body, by)
	if len(a.Revisions) == 0 {
		a.Revisions = []Revision{rev}
		return nil
	}
	a.Revisions[0] = rev
	return nil
}

// CloneLabelsFrom copies other's label history into a under fresh revision
// ids. Bodies are strings, so the two annotations share no mutable state.
func (a *Annotation) CloneLabelsFrom(other *Annotation) {
	revs := make([]Revision, 0, len(other.Revisions))
	for _, r := range other.Revisions {
		revs = append(revs, Revision{
			ID:   uuid.New().String(),
			Meta: r.Meta,
			Body: r.Body,
		})
	}
	if len(revs) == 0 {
		body, _ := EncodeLabels(Blank())
		revs = append(revs, newRevision(body, Anonymous))
	}
	a.Revisions = revs
}

// Clone returns a deep copy, identity included.
func (a *Annotation) Clone() *Annotation {
	c := *a
	c.Shape = a.Shape.clone()
	c.Revisions = append([]Revision(nil), a.Revisions...)
	return &c
}

func (s Shape) clone() Shape {
	cp := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		v := *p
		return &v
	}
	return Shape{X1: cp(s.X1), X2: cp(s.X2), Y1: cp(s.Y1), Y2: cp(s.Y2)}
}
