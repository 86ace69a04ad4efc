package annotation

import (
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Sentinels stored when a category has no selection.
const (
	PostureUnlabeled      = "Posture_Unlabeled"
	BehaviorUnlabeled     = "HLB_Unlabeled"
	ActivityTypeUnlabeled = "PA_Type_Unlabeled"
	ParameterUnlabeled    = "CP_Unlabeled"
	SituationUnlabeled    = "ES_Unlabeled"
)

// MaxNotesLength bounds the free-text notes, counted in runes.
const MaxNotesLength = 255

// Category names as written into revision bodies, in serialization order.
const (
	CategoryPosture      = "POSTURE"
	CategoryBehavior     = "HIGH LEVEL BEHAVIOR"
	CategoryActivityType = "PA TYPE"
	CategoryParameters   = "Behavioral Parameters"
	CategorySituation    = "Experimental situation"
	CategoryNotes        = "Special Notes"
)

// CategoryOrder is the fixed order categories are serialized in.
var CategoryOrder = []string{
	CategoryPosture,
	CategoryBehavior,
	CategoryActivityType,
	CategoryParameters,
	CategorySituation,
	CategoryNotes,
}

// Labels is the structured payload attached to an annotation.
type Labels struct {
	Posture      string
	Behaviors    []string
	ActivityType string
	Parameters   []string
	Situation    string
	Notes        string
}

// Blank returns labels with every category set to its unlabeled sentinel.
func Blank() Labels {
	return Labels{
		Posture:      PostureUnlabeled,
		Behaviors:    []string{BehaviorUnlabeled},
		ActivityType: ActivityTypeUnlabeled,
		Parameters:   []string{ParameterUnlabeled},
		Situation:    SituationUnlabeled,
	}
}

// Normalize fills empty categories with sentinels, drops empty entries from
// multi-valued categories and bounds the notes.
func (l Labels) Normalize() Labels {
	out := Labels{
		Posture:      orSentinel(l.Posture, PostureUnlabeled),
		Behaviors:    listOrSentinel(l.Behaviors, BehaviorUnlabeled),
		ActivityType: orSentinel(l.ActivityType, ActivityTypeUnlabeled),
		Parameters:   listOrSentinel(l.Parameters, ParameterUnlabeled),
		Situation:    orSentinel(l.Situation, SituationUnlabeled),
		Notes:        TrimNotes(l.Notes),
	}
	return out
}

// IsUnlabeled reports whether no category carries a real value and notes are empty.
func (l Labels) IsUnlabeled() bool {
	n := l.Normalize()
	return n.Posture == PostureUnlabeled &&
		n.ActivityType == ActivityTypeUnlabeled &&
		n.Situation == SituationUnlabeled &&
		onlySentinel(n.Behaviors, BehaviorUnlabeled) &&
		onlySentinel(n.Parameters, ParameterUnlabeled) &&
		n.Notes == ""
}

// WithoutNotes returns a copy with notes cleared.
func (l Labels) WithoutNotes() Labels {
	c := l.Clone()
	c.Notes = ""
	return c
}

// Clone copies the multi-valued slices.
func (l Labels) Clone() Labels {
	c := l
	c.Behaviors = slices.Clone(l.Behaviors)
	c.Parameters = slices.Clone(l.Parameters)
	return c
}

// Equal compares two payloads after normalization.
func (l Labels) Equal(o Labels) bool {
	a, b := l.Normalize(), o.Normalize()
	return a.Posture == b.Posture &&
		a.ActivityType == b.ActivityType &&
		a.Situation == b.Situation &&
		a.Notes == b.Notes &&
		slices.Equal(a.Behaviors, b.Behaviors) &&
		slices.Equal(a.Parameters, b.Parameters)
}

// TrimNotes NFC-normalizes s and cuts it to MaxNotesLength runes.
func TrimNotes(s string) string {
	s = norm.NFC.String(s)
	if utf8.RuneCountInString(s) <= MaxNotesLength {
		return s
	}
	r := []rune(s)
	return string(r[:MaxNotesLength])
}

func orSentinel(v, sentinel string) string {
	if v == "" {
		return sentinel
	}
	return v
}

func listOrSentinel(vs []string, sentinel string) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return []string{sentinel}
	}
	// A real selection supersedes the sentinel.
	if len(out) > 1 {
		out = slices.DeleteFunc(out, func(v string) bool { return v == sentinel })
	}
	return out
}

func onlySentinel(vs []string, sentinel string) bool {
	return len(vs) == 1 && vs[0] == sentinel
}

// categoryEntry is one element of a serialized revision body.
type categoryEntry struct {
	Category      string          `json:"category"`
	SelectedValue json.RawMessage `json:"selectedValue"`
}

// EncodeLabels serializes l in CategoryOrder. Output is stable for equal input.
func EncodeLabels(l Labels) (string, error) {
	n := l.Normalize()
	values := []any{n.Posture, n.Behaviors, n.ActivityType, n.Parameters, n.Situation, n.Notes}
	entries := make([]categoryEntry, len(CategoryOrder))
	for i, cat := range CategoryOrder {
		raw, err := json.Marshal(values[i])
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", cat, err)
		}
		entries[i] = categoryEntry{Category: cat, SelectedValue: raw}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("encode labels: %w", err)
	}
	return string(data), nil
}

// DecodeLabels parses a revision body. Unknown categories are ignored and
// missing ones come back as sentinels; single-valued categories also accept a
// one-element list, multi-valued ones a bare string.
func DecodeLabels(body string) (Labels, error) {
	var entries []categoryEntry
	if err := json.Unmarshal([]byte(body), &entries); err != nil {
		return Labels{}, err
	}
	var l Labels
	for _, e := range entries {
		if len(e.SelectedValue) == 0 || string(e.SelectedValue) == "null" {
			continue
		}
		var err error
		switch e.Category {
		case CategoryPosture:
			l.Posture, err = decodeSingle(e.SelectedValue)
		case CategoryBehavior:
			l.Behaviors, err = decodeMulti(e.SelectedValue)
		case CategoryActivityType:
			l.ActivityType, err = decodeSingle(e.SelectedValue)
		case CategoryParameters:
			l.Parameters, err = decodeMulti(e.SelectedValue)
		case CategorySituation:
			l.Situation, err = decodeSingle(e.SelectedValue)
		case CategoryNotes:
			l.Notes, err = decodeSingle(e.SelectedValue)
		}
		if err != nil {
			return Labels{}, fmt.Errorf("category %q: %w", e.Category, err)
		}
	}
	return l.Normalize(), nil
}

func decodeSingle(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", err
	}
	if len(list) == 0 {
		return "", nil
	}
	return list[0], nil
}

func decodeMulti(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return []string{s}, nil
}

// LabelDecodeError reports a stored revision body that could not be parsed.
type LabelDecodeError struct {
	AnnotationID string
	Err          error
}

func (e *LabelDecodeError) Error() string {
	return "malformed labels on annotation " + e.AnnotationID + ": " + e.Err.Error()
}

func (e *LabelDecodeError) Unwrap() error {
	return e.Err
}
