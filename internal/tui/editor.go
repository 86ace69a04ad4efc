package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fakeyudi/cliptag/internal/annotation"
	"github.com/fakeyudi/cliptag/internal/config"
	"github.com/fakeyudi/cliptag/internal/engine"
)

// editorResult tells the model what the last key did to the editor.
type editorResult int

const (
	editorOpen editorResult = iota
	editorApply
	editorCancel
)

// labelEditor edits one label payload, a category at a time. The last
// category is the free-text notes field.
type labelEditor struct {
	vocab    config.Vocabulary
	labels   annotation.Labels
	target   engine.TargetKind
	category int
	cursor   int
	notes    textinput.Model
}

func newLabelEditor(vocab config.Vocabulary, labels annotation.Labels, target engine.TargetKind, category int) *labelEditor {
	ti := textinput.New()
	ti.Placeholder = "special notes"
	ti.CharLimit = annotation.MaxNotesLength
	ti.Prompt = "  > "
	ti.SetValue(labels.Notes)

	e := &labelEditor{
		vocab:  vocab,
		labels: labels.Normalize(),
		target: target,
		notes:  ti,
	}
	e.setCategory(category)
	return e
}

func (e *labelEditor) categoryName() string {
	return annotation.CategoryOrder[e.category]
}

func (e *labelEditor) onNotes() bool {
	return e.categoryName() == annotation.CategoryNotes
}

func (e *labelEditor) values() []string {
	return e.vocab.For(e.categoryName())
}

func (e *labelEditor) setCategory(i int) {
	n := len(annotation.CategoryOrder)
	e.category = (i%n + n) % n
	e.cursor = 0
	if e.onNotes() {
		e.notes.Focus()
		return
	}
	e.notes.Blur()
	// Start on the first selected value.
	for idx, v := range e.values() {
		if e.selected(v) {
			e.cursor = idx
			break
		}
	}
}

// selected reports whether v is part of the current category's selection.
func (e *labelEditor) selected(v string) bool {
	switch e.categoryName() {
	case annotation.CategoryPosture:
		return e.labels.Posture == v
	case annotation.CategoryBehavior:
		return slices.Contains(e.labels.Behaviors, v)
	case annotation.CategoryActivityType:
		return e.labels.ActivityType == v
	case annotation.CategoryParameters:
		return slices.Contains(e.labels.Parameters, v)
	case annotation.CategorySituation:
		return e.labels.Situation == v
	}
	return false
}

// choose applies the value under the cursor. Multi-valued categories toggle;
// picking the sentinel clears them.
func (e *labelEditor) choose() {
	vals := e.values()
	if e.cursor >= len(vals) {
		return
	}
	v := vals[e.cursor]
	switch e.categoryName() {
	case annotation.CategoryPosture:
		e.labels.Posture = v
	case annotation.CategoryBehavior:
		e.labels.Behaviors = toggle(e.labels.Behaviors, v, annotation.BehaviorUnlabeled)
	case annotation.CategoryActivityType:
		e.labels.ActivityType = v
	case annotation.CategoryParameters:
		e.labels.Parameters = toggle(e.labels.Parameters, v, annotation.ParameterUnlabeled)
	case annotation.CategorySituation:
		e.labels.Situation = v
	}
	e.labels = e.labels.Normalize()
}

func toggle(list []string, v, sentinel string) []string {
	if v == sentinel {
		return []string{sentinel}
	}
	if i := slices.Index(list, v); i >= 0 {
		return slices.Delete(slices.Clone(list), i, i+1)
	}
	return append(slices.Clone(list), v)
}

// result returns the edited payload.
func (e *labelEditor) result() annotation.Labels {
	l := e.labels.Clone()
	l.Notes = e.notes.Value()
	return l.Normalize()
}

func (e *labelEditor) update(msg tea.KeyMsg) (editorResult, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return editorCancel, nil
	case "ctrl+s":
		return editorApply, nil
	case "tab":
		e.setCategory(e.category + 1)
		return editorOpen, nil
	case "shift+tab":
		e.setCategory(e.category - 1)
		return editorOpen, nil
	}

	if e.onNotes() {
		var cmd tea.Cmd
		e.notes, cmd = e.notes.Update(msg)
		return editorOpen, cmd
	}

	switch msg.String() {
	case "1", "2", "3", "4", "5":
		e.setCategory(int(msg.String()[0] - '1'))
	case "up", "k":
		if e.cursor > 0 {
			e.cursor--
		}
	case "down", "j":
		if e.cursor < len(e.values())-1 {
			e.cursor++
		}
	case "enter", " ":
		e.choose()
	}
	return editorOpen, nil
}

func (e *labelEditor) view() string {
	var sb strings.Builder

	var tabs []string
	for i, name := range annotation.CategoryOrder {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		if i == e.category {
			tabs = append(tabs, selectedRowStyle.Render(label))
		} else {
			tabs = append(tabs, dimStyle.Render(label))
		}
	}
	sb.WriteString(heading("Labels for " + targetName(e.target)))
	sb.WriteString("  " + strings.Join(tabs, dimStyle.Render("│")) + "\n\n")

	if e.onNotes() {
		sb.WriteString(e.notes.View() + "\n")
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d", len([]rune(e.notes.Value())), annotation.MaxNotesLength)) + "\n")
		return sb.String()
	}

	for i, v := range e.values() {
		mark := "  "
		if e.selected(v) {
			mark = checkedStyle.Render("✓ ")
		}
		line := "  " + mark + v
		if i == e.cursor {
			line = selectedRowStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func targetName(k engine.TargetKind) string {
	switch k {
	case engine.TargetCommitted:
		return "interval at playhead"
	case engine.TargetDraft:
		return "draft"
	}
	return "next interval"
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}
