// Package tui is the interactive review screen: a full and a zoomed timeline
// over the media clock, the interval list, and a label editor.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/cliptag/internal/annotation"
	"github.com/fakeyudi/cliptag/internal/autosave"
	"github.com/fakeyudi/cliptag/internal/config"
	"github.com/fakeyudi/cliptag/internal/engine"
	"github.com/fakeyudi/cliptag/internal/export"
	"github.com/fakeyudi/cliptag/internal/media"
	"github.com/fakeyudi/cliptag/internal/store"
	"github.com/fakeyudi/cliptag/internal/timeline"
)

// tickInterval drives the media clock and the periodic autosave flush.
const tickInterval = 100 * time.Millisecond

// flushEvery is how often pending autosave changes are written while idle.
const flushEvery = 2 * time.Second

// fixedRows: title, full bar, handles, zoom bar, status, labels, message, hints.
const fixedRows = 8

// Options wires the screen to a review session.
type Options struct {
	Engine      *engine.Engine
	Clock       *media.Clock
	Saver       *autosave.Saver // may be nil
	Vocabulary  config.Vocabulary
	MediaPath   string
	Fingerprint int64
	Skip        float64
	Logger      *slog.Logger
}

type tickMsg time.Time

// MediaChangedMsg is sent when the media file changes on disk.
type MediaChangedMsg struct {
	Fingerprint int64
	Err         error
}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the review screen.
type Model struct {
	eng         *engine.Engine
	clock       *media.Clock
	saver       *autosave.Saver
	vocab       config.Vocabulary
	filename    string
	fingerprint int64
	skip        float64
	log         *slog.Logger

	window  *timeline.Window
	zoom    timeline.Window // restored by the zoom toggle
	dragger *timeline.Dragger
	editor  *labelEditor

	vp        viewport.Model
	width     int
	height    int
	ready     bool
	message   string
	isError   bool
	warning   string
	lastTick  time.Time
	lastFlush time.Time
}

// New creates the review model.
func New(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	skip := opts.Skip
	if skip <= 0 {
		skip = 10
	}
	w := timeline.DefaultWindow(opts.Clock.Duration())
	zoom := w
	if zoom == timeline.FullWindow() {
		zoom = timeline.Window{Start: 0, End: 0.2}
	}
	return Model{
		eng:         opts.Engine,
		clock:       opts.Clock,
		saver:       opts.Saver,
		vocab:       opts.Vocabulary,
		filename:    filepath.Base(opts.MediaPath),
		fingerprint: opts.Fingerprint,
		skip:        skip,
		log:         logger.With("component", "tui"),
		window:      &w,
		zoom:        zoom,
		dragger:     timeline.NewDragger(&w),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.vp = viewport.New(m.width, max(m.height-fixedRows, 1))
		m.refresh()
		return m, nil

	case tickMsg:
		now := time.Time(msg)
		if !m.lastTick.IsZero() {
			m.clock.Advance(now.Sub(m.lastTick))
		}
		m.lastTick = now
		if now.Sub(m.lastFlush) >= flushEvery {
			m.lastFlush = now
			m.flush()
		}
		m.refresh()
		return m, tick()

	case MediaChangedMsg:
		switch {
		case msg.Err != nil:
			m.warning = "media unavailable: " + msg.Err.Error()
		case m.fingerprint != 0 && msg.Fingerprint != m.fingerprint:
			w := &store.FingerprintMismatchWarning{VideoPath: m.filename, Stored: m.fingerprint, Actual: msg.Fingerprint}
			m.warning = w.Error()
		default:
			m.warning = ""
		}
		return m, nil

	case tea.MouseMsg:
		if m.editor == nil {
			m.mouse(msg)
			m.refresh()
		}
		return m, nil

	case tea.KeyMsg:
		if m.editor != nil {
			return m.editorKey(msg)
		}
		return m.key(msg)
	}
	return m, nil
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch msg.String() {
	case "q", "ctrl+c":
		m.flush()
		return m, tea.Quit

	// Playback
	case " ":
		m.clock.TogglePlay()
	case "left":
		m.clock.Skip(-m.skip)
	case "right":
		m.clock.Skip(m.skip)
	case "up":
		m.clock.Faster()
	case "down":
		m.clock.Slower()
	case "r":
		m.clock.ResetRate()

	// Intervals
	case "a":
		drafting := m.eng.State() == engine.Drafting
		if err := m.eng.Toggle(); err != nil {
			m.fail(err)
		} else if drafting {
			m.info("interval added")
		} else {
			m.info("interval started")
		}
	case "z":
		if m.eng.Cancel() {
			m.info("draft discarded")
		}
	case "s":
		if a, err := m.eng.Delete(); err != nil {
			m.fail(err)
		} else {
			m.info("deleted " + span(a))
		}
	case "shift+left":
		m.clock.Seek(m.eng.Previous())
	case "shift+right":
		if t, ok := m.eng.Next(); ok {
			m.clock.Seek(t)
		}
	case "n":
		m.merged(m.eng.MergePrevious())
	case "m":
		m.merged(m.eng.MergeNext())
	case "x":
		if a, err := m.eng.Split(); err != nil {
			m.fail(err)
		} else {
			m.info("split, new interval " + span(a))
		}

	// Labels
	case "e":
		m.openEditor(0)
	case "1", "2", "3", "4", "5":
		m.openEditor(int(msg.String()[0] - '1'))

	// Zoom
	case "f":
		if *m.window == timeline.FullWindow() {
			*m.window = m.zoom
		} else {
			m.zoom = *m.window
			*m.window = timeline.FullWindow()
		}

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd
	}
	m.refresh()
	return m, nil
}

func (m *Model) merged(a *annotation.Annotation, err error) {
	if err != nil {
		m.fail(err)
		return
	}
	m.info("merged into " + span(a))
}

func (m *Model) openEditor(category int) {
	m.clock.Pause()
	target := m.eng.EditTarget()
	labels := m.eng.Defaults()
	if target.Annotation != nil {
		// A malformed body opens as blank labels.
		labels, _ = target.Annotation.Labels()
	}
	m.editor = newLabelEditor(m.vocab, labels, target.Kind, category)
}

func (m Model) editorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	res, cmd := m.editor.update(msg)
	switch res {
	case editorCancel:
		m.editor = nil
	case editorApply:
		target, err := m.eng.ApplyLabels(m.editor.result())
		m.editor = nil
		if err != nil {
			m.fail(err)
		} else if target.Kind == engine.TargetNone {
			m.info("labels saved for the next interval")
		} else {
			m.info("labels applied to " + targetName(target.Kind))
		}
	}
	m.refresh()
	return m, cmd
}

func (m *Model) mouse(msg tea.MouseMsg) {
	full, zoomed := m.tracks()
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || msg.X < barPrefix {
			return
		}
		var tr track
		switch msg.Y {
		case rowHandles:
			if d, ok := hitHandle(*m.window, full.width, msg.X); ok {
				m.dragger.Begin(d)
			}
			return
		case rowFull:
			tr = full
		case rowZoom:
			tr = zoomed
		default:
			return
		}
		if d, ok := tr.hitEdge(m.eng.Intervals(), msg.X); ok {
			m.dragger.Begin(d)
			return
		}
		if t, ok := tr.timeAt(msg.X); ok {
			m.clock.Seek(t)
		}

	case tea.MouseActionMotion:
		if !m.dragger.Active() {
			return
		}
		if err := m.dragger.Move(full.fraction(msg.X), m.clock.Duration(), m.eng); err != nil &&
			!errors.Is(err, timeline.ErrWindowTooNarrow) && !errors.Is(err, timeline.ErrWindowInverted) {
			m.fail(err)
		}

	case tea.MouseActionRelease:
		m.dragger.End()
	}
}

func (m *Model) tracks() (full, zoomed track) {
	width := max(m.width-barPrefix-1, 10)
	d := m.clock.Duration()
	full = track{scale: timeline.Full, window: *m.window, duration: d, width: width}
	zoomed = track{scale: timeline.Zoomed, window: *m.window, duration: d, width: width}
	return full, zoomed
}

func (m *Model) flush() {
	if m.saver == nil {
		return
	}
	if err := m.saver.Flush(context.Background()); err != nil {
		m.fail(fmt.Errorf("autosave: %w", err))
	}
}

func (m *Model) info(s string) {
	m.message = s
	m.isError = false
}

func (m *Model) fail(err error) {
	m.log.Debug("operation rejected", "err", err)
	m.message = err.Error()
	m.isError = true
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	if m.editor != nil {
		m.vp.SetContent(m.editor.view())
		return
	}
	m.vp.SetContent(m.renderIntervals())
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}
	full, zoomed := m.tracks()
	list := m.eng.Intervals()
	draft := m.eng.Draft()
	pos := m.clock.Position()

	// ── Row 1: title bar ──────────────────────────────────────────────────────
	title := "  cliptag  " + m.filename
	if m.eng.State() == engine.Drafting {
		title += "  " + draftBadgeStyle.Render("REC "+export.Clock(draft.Start))
	}
	if m.warning != "" {
		title += "  " + warnStyle.Render(m.warning)
	}
	titleBar := titleStyle.Width(m.width).Render(title)

	// ── Rows 2-4: timelines ──────────────────────────────────────────────────
	fullBar := barLabelStyle.Render(fmt.Sprintf("%-*s", barPrefix, "full")) + full.render(list, draft, pos)
	handleRow := strings.Repeat(" ", barPrefix) + handles(*m.window, full.width)
	zoomBar := barLabelStyle.Render(fmt.Sprintf("%-*s", barPrefix, "zoom")) + zoomed.render(list, draft, pos)

	// ── Row 5: clock ──────────────────────────────────────────────────────────
	state := "❚❚"
	if m.clock.Playing() {
		state = "▶"
	}
	clockRow := fmt.Sprintf("  %s %s / %s  %.2fx  %d intervals  zoom %s-%s",
		state,
		timeStyle.Render(export.Clock(pos)),
		export.Clock(m.clock.Duration()),
		m.clock.Rate(),
		len(list),
		export.Clock(m.window.Start*m.clock.Duration()),
		export.Clock(m.window.End*m.clock.Duration()),
	)

	// ── Row 6: labels under the playhead ─────────────────────────────────────
	labelRow := dimStyle.Render("  no interval at playhead")
	if cur := m.eng.Current(); cur != nil {
		labelRow = "  " + summarize(cur)
	}

	// ── Row 7: last message ──────────────────────────────────────────────────
	msgRow := "  " + dimStyle.Render(m.message)
	if m.isError {
		msgRow = "  " + errorStyle.Render(m.message)
	}

	// ── Row N: hint bar ───────────────────────────────────────────────────────
	hint := "  space play  ←/→ skip  ↑/↓ speed  a add  z cancel  s delete  ⇧←/⇧→ nav  n/m merge  x split  e edit  f zoom  q quit"
	if m.editor != nil {
		hint = "  tab category  ↑/↓ move  enter select  ctrl+s apply  esc cancel"
	}
	statusBar := statusBarStyle.Width(m.width).Render(hint)

	return lipgloss.JoinVertical(lipgloss.Left,
		titleBar, fullBar, handleRow, zoomBar, clockRow, labelRow, msgRow, m.vp.View(), statusBar)
}

// ── Interval list ─────────────────────

func (m *Model) renderIntervals() string {
	list := m.eng.Intervals()
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Intervals (%d)", len(list))))
	if len(list) == 0 {
		sb.WriteString(dimStyle.Render("  (none) press a to start one") + "\n")
		return sb.String()
	}
	var curID string
	if cur := m.eng.Current(); cur != nil {
		curID = cur.ID
	}
	for i, a := range list {
		swatch := postureStyle(postureOf(a)).Render("  ")
		line := fmt.Sprintf("  %3d  %s  %s  %s", i+1, swatch, timeStyle.Render(span(a)), summarize(a))
		if a.ID == curID {
			line = selectedRowStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func span(a *annotation.Annotation) string {
	return export.Clock(a.Start) + "-" + export.Clock(a.End)
}

// summarize lists the non-sentinel labels of a.
func summarize(a *annotation.Annotation) string {
	l, err := a.Labels()
	if err != nil {
		return errorStyle.Render("unreadable labels")
	}
	var parts []string
	add := func(name string, vals ...string) {
		var real []string
		for _, v := range vals {
			if !isSentinel(v) {
				real = append(real, v)
			}
		}
		if len(real) > 0 {
			parts = append(parts, labelStyle.Render(name)+" "+strings.Join(real, ", "))
		}
	}
	add("posture", l.Posture)
	add("behavior", l.Behaviors...)
	add("pa", l.ActivityType)
	add("params", l.Parameters...)
	add("situation", l.Situation)
	if l.Notes != "" {
		parts = append(parts, dimStyle.Render("“"+l.Notes+"”"))
	}
	if len(parts) == 0 {
		return dimStyle.Render("unlabeled")
	}
	return strings.Join(parts, "  ")
}

func isSentinel(v string) bool {
	switch v {
	case annotation.PostureUnlabeled, annotation.BehaviorUnlabeled, annotation.ActivityTypeUnlabeled,
		annotation.ParameterUnlabeled, annotation.SituationUnlabeled:
		return true
	}
	return false
}

// ── Entry point ───────────────────────

// Run launches the review screen and blocks until the user quits. The media
// file is watched for changes while the screen is open.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithMouseCellMotion())

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		err := media.Watch(watchCtx, opts.MediaPath, func(fp int64, err error) {
			p.Send(MediaChangedMsg{Fingerprint: fp, Err: err})
		})
		if err != nil && opts.Logger != nil {
			opts.Logger.Warn("media watch stopped", "path", opts.MediaPath, "err", err)
		}
	}()

	_, err := p.Run()
	if opts.Saver != nil {
		if ferr := opts.Saver.Flush(context.Background()); ferr != nil && err == nil {
			err = ferr
		}
	}
	return err
}
