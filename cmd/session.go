package cmd

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/cliptag/internal/config"
	"github.com/fakeyudi/cliptag/internal/engine"
	"github.com/fakeyudi/cliptag/internal/media"
	"github.com/fakeyudi/cliptag/internal/store"
)

// reviewSession is the autosaved state of one media file, loaded into an
// engine. Command-line verbs move pos explicitly; the TUI replaces it with
// the media clock.
type reviewSession struct {
	media       string
	fingerprint int64
	duration    float64
	store       store.Store
	eng         *engine.Engine
	pos         engine.PositionSource
	notify      func()
	dirty       bool
}

// openStore opens the configured autosave backend.
func openStore() (store.Store, error) {
	c := GetConfig()
	return store.Open(store.Options{Backend: c.StoreBackend, Dir: c.DataDir})
}

// openSession loads the autosave for mediaPath. duration overrides the stored
// media duration when positive. A fingerprint mismatch is reported on the
// command's error stream and otherwise ignored.
func openSession(cmd *cobra.Command, mediaPath string, duration float64) (*reviewSession, error) {
	abs, err := filepath.Abs(mediaPath)
	if err != nil {
		return nil, err
	}
	fp, err := media.Fingerprint(abs)
	if err != nil {
		return nil, fmt.Errorf("reading media: %w", err)
	}
	st, err := openStore()
	if err != nil {
		return nil, err
	}

	s := &reviewSession{media: abs, fingerprint: fp, store: st, pos: engine.FixedPosition(0)}
	c := GetConfig()
	s.eng = engine.New(
		engine.PositionFunc(func() float64 { return s.pos.Position() }),
		engine.WithTolerances(c.EngineTolerances()),
		engine.WithSeedMode(c.Seed()),
		engine.WithAuthor(GetProfile().Author()),
		engine.WithLogger(logger),
		engine.WithNotify(func() {
			s.dirty = true
			if s.notify != nil {
				s.notify()
			}
		}),
	)

	doc, err := st.Load(cmd.Context(), abs)
	switch {
	case errors.Is(err, store.ErrNoAutosave):
	case err != nil:
		st.Close()
		return nil, fmt.Errorf("loading autosave: %w", err)
	default:
		if werr := store.Verify(doc, fp); werr != nil {
			cmd.PrintErrln("warning: " + werr.Error())
		}
		if err := s.eng.Load(doc.List()); err != nil {
			st.Close()
			return nil, fmt.Errorf("autosave for %s is inconsistent: %w", abs, err)
		}
		s.duration = doc.Duration
		s.dirty = false
		logger.Debug("autosave restored", "video", abs, "annotations", s.eng.Len())
	}
	if duration > 0 {
		s.duration = duration
	}
	return s, nil
}

// at moves the command-line playhead. Times past a known duration are refused.
func (s *reviewSession) at(t float64) error {
	if t < 0 || (s.duration > 0 && t > s.duration) {
		return fmt.Errorf("position %s is outside the media (0-%s)", formatTime(t), formatTime(s.duration))
	}
	s.pos = engine.FixedPosition(t)
	return nil
}

// snapshot captures the engine state as an autosave document.
func (s *reviewSession) snapshot() *store.Document {
	return store.NewDocument(s.eng.Intervals(), s.media, s.fingerprint, s.duration)
}

// save writes the session if anything changed.
func (s *reviewSession) save(ctx context.Context) error {
	if !s.dirty {
		return nil
	}
	if err := s.store.Save(ctx, s.snapshot()); err != nil {
		return fmt.Errorf("saving autosave: %w", err)
	}
	s.dirty = false
	return nil
}

func (s *reviewSession) Close() error {
	return s.store.Close()
}

// vocabulary loads the configured label choices.
func vocabulary() (config.Vocabulary, error) {
	return config.LoadCategories(GetConfig().CategoriesFile)
}

// parseTime accepts seconds ("90.5") or a clock ("1:30.5", "1:02:03").
func parseTime(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	var total float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil || v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("invalid time %q: field %q must be below 60", s, p)
		}
		total = total*60 + v
	}
	return total, nil
}

func formatTime(sec float64) string {
	return strconv.FormatFloat(sec, 'f', -1, 64) + "s"
}
