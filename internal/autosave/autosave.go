// Package autosave persists engine state after mutations without writing on
// every pointer move of a drag.
package autosave

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/fakeyudi/cliptag/internal/store"
)

// Saver is wired as the engine's notify callback. Changes are written
// immediately while the limiter allows it and otherwise left dirty for the
// host's periodic Flush.
type Saver struct {
	store    store.Store
	snapshot func() *store.Document
	limiter  *rate.Limiter
	logger   *slog.Logger
	dirty    bool
	saves    int
	lastErr  error
}

// New returns a Saver writing snapshot() to st at most once per interval.
// A non-positive interval saves on every change.
func New(st store.Store, snapshot func() *store.Document, interval time.Duration, logger *slog.Logger) *Saver {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Saver{
		store:    st,
		snapshot: snapshot,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger.With("component", "autosave"),
	}
}

// Changed records a mutation and saves if the limiter allows.
func (s *Saver) Changed() {
	s.dirty = true
	if s.limiter.Allow() {
		_ = s.Flush(context.Background())
	}
}

// Flush writes pending changes. It is a no-op when nothing changed.
func (s *Saver) Flush(ctx context.Context) error {
	if !s.dirty {
		return nil
	}
	doc := s.snapshot()
	if err := s.store.Save(ctx, doc); err != nil {
		s.lastErr = err
		s.logger.Warn("autosave failed", "video", doc.VideoPath, "err", err)
		return err
	}
	s.dirty = false
	s.saves++
	s.lastErr = nil
	s.logger.Debug("autosaved", "video", doc.VideoPath, "annotations", len(doc.Annotations))
	return nil
}

// Dirty reports whether changes are waiting for Flush.
func (s *Saver) Dirty() bool { return s.dirty }

// Saves returns the number of successful writes.
func (s *Saver) Saves() int { return s.saves }

// Err returns the error from the last failed write, cleared by the next success.
func (s *Saver) Err() error { return s.lastErr }
