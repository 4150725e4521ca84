package viewmodel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/randytsao24/textmystop/internal/location"
	"github.com/randytsao24/textmystop/internal/models"
	"github.com/randytsao24/textmystop/internal/search"
	"github.com/randytsao24/textmystop/internal/stops"
)

// Renderer consumes every rebuilt view model
type Renderer interface {
	Render(vm models.ViewModel)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(vm models.ViewModel)

func (f RendererFunc) Render(vm models.ViewModel) { f(vm) }

// Session drives rebuilds from the events of one user session: the table
// loading, the location resolving and the query changing. Every event
// rebuilds the view model from scratch. Nothing is rendered until the
// table load has finished, successfully or not; query changes made
// before that are kept and applied to the first render.
type Session struct {
	opts      Options
	renderer  Renderer
	debouncer *search.Debouncer

	mu       sync.Mutex
	table    *stops.Table
	loaded   bool
	query    string
	origin   models.Coordinate
	revision uint64

	renderMu sync.Mutex
	rendered uint64
}

// NewSession creates a session. debounce is the quiet period applied to
// query changes; zero applies them immediately.
func NewSession(renderer Renderer, opts Options, debounce time.Duration) *Session {
	s := &Session{
		opts:     opts,
		renderer: renderer,
	}
	s.debouncer = search.NewDebouncer(debounce, s.applyQuery)
	return s
}

// Loaded installs the stop table and renders
func (s *Session) Loaded(table *stops.Table) {
	s.update(func() {
		s.table = table
		s.loaded = true
	})
}

// LoadFailed renders an empty view so the renderer can show its
// placeholder
func (s *Session) LoadFailed(err error) {
	slog.Error("stop table unavailable", "error", err)
	s.update(func() {
		s.table = nil
		s.loaded = true
	})
}

// Located sets the origin and renders a proximity-ordered view
func (s *Session) Located(origin models.Coordinate) {
	s.update(func() {
		s.origin = origin
	})
}

// LocationFailed clears the origin and renders in insertion order
func (s *Session) LocationFailed(err error) {
	slog.Warn("location unavailable, using source order", "error", err)
	s.update(func() {
		s.origin = models.Coordinate{}
	})
}

// QueryChanged submits a raw query; it is applied after the debounce
// period
func (s *Session) QueryChanged(raw string) {
	s.debouncer.Submit(raw)
}

// Resolve asks locator for the origin in the background. The returned
// channel is closed once the outcome has been rendered.
func (s *Session) Resolve(ctx context.Context, locator location.Locator) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		origin, err := locator.Locate(ctx)
		if err != nil {
			s.LocationFailed(err)
			return
		}
		s.Located(origin)
	}()
	return done
}

// Current builds the view model for the current state
func (s *Session) Current() models.ViewModel {
	s.mu.Lock()
	table, query, origin := s.table, s.query, s.origin
	s.mu.Unlock()

	return Build(table.Records(), query, origin, s.opts)
}

// Flush applies a pending query change without waiting for the debounce
// period
func (s *Session) Flush() {
	s.debouncer.Flush()
}

// Close drops any pending query change
func (s *Session) Close() {
	s.debouncer.Stop()
}

func (s *Session) applyQuery(raw string) {
	s.update(func() {
		s.query = search.Normalize(raw)
	})
}

// update applies a state change and renders the resulting view. Renders
// are serialized and a render older than one already delivered is
// dropped.
func (s *Session) update(change func()) {
	s.mu.Lock()
	change()
	s.revision++
	revision := s.revision
	table, query, origin, loaded := s.table, s.query, s.origin, s.loaded
	s.mu.Unlock()

	if !loaded {
		return
	}

	vm := Build(table.Records(), query, origin, s.opts)

	s.renderMu.Lock()
	defer s.renderMu.Unlock()
	if revision <= s.rendered {
		return
	}
	s.rendered = revision
	s.renderer.Render(vm)
}
