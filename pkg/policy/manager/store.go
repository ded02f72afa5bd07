package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/coder-hombre/static-vines/pkg/config"
	"github.com/coder-hombre/static-vines/pkg/policy"
	"github.com/coder-hombre/static-vines/pkg/telemetry/tracing"
)

// LoaderFunc reads and validates a configuration file.
type LoaderFunc func(path string) (*config.Config, error)

// Store owns the published configuration snapshot. Readers call Current or
// Flags without locking; loads are serialized and publish a new snapshot
// with a single atomic store, so a reader sees either the old snapshot or
// the new one and never a mix.
type Store struct {
	path     string
	loader   LoaderFunc
	logger   *slog.Logger
	recorder ReloadRecorder
	tracer   *tracing.Tracer
	now      func() time.Time

	current atomic.Pointer[Snapshot]

	// loadMu serializes Load, Reload and Publish.
	loadMu     sync.Mutex
	generation uint64
	closed     bool

	statusMu sync.RWMutex
	status   Status

	subsMu sync.Mutex
	subs   map[int]chan *Snapshot
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRecorder sets the reload telemetry recorder.
func WithRecorder(r ReloadRecorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithTracer records a span per load and reload.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Store) {
		s.tracer = t
	}
}

// WithLoader replaces the configuration loader.
// Default: config.LoadConfigWithEnvOverrides.
func WithLoader(fn LoaderFunc) Option {
	return func(s *Store) {
		if fn != nil {
			s.loader = fn
		}
	}
}

// WithClock replaces the time source used for LoadedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a store for the configuration file at path. An empty
// path means no file; Load then publishes defaults. Nothing is published
// until Load is called.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		loader:   config.LoadConfigWithEnvOverrides,
		logger:   slog.Default(),
		recorder: nopRecorder{},
		now:      time.Now,
		subs:     make(map[int]chan *Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "config.store")
	s.status.Path = path
	return s
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.path
}

// Load performs the initial load. If the file cannot be loaded and nothing
// has been published yet, a snapshot built from defaults (every category
// suppressed) is published and a *LoadError with Defaulted set is returned.
// Once a snapshot exists, Load behaves like Reload.
func (s *Store) Load() (err error) {
	span := s.startSpan("config.load")
	defer func() { s.endSpan(span, err) }()

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if s.path == "" {
		start := time.Now()
		if _, err := s.publishLocked(config.Default(), SourceDefaults, false); err != nil {
			return err
		}
		s.recordAttempt(nil)
		s.recorder.RecordReload(ResultSuccess, time.Since(start))
		s.logger.Info("no configuration file given, using defaults")
		return nil
	}

	if s.current.Load() != nil {
		return s.reloadLocked()
	}

	start := time.Now()
	cfg, err := s.loader(s.path)
	if err != nil {
		if _, perr := s.publishLocked(config.Default(), SourceDefaults, true); perr != nil {
			return perr
		}
		loadErr := &LoadError{FilePath: s.path, Defaulted: true, Cause: err}
		s.recordAttempt(loadErr)
		s.recorder.RecordReload(ResultDefaulted, time.Since(start))
		s.logger.Warn("failed to load configuration, suppressing all categories",
			"path", s.path,
			"error", err,
		)
		return loadErr
	}

	if _, err := s.publishLocked(cfg, s.path, false); err != nil {
		s.recordAttempt(err)
		s.recorder.RecordReload(ResultFailure, time.Since(start))
		return err
	}
	s.recordAttempt(nil)
	s.recorder.RecordReload(ResultSuccess, time.Since(start))
	return nil
}

// Reload re-reads the configuration file. On failure the previous snapshot
// stays published and a *LoadError is returned.
func (s *Store) Reload() (err error) {
	span := s.startSpan("config.reload")
	defer func() { s.endSpan(span, err) }()

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if s.path == "" {
		return nil
	}
	return s.reloadLocked()
}

func (s *Store) reloadLocked() error {
	start := time.Now()
	s.logger.Debug("reloading configuration", "path", s.path)

	cfg, err := s.loader(s.path)
	if err != nil {
		loadErr := &LoadError{FilePath: s.path, Cause: err}
		s.recordAttempt(loadErr)
		s.recorder.RecordReload(ResultFailure, time.Since(start))
		s.logger.Error("configuration reload failed, keeping previous snapshot",
			"path", s.path,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return loadErr
	}

	if prev := s.current.Load(); prev != nil && prev.Config != nil &&
		!maps.Equal(prev.Config.Growth.ExtraBlocks, cfg.Growth.ExtraBlocks) {
		s.logger.Warn("growth.extra_blocks changed; restart to apply the new block table",
			"path", s.path,
		)
	}

	snap, err := s.publishLocked(cfg, s.path, false)
	if err != nil {
		s.recordAttempt(err)
		s.recorder.RecordReload(ResultFailure, time.Since(start))
		return err
	}
	s.recordAttempt(nil)
	s.recorder.RecordReload(ResultSuccess, time.Since(start))
	s.logger.Info("configuration reloaded",
		"path", s.path,
		"generation", snap.Generation,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Publish installs cfg as the current snapshot without reading a file.
func (s *Store) Publish(cfg *config.Config, source string) (*Snapshot, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cannot publish nil configuration")
	}
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	return s.publishLocked(cfg, source, false)
}

func (s *Store) publishLocked(cfg *config.Config, source string, defaulted bool) (*Snapshot, error) {
	flags, err := cfg.Flags()
	if err != nil {
		return nil, fmt.Errorf("failed to build suppression flags: %w", err)
	}

	s.generation++
	snap := &Snapshot{
		ID:         uuid.NewString(),
		Generation: s.generation,
		Flags:      flags,
		Config:     cfg,
		Source:     source,
		Defaulted:  defaulted,
		LoadedAt:   s.now(),
	}
	s.current.Store(snap)

	s.statusMu.Lock()
	s.status.Generation = snap.Generation
	s.status.SnapshotID = snap.ID
	s.status.LoadedAt = snap.LoadedAt
	s.status.Defaulted = defaulted
	s.statusMu.Unlock()

	s.recorder.RecordSnapshot(snap.Generation, flags.Named())

	s.logger.Info("configuration snapshot published",
		"generation", snap.Generation,
		"snapshot_id", snap.ID,
		"source", source,
		"flags", flags.String(),
	)
	if !flags.AnyEnabled() {
		s.logger.Info("growth suppression disabled for every category, all vines grow normally")
	}

	s.notify(snap)
	return snap, nil
}

func (s *Store) startSpan(name string) trace.Span {
	_, span := s.tracer.Start(context.Background(), name)
	return span
}

func (s *Store) endSpan(span trace.Span, err error) {
	result := ResultSuccess
	var loadErr *LoadError
	switch {
	case errors.As(err, &loadErr) && loadErr.Defaulted:
		result = ResultDefaulted
	case err != nil:
		result = ResultFailure
	}
	var generation uint64
	if snap := s.current.Load(); snap != nil {
		generation = snap.Generation
	}
	span.SetAttributes(tracing.ReloadAttributes(s.path, result, generation)...)
	tracing.End(span, err)
}

func (s *Store) recordAttempt(err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	s.status.LastAttempt = s.now()
	s.status.Loads++
	if err != nil {
		s.status.Failures++
		s.status.LastError = err.Error()
	} else {
		s.status.LastError = ""
	}
}

// Current returns the published snapshot, or nil before the first Load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Flags returns the published suppression flags, or nil before the first
// Load. It satisfies engine.FlagSource.
func (s *Store) Flags() *policy.Flags {
	snap := s.current.Load()
	if snap == nil {
		return nil
	}
	return snap.Flags
}

// Status returns the store's load history.
func (s *Store) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

// Subscribe returns a channel that receives every snapshot published after
// the call. Slow subscribers only see the latest snapshot. The returned
// function unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan *Snapshot, func()) {
	ch := make(chan *Snapshot, 1)

	s.subsMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			if _, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}
			s.subsMu.Unlock()
		})
	}
}

func (s *Store) notify(snap *Snapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Replace the stale pending snapshot.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// Watch reloads the store whenever its file changes, until ctx is
// cancelled. It blocks.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	if s.path == "" {
		return fmt.Errorf("cannot watch: no configuration file")
	}

	cfg := DefaultFileWatcherConfig()
	cfg.Path = s.path
	if debounce > 0 {
		cfg.DebounceInterval = debounce
	}

	fw, err := NewFileWatcher(cfg, s.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := fw.Stop(); err != nil {
			s.logger.Warn("failed to stop file watcher", "error", err)
		}
	}()

	return fw.Watch(ctx, s.Reload)
}

// Close stops further loads and closes every subscription.
func (s *Store) Close() {
	s.loadMu.Lock()
	s.closed = true
	s.loadMu.Unlock()

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
