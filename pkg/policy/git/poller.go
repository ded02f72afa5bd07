package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/coder-hombre/static-vines/pkg/policy/manager"
	"github.com/coder-hombre/static-vines/pkg/telemetry/tracing"
)

// PollerMetrics tracks poll outcomes.
type PollerMetrics struct {
	Polls             int64
	FailedPolls       int64
	SkippedPolls      int64
	SuccessfulReloads int64
	FailedReloads     int64
	LastReloadTime    time.Time
}

// Poller pulls the repository on an interval and reloads the configuration
// store when a pull changes the configuration file. A commit whose file
// fails to load is remembered as bad; the store keeps serving the previous
// snapshot until a later commit loads.
type Poller struct {
	repo     *Repository
	reloader manager.Reloader
	interval time.Duration
	file     string
	logger   *slog.Logger
	tracer   *tracing.Tracer

	mu        sync.RWMutex
	running   bool
	activeSHA string
	badSHA    string
	metrics   PollerMetrics
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithLogger sets the poller logger.
func WithLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTracer records a span per poll.
func WithTracer(t *tracing.Tracer) PollerOption {
	return func(p *Poller) {
		p.tracer = t
	}
}

// NewPoller creates a poller. The repository must already be cloned.
func NewPoller(repo *Repository, reloader manager.Reloader, opts ...PollerOption) *Poller {
	p := &Poller{
		repo:     repo,
		reloader: reloader,
		interval: repo.config.PollInterval,
		file:     path.Clean(repo.config.File),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "config.git", "repository", repo.config.Repository)
	return p
}

// Run polls until ctx is cancelled. It blocks and returns nil on
// cancellation.
func (p *Poller) Run(ctx context.Context) error {
	commit, err := p.repo.CurrentCommit()
	if err != nil {
		return fmt.Errorf("failed to get initial commit: %w", err)
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("poller already running")
	}
	p.running = true
	if p.activeSHA == "" {
		p.activeSHA = commit.SHA
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	p.logger.Info("git poller started",
		"branch", commit.Branch,
		"commit", commit.Short(),
		"poll_interval", p.interval,
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("git poller stopped")
			return nil
		case <-ticker.C:
			if err := p.Check(ctx); err != nil {
				p.logger.Error("git poll failed", "error", err)
			}
		}
	}
}

// Check pulls once and reloads if the configuration file changed.
func (p *Poller) Check(ctx context.Context) (err error) {
	ctx, span := p.tracer.Start(ctx, "config.git.poll")
	defer func() { tracing.End(span, err) }()

	p.mu.Lock()
	p.metrics.Polls++
	p.mu.Unlock()

	result, err := p.repo.Pull(ctx)
	if err != nil {
		p.mu.Lock()
		p.metrics.FailedPolls++
		p.mu.Unlock()
		return err
	}
	span.SetAttributes(
		attribute.String(tracing.AttrGitCommit, result.ToSHA),
		attribute.Bool(tracing.AttrGitChanged, result.HadChanges),
	)
	if !result.HadChanges {
		return nil
	}

	if !result.Touches(p.file) {
		p.mu.Lock()
		p.metrics.SkippedPolls++
		p.activeSHA = result.ToSHA
		p.mu.Unlock()
		p.logger.Debug("configuration file unchanged, skipping reload",
			"to_sha", shortSHA(result.ToSHA),
			"changed_files", len(result.ChangedFiles),
		)
		return nil
	}

	p.logger.Info("configuration file changed",
		"from_sha", shortSHA(result.FromSHA),
		"to_sha", shortSHA(result.ToSHA),
	)

	if err := p.reloader.Reload(); err != nil {
		p.mu.Lock()
		p.metrics.FailedReloads++
		p.badSHA = result.ToSHA
		active := p.activeSHA
		p.mu.Unlock()
		p.logger.Error("configuration from commit rejected, keeping previous snapshot",
			"commit", shortSHA(result.ToSHA),
			"active_commit", shortSHA(active),
			"error", err,
		)
		return fmt.Errorf("commit %s: %w", shortSHA(result.ToSHA), err)
	}

	p.mu.Lock()
	p.metrics.SuccessfulReloads++
	p.metrics.LastReloadTime = time.Now()
	p.activeSHA = result.ToSHA
	p.badSHA = ""
	p.mu.Unlock()
	return nil
}

// IsRunning reports whether Run is polling.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// ActiveCommit returns the commit the served configuration was loaded from.
func (p *Poller) ActiveCommit() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.activeSHA
}

// BadCommit returns the latest commit whose configuration failed to load,
// or "" once a later commit loads.
func (p *Poller) BadCommit() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.badSHA
}

// Metrics returns a copy of the poll counters.
func (p *Poller) Metrics() PollerMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.metrics
}
