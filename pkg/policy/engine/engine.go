package engine

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/coder-hombre/static-vines/pkg/policy"
	"github.com/coder-hombre/static-vines/pkg/vine"
)

// Stats are cumulative counters since the engine was created.
type Stats struct {
	Evaluated uint64 `json:"evaluated"`
	Vetoed    uint64 `json:"vetoed"`
	Faults    uint64 `json:"faults"`
}

// GrowthEngine evaluates growth events. It is safe for concurrent use.
type GrowthEngine struct {
	config     *EngineConfig
	classifier *vine.Classifier
	recorder   Recorder
	logger     *slog.Logger

	// source supplies the snapshot for Handle. May be nil.
	source FlagSource

	evaluated atomic.Uint64
	vetoed    atomic.Uint64
	faults    atomic.Uint64
}

// New creates a growth engine. source may be nil when the caller only uses
// Evaluate and OnGrowthEvent with explicit flags.
func New(config *EngineConfig, source FlagSource, logger *slog.Logger) (*GrowthEngine, error) {
	if config == nil {
		config = DefaultEngineConfig()
	}
	if config.Classifier == nil {
		config.Classifier = vine.DefaultClassifier()
	}
	if config.Recorder == nil {
		config.Recorder = nopRecorder{}
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GrowthEngine{
		config:     config,
		classifier: config.Classifier,
		recorder:   config.Recorder,
		logger:     logger.With("component", "growth_engine"),
		source:     source,
	}, nil
}

// OnGrowthEvent decides event against flags.
func (e *GrowthEngine) OnGrowthEvent(event GrowthEvent, flags *policy.Flags) Decision {
	return e.Evaluate(event, flags).Decision
}

// Handle decides event against the current snapshot of the engine's source.
func (e *GrowthEngine) Handle(event GrowthEvent) Decision {
	return e.evaluate(event, e.sourceFlags).Decision
}

// Evaluate decides event against flags and returns the full verdict.
// It never panics and never returns a nil verdict.
func (e *GrowthEngine) Evaluate(event GrowthEvent, flags *policy.Flags) *Verdict {
	return e.evaluate(event, func() *policy.Flags { return flags })
}

// Stats returns a copy of the engine counters.
func (e *GrowthEngine) Stats() Stats {
	return Stats{
		Evaluated: e.evaluated.Load(),
		Vetoed:    e.vetoed.Load(),
		Faults:    e.faults.Load(),
	}
}

func (e *GrowthEngine) sourceFlags() *policy.Flags {
	if e.source == nil {
		return nil
	}
	return e.source.Flags()
}

// evaluate is the engine boundary. flags is only called on paths that
// consult the policy.
func (e *GrowthEngine) evaluate(event GrowthEvent, flags func() *policy.Flags) (verdict *Verdict) {
	start := time.Now()
	verdict = &Verdict{
		Decision: Allow,
		Kind:     event.Kind,
		Pos:      event.Pos,
		Category: vine.Unknown,
	}

	defer func() {
		if r := recover(); r != nil {
			verdict = e.fail(event, &ClassificationError{
				Kind:  event.Kind,
				Pos:   event.Pos,
				Cause: &PanicError{Value: r, Stack: debug.Stack()},
			}, start)
		}
	}()

	// Placement never reaches classification or policy code.
	if event.Kind == PlayerPlacement {
		verdict.Reason = ReasonPlayerPlacement
		e.finish(event, verdict, start)
		return verdict
	}

	var err error
	switch event.Kind {
	case NeighborSpread, FeatureGrowth:
		err = e.evaluateGrowth(event, flags, verdict)
	case BlockBreakAdjacency:
		e.observeBreak(event, flags, verdict)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedEventKind, event.Kind)
	}
	if err != nil {
		return e.fail(event, err, start)
	}

	e.finish(event, verdict, start)
	return verdict
}

func (e *GrowthEngine) evaluateGrowth(event GrowthEvent, flags func() *policy.Flags, verdict *Verdict) error {
	subject, err := e.resolve(event)
	if err != nil {
		return &ClassificationError{Kind: event.Kind, Pos: event.Pos, Cause: err}
	}
	verdict.BlockID = subject.BlockID()
	verdict.Category = e.classifier.ClassifyID(verdict.BlockID)

	// Only a confident classification can lead to a veto.
	if verdict.Category == vine.Unknown {
		verdict.Reason = ReasonNotVine
		return nil
	}

	snapshot := flags()
	if snapshot == nil {
		return &PolicyReadError{Cause: ErrNoSnapshot}
	}
	if !snapshot.Valid() {
		return &PolicyReadError{Cause: ErrMalformedSnapshot}
	}

	if policy.ShouldSuppress(verdict.Category, snapshot) {
		verdict.Decision = Veto
		verdict.Reason = ReasonSuppressed
	} else {
		verdict.Reason = ReasonGrowthEnabled
	}
	return nil
}

func (e *GrowthEngine) resolve(event GrowthEvent) (vine.Identity, error) {
	if event.Subject != nil {
		return event.Subject, nil
	}
	if event.World == nil {
		return nil, ErrNoWorld
	}
	id, err := event.World.BlockAt(event.Pos)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnresolvable, err)
	}
	if id == nil {
		return nil, ErrUnresolvable
	}
	return id, nil
}

// observeBreak records vines adjacent to a broken block. It never vetoes;
// neighbors that cannot be read are skipped.
func (e *GrowthEngine) observeBreak(event GrowthEvent, flags func() *policy.Flags, verdict *Verdict) {
	verdict.Reason = ReasonObservational
	if !e.config.NeighborScan || event.World == nil {
		return
	}

	snapshot := flags()
	for _, dir := range vine.Directions {
		pos := event.Pos.Offset(dir)
		id, err := event.World.BlockAt(pos)
		if err != nil || id == nil {
			continue
		}
		blockID := id.BlockID()
		cat := e.classifier.ClassifyID(blockID)
		if cat == vine.Unknown {
			continue
		}
		verdict.Neighbors = append(verdict.Neighbors, NeighborVine{
			Direction:  dir,
			Pos:        pos,
			BlockID:    blockID,
			Category:   cat,
			Suppressed: snapshot.Valid() && policy.ShouldSuppress(cat, snapshot),
		})
		e.recorder.RecordNeighborVine(cat.String())
	}

	if len(verdict.Neighbors) > 0 {
		e.logger.Debug("block broken next to vines",
			"world", event.WorldName,
			"pos", event.Pos.String(),
			"neighbor_vines", len(verdict.Neighbors),
		)
	}
}

func (e *GrowthEngine) finish(event GrowthEvent, verdict *Verdict, start time.Time) {
	verdict.Duration = time.Since(start)
	e.evaluated.Add(1)
	if verdict.Decision == Veto {
		e.vetoed.Add(1)
	}
	e.recorder.RecordDecision(event.Kind.String(), verdict.Category.String(), verdict.Decision.String(), verdict.Duration)

	if e.config.LogDecisions {
		e.logger.Debug("growth decision",
			"world", event.WorldName,
			"kind", event.Kind.String(),
			"pos", event.Pos.String(),
			"block", verdict.BlockID,
			"category", verdict.Category.String(),
			"decision", verdict.Decision.String(),
			"reason", string(verdict.Reason),
		)
	}
	if t := e.config.SlowEvaluationThreshold; t > 0 && verdict.Duration > t {
		e.logger.Warn("slow growth evaluation",
			"kind", event.Kind.String(),
			"duration_ms", verdict.Duration.Milliseconds(),
		)
	}
}

// fail converts a fault into an allowing verdict. Telemetry failures here are
// swallowed so the host never sees a panic.
func (e *GrowthEngine) fail(event GrowthEvent, err error, start time.Time) (verdict *Verdict) {
	verdict = &Verdict{
		Decision: Allow,
		Kind:     event.Kind,
		Pos:      event.Pos,
		Category: vine.Unknown,
		Reason:   ReasonFault,
		Err:      err,
		Duration: time.Since(start),
	}

	defer func() {
		_ = recover()
	}()

	e.evaluated.Add(1)
	e.faults.Add(1)
	e.logger.Warn("growth event evaluation failed, allowing",
		"world", event.WorldName,
		"kind", event.Kind.String(),
		"pos", event.Pos.String(),
		"error", err,
	)
	e.recorder.RecordFault(event.Kind.String())
	e.recorder.RecordDecision(event.Kind.String(), vine.Unknown.String(), Allow.String(), verdict.Duration)
	return verdict
}
