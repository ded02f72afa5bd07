package engine

import (
	"fmt"
	"time"

	"github.com/coder-hombre/static-vines/pkg/vine"
)

// EngineConfig contains configuration for the growth interception engine.
type EngineConfig struct {
	// NeighborScan enables the diagnostic neighbor scan on block break events.
	// Default: true.
	NeighborScan bool

	// LogDecisions logs every decision at debug level.
	// Default: false.
	LogDecisions bool

	// SlowEvaluationThreshold logs a warning when a single evaluation takes
	// longer. Zero disables the check.
	// Default: 5ms.
	SlowEvaluationThreshold time.Duration

	// Classifier maps subjects to categories.
	// Default: vine.DefaultClassifier().
	Classifier *vine.Classifier

	// Recorder receives decision telemetry.
	// Default: a no-op recorder.
	Recorder Recorder
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		NeighborScan:            true,
		LogDecisions:            false,
		SlowEvaluationThreshold: 5 * time.Millisecond,
		Classifier:              vine.DefaultClassifier(),
		Recorder:                nopRecorder{},
	}
}

// Validate validates the engine configuration.
func (c *EngineConfig) Validate() error {
	if c.SlowEvaluationThreshold < 0 {
		return fmt.Errorf("%w: slow evaluation threshold cannot be negative", ErrInvalidConfig)
	}
	if c.Classifier == nil {
		return fmt.Errorf("%w: classifier is required", ErrInvalidConfig)
	}
	if c.Recorder == nil {
		return fmt.Errorf("%w: recorder is required", ErrInvalidConfig)
	}
	return nil
}

// WithNeighborScan enables or disables the break neighbor scan.
func (c *EngineConfig) WithNeighborScan(enabled bool) *EngineConfig {
	c.NeighborScan = enabled
	return c
}

// WithLogDecisions enables or disables per-decision debug logging.
func (c *EngineConfig) WithLogDecisions(enabled bool) *EngineConfig {
	c.LogDecisions = enabled
	return c
}

// WithSlowEvaluationThreshold sets the slow evaluation warning threshold.
func (c *EngineConfig) WithSlowEvaluationThreshold(d time.Duration) *EngineConfig {
	c.SlowEvaluationThreshold = d
	return c
}

// WithClassifier sets the classifier.
func (c *EngineConfig) WithClassifier(classifier *vine.Classifier) *EngineConfig {
	c.Classifier = classifier
	return c
}

// WithRecorder sets the telemetry recorder.
func (c *EngineConfig) WithRecorder(r Recorder) *EngineConfig {
	c.Recorder = r
	return c
}
