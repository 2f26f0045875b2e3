package analysis

import (
	"io"
	"log/slog"
	"os"
	"time"

	"algorithm-analysis/internal/clock"
)

// DefaultPollInterval is how often a waiting reentrancy phase re-reads the
// watermark of the phase it depends on.
const DefaultPollInterval = 100 * time.Millisecond

// TestConfig fixes the number of elements each operation kind works on.
type TestConfig struct {
	Name        string
	InsertCount uint
	SelectCount uint
	UpdateCount uint
	DeleteCount uint
}

// NewConfig prepares a configuration with the given number of inserts,
// updates and selects. Deletes undo every insert.
func NewConfig(name string, inserts, updates, selects uint) TestConfig {
	return TestConfig{
		Name:        name,
		InsertCount: inserts,
		SelectCount: selects,
		UpdateCount: updates,
		DeleteCount: inserts,
	}
}

// NewUniformConfig prepares a configuration where every operation kind works
// on the same number of elements.
func NewUniformConfig(name string, elements uint) TestConfig {
	return NewConfig(name, elements, elements, elements)
}

func (c TestConfig) count(kind OperationKind) uint {
	switch kind {
	case Insert:
		return c.InsertCount
	case Select:
		return c.SelectCount
	case Update:
		return c.UpdateCount
	default:
		return c.DeleteCount
	}
}

// Analysis drives complexity analyses and reentrancy tests against one
// Subject. Its configuration does not change once built.
//
// An Analysis runs one call at a time; AnalyseComplexity and TestReentrancy
// must not be invoked concurrently on the same instance.
type Analysis struct {
	subject Subject
	cfg     TestConfig

	clock        clock.Clock
	logger       *slog.Logger
	diag         io.Writer
	pollInterval time.Duration

	// ungated lists reentrancy phases that start without waiting on their
	// upstream phase.
	ungated map[OperationKind]bool
}

// Option configures an Analysis.
type Option func(*Analysis)

// WithClock replaces the monotonic clock used to time passes and operations.
func WithClock(c clock.Clock) Option {
	return func(a *Analysis) {
		a.clock = c
	}
}

// WithLogger sets the structured logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Analysis) {
		a.logger = l
	}
}

// WithDiagnostics sets where verbose runs stream progress and reports.
// Default: os.Stderr.
func WithDiagnostics(w io.Writer) Option {
	return func(a *Analysis) {
		a.diag = w
	}
}

// WithPollInterval sets the reentrancy gate poll interval.
// Non-positive values keep DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(a *Analysis) {
		if d > 0 {
			a.pollInterval = d
		}
	}
}

// New creates an Analysis of subject with the given configuration.
func New(subject Subject, cfg TestConfig, opts ...Option) *Analysis {
	a := &Analysis{
		subject:      subject,
		cfg:          cfg,
		clock:        clock.Monotonic(),
		logger:       slog.Default(),
		diag:         os.Stderr,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the configuration the analysis was built with.
func (a *Analysis) Config() TestConfig {
	return a.cfg
}

func (a *Analysis) reset(occasion ResetOccasion) error {
	if err := a.subject.Reset(occasion); err != nil {
		return newResetError(occasion, err)
	}
	return nil
}
