package runner

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"algorithm-analysis/internal/analysis"
	"algorithm-analysis/internal/config"
	"algorithm-analysis/internal/database"
	"algorithm-analysis/internal/subject"
)

// RunComplexity connects backend, analyses the complexity of its operations
// with the configured counts and threads, and closes it.
func RunComplexity(ctx context.Context, cfg *config.Config, backend string, verbose bool, opts ...analysis.Option) (*analysis.ComplexityReport, error) {
	var report *analysis.ComplexityReport
	err := withAnalysis(ctx, cfg, backend, opts, func(a *analysis.Analysis) error {
		threads := cfg.Analysis.Threads
		var err error
		report, err = a.AnalyseComplexity(cfg.Analysis.WarmUp,
			threads.Insert, threads.Select, threads.Update, threads.Delete, verbose)
		return err
	})
	return report, err
}

// RunReentrancy connects backend, runs the reentrancy test over the
// configured number of elements, and closes it.
func RunReentrancy(ctx context.Context, cfg *config.Config, backend string, verbose bool, opts ...analysis.Option) (*analysis.ReentrancyReport, error) {
	var report *analysis.ReentrancyReport
	err := withAnalysis(ctx, cfg, backend, opts, func(a *analysis.Analysis) error {
		var err error
		report, err = a.TestReentrancy(cfg.Analysis.ReentrancyElements, verbose)
		return err
	})
	return report, err
}

func withAnalysis(ctx context.Context, cfg *config.Config, backend string, opts []analysis.Option, run func(*analysis.Analysis) error) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	dsn, err := cfg.DSN(backend)
	if err != nil {
		return err
	}
	poll, err := cfg.PollInterval()
	if err != nil {
		return err
	}

	kv, err := database.Open(backend, dsn)
	if err != nil {
		return err
	}
	defer func() {
		if err := kv.Close(); err != nil {
			slog.Warn("failed to close database", "db", backend, "error", err)
		}
	}()

	settings := cfg.Analysis
	testConfig := analysis.TestConfig{
		Name:        settings.TestName,
		InsertCount: settings.InsertCount,
		SelectCount: settings.SelectCount,
		UpdateCount: settings.UpdateCount,
		DeleteCount: settings.DeleteCount,
	}
	opts = append([]analysis.Option{
		analysis.WithPollInterval(poll),
		analysis.WithLogger(slog.Default().With("db", backend)),
	}, opts...)

	a := analysis.New(subject.NewKVSubject(ctx, kv), testConfig, opts...)
	return errors.WithMessagef(run(a), "%s on %s", settings.TestName, backend)
}
