package analysis

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"algorithm-analysis/internal/splitrun"
)

// numberOfPasses is fixed: the classifier compares exactly two passes.
const numberOfPasses = 2

type span struct {
	lo, hi uint
}

type passResult struct {
	start, end    uint64
	errorIDs      []string
	errorMessages []string
}

type kindRun struct {
	kind    OperationKind
	threads int
	passes  [numberOfPasses]passResult
}

// AnalyseComplexity measures the complexity of every operation kind given a
// positive thread count. Kinds with a thread count of zero are skipped and
// left zero-valued in the report.
//
// Operation failures never fail the call: each pass reports the identifiers
// and messages of its failed workers. The returned error is reserved for
// orchestration failures such as a failing Reset.
func (a *Analysis) AnalyseComplexity(performWarmUp bool, insertThreads, selectThreads, updateThreads, deleteThreads int, verbose bool) (*ComplexityReport, error) {
	report := &ComplexityReport{
		RunID:    uuid.NewString(),
		TestName: a.cfg.Name,
	}
	logger := a.logger.With("run_id", report.RunID, "test", a.cfg.Name)
	progress := a.progress(verbose)

	inserts := &kindRun{kind: Insert, threads: insertThreads}
	selects := &kindRun{kind: Select, threads: selectThreads}
	updates := &kindRun{kind: Update, threads: updateThreads}
	deletes := &kindRun{kind: Delete, threads: deleteThreads}

	logger.Info("complexity analysis starting",
		"inserts", a.cfg.InsertCount, "insert_threads", insertThreads,
		"selects", a.cfg.SelectCount, "select_threads", selectThreads,
		"updates", a.cfg.UpdateCount, "update_threads", updateThreads,
		"deletes", a.cfg.DeleteCount, "delete_threads", deleteThreads,
		"warm_up", performWarmUp,
	)
	progress("%s Algorithm Complexity Analysis: ", a.cfg.Name)

	if performWarmUp {
		progress("Warm")
		if err := a.reset(PreWarmupReset); err != nil {
			return nil, err
		}
		progress(" Up; ")
		a.warmUp(logger, warmUpThreads(insertThreads, selectThreads, updateThreads, deleteThreads))
	}

	if err := a.reset(FullReset); err != nil {
		return nil, err
	}

	for pass := 1; pass <= numberOfPasses; pass++ {
		if pass == 1 {
			progress("First Pass ( ")
		} else {
			progress("); Second Pass ( ")
		}
		for _, run := range []*kindRun{inserts, updates, selects} {
			if run.threads <= 0 {
				continue
			}
			progress("%s ", run.kind.label())
			if err := a.runPass(logger, run, pass); err != nil {
				return nil, err
			}
		}
	}
	progress(")")

	// Deletes shrink the fully populated structure: the larger pass 2 runs
	// first, while the structure still holds every element.
	if deletes.threads > 0 {
		progress("; Delete ( ")
		for pass := numberOfPasses; pass >= 1; pass-- {
			if pass == 2 {
				progress("Second Pass ")
			} else {
				progress("First Pass ")
			}
			if err := a.runPass(logger, deletes, pass); err != nil {
				return nil, err
			}
		}
		progress(")")
	}
	progress(".\n")

	for _, run := range []*kindRun{inserts, selects, updates, deletes} {
		if run.threads <= 0 {
			continue
		}
		op := report.Operation(run.kind)
		a.summarize(run, op)
		progress("%s\n", op.Analysis)
		logger.Info("operation classified",
			"op", run.kind.String(),
			"complexity", op.Complexity.String(),
			"pass1_elapsed_us", op.Pass1ElapsedUS,
			"pass2_elapsed_us", op.Pass2ElapsedUS,
		)
	}

	if err := a.reset(FinalReset); err != nil {
		return nil, err
	}
	return report, nil
}

// runPass drives one timed pass of run.kind and stores its measurement.
func (a *Analysis) runPass(logger *slog.Logger, run *kindRun, pass int) error {
	lo, hi, err := passRange(run.kind, pass, a.cfg.count(run.kind))
	if err != nil {
		return err
	}

	ex := splitrun.New(run.threads)
	op := operation(a.subject, run.kind)
	for _, s := range partition(lo, hi, run.threads) {
		ex.Add(sliceUnit(run.kind, op, s))
	}

	result := &run.passes[pass-1]
	result.start = a.clock.NowMicroseconds()
	result.errorIDs, result.errorMessages = ex.RunAndWaitForAll()
	result.end = a.clock.NowMicroseconds()

	l := logger.With("op", run.kind.String(), "pass", pass)
	if len(result.errorIDs) > 0 {
		l.Warn("pass captured operation errors",
			"elapsed_us", result.end-result.start,
			"errors", len(result.errorIDs),
			"first_error", result.errorMessages[0],
		)
		return nil
	}
	l.Debug("pass complete",
		"elapsed_us", result.end-result.start,
		"elements", hi-lo,
		"threads", run.threads,
	)
	return nil
}

// summarize classifies a finished run into op.
func (a *Analysis) summarize(run *kindRun, op *OperationReport) {
	p1, p2 := run.passes[0], run.passes[1]
	count := a.cfg.count(run.kind)
	half := count / 2

	var complexity Complexity
	var text string
	switch run.kind {
	case Insert, Delete:
		complexity, text = ComputeInsertOrDelete(run.kind.label(),
			p1.start, p1.end, p2.start, p2.end, half)
	default:
		complexity, text = ComputeUpdateOrSelect(run.kind.label(),
			p1.start, p1.end, p2.start, p2.end, half, count, half)
	}

	op.Complexity = complexity
	op.Pass1ElapsedUS = p1.end - p1.start
	op.Pass2ElapsedUS = p2.end - p2.start
	op.Pass1Errors, op.Pass1ErrorMessages = p1.errorIDs, p1.errorMessages
	op.Pass2Errors, op.Pass2ErrorMessages = p2.errorIDs, p2.errorMessages
	op.Analysis = text
}

// warmUp inserts the first 1% of the insert range to prime caches and
// allocators. Results and failures are discarded.
func (a *Analysis) warmUp(logger *slog.Logger, threads int) {
	ex := splitrun.New(threads)
	for _, s := range partition(0, a.cfg.InsertCount/100, threads) {
		ex.Add(sliceUnit(Insert, a.subject.Insert, s))
	}
	if ids, msgs := ex.RunAndWaitForAll(); len(ids) > 0 {
		logger.Warn("warm-up inserts failed", "errors", len(ids), "first_error", msgs[0])
	}
}

func warmUpThreads(insertThreads int, others ...int) int {
	if insertThreads > 0 {
		return insertThreads
	}
	threads := 1
	for _, t := range others {
		threads = max(threads, t)
	}
	return threads
}

// passRange returns the element indices [lo, hi) a pass works on.
//
// With n = count/2: inserts and deletes move [0, n) in pass 1 and the 2n
// elements [n, 3n) in pass 2. Selects and updates perform n operations per
// pass, on [0, n) and then [n, 2n).
func passRange(kind OperationKind, pass int, count uint) (lo, hi uint, err error) {
	half := count / 2
	if pass == 1 {
		return 0, half, nil
	}
	if pass != 2 {
		return 0, 0, newUnsupportedPassError(kind, pass)
	}
	switch kind {
	case Insert, Delete:
		return half, 3 * half, nil
	default:
		return half, 2 * half, nil
	}
}

// partition splits [lo, hi) into parts contiguous, disjoint spans. The last
// span absorbs the remainder.
func partition(lo, hi uint, parts int) []span {
	if parts <= 0 {
		parts = 1
	}
	size := (hi - lo) / uint(parts)
	spans := make([]span, parts)
	for k := range spans {
		start := lo + uint(k)*size
		end := start + size
		if k == parts-1 {
			end = hi
		}
		spans[k] = span{lo: start, hi: end}
	}
	return spans
}

// sliceUnit applies op to every index of s in order, stopping at the first
// failure.
func sliceUnit(kind OperationKind, op func(uint) error, s span) splitrun.Unit {
	return func() error {
		for i := s.lo; i < s.hi; i++ {
			if err := op(i); err != nil {
				return fmt.Errorf("%s element %d: %w", kind, i, err)
			}
		}
		return nil
	}
}

func (a *Analysis) progress(verbose bool) func(format string, args ...any) {
	if !verbose {
		return func(string, ...any) {}
	}
	return func(format string, args ...any) {
		fmt.Fprintf(a.diag, format, args...)
	}
}
