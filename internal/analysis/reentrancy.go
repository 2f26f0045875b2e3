package analysis

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/google/uuid"

	"algorithm-analysis/internal/splitrun"
)

// Latency histograms track 1µs to 60s with three significant figures.
const (
	minLatencyUS   = 1
	maxLatencyUS   = 60_000_000
	latencySigFigs = 3
)

// watermark is published by a phase for the phase that depends on it.
// stopped is set once done holds its final value.
type watermark struct {
	done    atomic.Uint64
	stopped atomic.Bool
}

type phase struct {
	kind OperationKind
	op   func(uint) error

	// upstream is the phase this one waits for, nil when ungated.
	upstream *phase

	mark      watermark
	elapsedUS atomic.Uint64

	// hist is only touched by the phase's own goroutine until the join.
	hist *hdrhistogram.Histogram
}

type activityLog struct {
	mu   sync.Mutex
	b    strings.Builder
	echo io.Writer
}

func (l *activityLog) record(tag string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.b.WriteString(tag)
	if l.echo != nil {
		fmt.Fprint(l.echo, tag)
	}
}

func (l *activityLog) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

// TestReentrancy runs the four operation kinds concurrently over
// [0, elementCount), each phase trailing the one before it: select waits for
// insert, update for select and delete for update.
//
// A failing operation ends its phase. The failure, and the aborts it causes
// downstream, are captured in the report; the returned error is reserved for
// orchestration failures.
func (a *Analysis) TestReentrancy(elementCount uint, verbose bool) (*ReentrancyReport, error) {
	report := &ReentrancyReport{
		RunID:    uuid.NewString(),
		TestName: a.cfg.Name,
	}
	logger := a.logger.With("run_id", report.RunID, "test", a.cfg.Name)
	progress := a.progress(verbose)

	progress("%s Algorithm Reentrancy Tests", a.cfg.Name)
	if err := a.reset(FullReset); err != nil {
		return nil, err
	}
	progress(": ")

	activity := &activityLog{}
	if verbose {
		activity.echo = a.diag
	}
	cadence := elementCount / 4

	phases := make([]*phase, len(operationKinds))
	for k, kind := range operationKinds {
		p := &phase{
			kind: kind,
			op:   operation(a.subject, kind),
			hist: hdrhistogram.New(minLatencyUS, maxLatencyUS, latencySigFigs),
		}
		if k > 0 && !a.ungated[kind] {
			p.upstream = phases[k-1]
		}
		phases[k] = p
	}

	logger.Info("reentrancy test starting", "elements", elementCount, "poll_interval", a.pollInterval)

	ex := splitrun.New(len(phases))
	for _, p := range phases {
		ex.Add(a.phaseUnit(p, elementCount, cadence, activity))
	}
	report.Errors, report.ErrorMessages = ex.RunAndWaitForAll()

	report.ActivityLog = activity.String()
	report.MsInserting = phases[Insert].elapsedUS.Load() / 1000
	report.MsSelectSettle = phases[Select].elapsedUS.Load() / 1000
	report.MsUpdating = phases[Update].elapsedUS.Load() / 1000
	report.MsDeleteSettle = phases[Delete].elapsedUS.Load() / 1000
	report.Latencies = make(map[string]LatencySummary, len(phases))
	for _, p := range phases {
		report.Latencies[p.kind.String()] = summarizeLatency(p.hist)
	}

	if len(report.Errors) > 0 {
		logger.Warn("reentrancy test captured errors",
			"errors", len(report.Errors),
			"first_error", report.ErrorMessages[0],
		)
	}
	for _, p := range phases {
		logger.Debug("phase complete",
			"op", p.kind.String(),
			"completed", p.mark.done.Load(),
			"elapsed_us", p.elapsedUS.Load(),
		)
	}

	progress("\nDone: %dms inserting, %dms selecting & testing, %dms updating, %dms testing & deleting.\n",
		report.MsInserting, report.MsSelectSettle, report.MsUpdating, report.MsDeleteSettle)

	if err := a.reset(FinalReset); err != nil {
		return nil, err
	}
	return report, nil
}

func (a *Analysis) phaseUnit(p *phase, count, cadence uint, activity *activityLog) splitrun.Unit {
	return func() error {
		defer p.mark.stopped.Store(true)
		for i := uint(0); i < count; i++ {
			if err := a.await(p, i); err != nil {
				return err
			}

			start := a.clock.NowMicroseconds()
			err := p.op(i)
			elapsed := a.clock.NowMicroseconds() - start

			p.elapsedUS.Add(elapsed)
			// RecordValue only rejects values above maxLatencyUS.
			_ = p.hist.RecordValue(int64(min(elapsed, maxLatencyUS)))
			if err != nil {
				return fmt.Errorf("%s element %d: %w", p.kind, i, err)
			}
			p.mark.done.Store(uint64(i) + 1)

			if cadence > 0 && i%cadence == 0 {
				activity.record(p.kind.tag())
			}
		}
		return nil
	}
}

// await blocks until the upstream phase has completed element i. It fails
// when the upstream phase stopped short of i.
func (a *Analysis) await(p *phase, i uint) error {
	up := p.upstream
	if up == nil {
		return nil
	}
	for {
		if uint64(i) < up.mark.done.Load() {
			return nil
		}
		if up.mark.stopped.Load() {
			// done is final once stopped is visible.
			if uint64(i) < up.mark.done.Load() {
				return nil
			}
			return newUpstreamAbortedError(p.kind, up.kind, i)
		}
		time.Sleep(a.pollInterval)
	}
}

func summarizeLatency(h *hdrhistogram.Histogram) LatencySummary {
	return LatencySummary{
		Count: h.TotalCount(),
		P50:   h.ValueAtQuantile(50),
		P95:   h.ValueAtQuantile(95),
		P99:   h.ValueAtQuantile(99),
		Max:   h.Max(),
	}
}
