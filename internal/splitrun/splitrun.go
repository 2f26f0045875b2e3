// Package splitrun runs rounds of independent units of work across a fixed
// number of goroutines and reports every failure of the round.
//
// A round is built with Add and executed with RunAndWaitForAll, which blocks
// until every unit has returned or panicked. Failures never cancel sibling
// units; they are collected into two parallel lists, one identifier and one
// human-readable message per failed unit, in submission order.
package splitrun

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Unit is one partition of work. It fails by returning an error or by panicking.
type Unit func() error

// Identifier is implemented by errors that carry their own report identifier.
type Identifier interface {
	ErrorID() string
}

// PanicID identifies failures caused by a recovered panic.
const PanicID = "panic"

// PanicError wraps the value recovered from a panicking unit together with
// the stack at the point of recovery.
type PanicError struct {
	Value any
	err   error
}

func (p *PanicError) Error() string { return p.err.Error() }

// ErrorID implements Identifier.
func (p *PanicError) ErrorID() string { return PanicID }

// Format prints the recovery stack for %+v.
func (p *PanicError) Format(s fmt.State, verb rune) {
	if f, ok := p.err.(fmt.Formatter); ok {
		f.Format(s, verb)
		return
	}
	fmt.Fprint(s, p.err.Error())
}

// Executor runs submitted units with bounded concurrency.
//
// Add may be called from any goroutine. RunAndWaitForAll must not be called
// concurrently with itself.
type Executor struct {
	workers int

	mu    sync.Mutex
	units []Unit
}

// New creates an executor running at most workers units at once.
// workers <= 0 runs every unit of a round on its own goroutine.
func New(workers int) *Executor {
	return &Executor{workers: workers}
}

// Workers returns the concurrency bound, 0 meaning unbounded.
func (e *Executor) Workers() int {
	if e.workers < 0 {
		return 0
	}
	return e.workers
}

// Add submits units for the next round.
func (e *Executor) Add(units ...Unit) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.units = append(e.units, units...)
}

// Pending returns the number of units waiting for the next round.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.units)
}

// RunAndWaitForAll executes the current round and blocks until all of its
// units are done. The round is cleared whatever the outcome.
//
// errorIDs[i] and errorMessages[i] describe the same failure. Both slices are
// nil when every unit succeeded.
func (e *Executor) RunAndWaitForAll() (errorIDs, errorMessages []string) {
	e.mu.Lock()
	units := e.units
	e.units = nil
	e.mu.Unlock()

	if len(units) == 0 {
		return nil, nil
	}

	failures := make([]error, len(units))

	var g errgroup.Group
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			failures[i] = runUnit(unit)
			// Never surface the error to the group: errgroup would only keep
			// the first one and we report all of them.
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range failures {
		if err == nil {
			continue
		}
		errorIDs = append(errorIDs, ErrorID(err))
		errorMessages = append(errorMessages, message(i, err))
	}
	return errorIDs, errorMessages
}

// ErrorID returns the report identifier for err: the id an Identifier in its
// chain supplies, or the dynamic type name of the innermost error otherwise.
func ErrorID(err error) string {
	var id Identifier
	if errors.As(err, &id) {
		return id.ErrorID()
	}
	for next := errors.Unwrap(err); next != nil; next = errors.Unwrap(err) {
		err = next
	}
	return fmt.Sprintf("%T", err)
}

func message(index int, err error) string {
	var p *PanicError
	if errors.As(err, &p) {
		return fmt.Sprintf("unit #%d: %+v", index, p)
	}
	return fmt.Sprintf("unit #%d: %v", index, err)
}

func runUnit(unit Unit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{
				Value: r,
				err:   errors.Errorf("panic: %v", r),
			}
		}
	}()
	return unit()
}
