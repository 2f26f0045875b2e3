package splitrun

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codedError struct{ code string }

func (e *codedError) Error() string   { return "coded failure " + e.code }
func (e *codedError) ErrorID() string { return e.code }

func TestRunAndWaitForAll_AllSucceed(t *testing.T) {
	ex := New(4)
	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		ex.Add(func() error {
			ran.Add(1)
			return nil
		})
	}

	ids, msgs := ex.RunAndWaitForAll()

	assert.Nil(t, ids)
	assert.Nil(t, msgs)
	assert.Equal(t, int32(10), ran.Load())
	assert.Equal(t, 0, ex.Pending(), "round should be cleared")
}

func TestRunAndWaitForAll_EmptyRound(t *testing.T) {
	ids, msgs := New(2).RunAndWaitForAll()
	assert.Nil(t, ids)
	assert.Nil(t, msgs)
}

func TestRunAndWaitForAll_FailuresDoNotStopSiblings(t *testing.T) {
	ex := New(2)
	var ran atomic.Int32

	ex.Add(
		func() error { ran.Add(1); return errors.New("first") },
		func() error { ran.Add(1); return nil },
		func() error { ran.Add(1); return &codedError{code: "CORRUPT"} },
		func() error { ran.Add(1); return nil },
	)

	ids, msgs := ex.RunAndWaitForAll()

	assert.Equal(t, int32(4), ran.Load(), "every unit must run")
	require.Len(t, ids, 2)
	require.Len(t, msgs, 2)
	assert.Equal(t, "*errors.errorString", ids[0])
	assert.Equal(t, "unit #0: first", msgs[0])
	assert.Equal(t, "CORRUPT", ids[1])
	assert.Equal(t, "unit #2: coded failure CORRUPT", msgs[1])
}

func TestRunAndWaitForAll_WrappedIdentifier(t *testing.T) {
	ex := New(1)
	ex.Add(func() error {
		return fmt.Errorf("select 7: %w", &codedError{code: "MISMATCH"})
	})

	ids, msgs := ex.RunAndWaitForAll()

	require.Len(t, ids, 1)
	assert.Equal(t, "MISMATCH", ids[0])
	assert.Contains(t, msgs[0], "select 7: coded failure MISMATCH")
}

func TestRunAndWaitForAll_RecoversPanics(t *testing.T) {
	ex := New(0)
	var ran atomic.Int32
	ex.Add(
		func() error { panic("boom") },
		func() error { ran.Add(1); return nil },
	)

	ids, msgs := ex.RunAndWaitForAll()

	assert.Equal(t, int32(1), ran.Load())
	require.Len(t, ids, 1)
	assert.Equal(t, PanicID, ids[0])
	assert.Contains(t, msgs[0], "unit #0: panic: boom")
	assert.Contains(t, msgs[0], "splitrun", "panic message should carry a stack")
}

func TestRunAndWaitForAll_BoundsConcurrency(t *testing.T) {
	const workers = 3
	ex := New(workers)

	var mu sync.Mutex
	live, peak := 0, 0
	for i := 0; i < 12; i++ {
		ex.Add(func() error {
			mu.Lock()
			live++
			if live > peak {
				peak = live
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			live--
			mu.Unlock()
			return nil
		})
	}

	ex.RunAndWaitForAll()

	assert.LessOrEqual(t, peak, workers)
	assert.Greater(t, peak, 0)
}

func TestRunAndWaitForAll_IsABarrier(t *testing.T) {
	ex := New(4)
	var done atomic.Int32
	for i := 0; i < 8; i++ {
		ex.Add(func() error {
			time.Sleep(2 * time.Millisecond)
			done.Add(1)
			return nil
		})
	}

	ex.RunAndWaitForAll()
	assert.Equal(t, int32(8), done.Load(), "all units must be finished when the round returns")
}

func TestErrorID_PlainError(t *testing.T) {
	assert.Equal(t, "*errors.errorString", ErrorID(errors.New("x")))
}

func TestErrorID_WrappedPlainError(t *testing.T) {
	err := fmt.Errorf("element 7: %w", errors.New("x"))
	assert.Equal(t, "*errors.errorString", ErrorID(err))
}

func TestWorkers(t *testing.T) {
	assert.Equal(t, 4, New(4).Workers())
	assert.Equal(t, 0, New(0).Workers())
	assert.Equal(t, 0, New(-3).Workers())
}
