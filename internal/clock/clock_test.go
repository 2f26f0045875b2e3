package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonotonic_NonDecreasing(t *testing.T) {
	c := Monotonic()

	prev := c.NowMicroseconds()
	for i := 0; i < 1000; i++ {
		now := c.NowMicroseconds()
		assert.GreaterOrEqual(t, now, prev, "reading %d went backwards", i)
		prev = now
	}
}

func TestMonotonic_Advances(t *testing.T) {
	c := Monotonic()

	start := c.NowMicroseconds()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, c.NowMicroseconds()-start, uint64(5000))
}

func TestManual_StartsAt(t *testing.T) {
	c := NewManual(42)
	assert.Equal(t, uint64(42), c.NowMicroseconds())
}

func TestManual_Advance(t *testing.T) {
	c := NewManual(0)

	assert.Equal(t, uint64(10), c.Advance(10))
	assert.Equal(t, uint64(15), c.Advance(5))
	assert.Equal(t, uint64(15), c.NowMicroseconds())
}

func TestManual_SetNeverGoesBack(t *testing.T) {
	c := NewManual(100)

	c.Set(50)
	assert.Equal(t, uint64(100), c.NowMicroseconds())

	c.Set(250)
	assert.Equal(t, uint64(250), c.NowMicroseconds())
}

func TestManual_ConcurrentAdvance(t *testing.T) {
	c := NewManual(0)
	const goroutines = 50
	const advances = 200

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < advances; j++ {
				c.Advance(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(goroutines*advances), c.NowMicroseconds())
}
