package pulse

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterDrainResets(t *testing.T) {
	var c Counter
	for i := 0; i < 7; i++ {
		c.Increment()
	}
	assert.Equal(t, uint32(7), c.Drain())
	assert.Equal(t, uint32(0), c.Drain(), "drain resets the counter")
}

func TestCounterLoadDoesNotReset(t *testing.T) {
	var c Counter
	c.Increment()
	c.Increment()
	assert.Equal(t, uint32(2), c.Load())
	assert.Equal(t, uint32(2), c.Drain())
}

// TestDrainAtomicity races increments against drains over randomized
// interleavings. Every pulse must land in exactly one drain: the total
// drained plus the residue equals the total incremented.
func TestDrainAtomicity(t *testing.T) {
	const rounds = 1000

	for round := 0; round < rounds; round++ {
		var c Counter
		pulses := rand.Intn(200) + 1
		drains := rand.Intn(8) + 1

		var wg sync.WaitGroup
		var drained uint64
		var mu sync.Mutex

		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < pulses; i++ {
				c.Increment()
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < drains; i++ {
				n := c.Drain()
				mu.Lock()
				drained += uint64(n)
				mu.Unlock()
			}
		}()
		wg.Wait()

		total := drained + uint64(c.Drain())
		if total != uint64(pulses) {
			t.Fatalf("round %d: %d pulses in, %d accounted for", round, pulses, total)
		}
	}
}

// TestDrainNeverDoubleCounts drains from two goroutines at once; the swap
// semantics guarantee each pulse is returned by at most one of them.
func TestDrainNeverDoubleCounts(t *testing.T) {
	var c Counter
	const pulses = 10000
	for i := 0; i < pulses; i++ {
		c.Increment()
	}

	var wg sync.WaitGroup
	totals := make([]uint64, 4)
	for g := 0; g < len(totals); g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				totals[g] += uint64(c.Drain())
			}
		}(g)
	}
	wg.Wait()

	var sum uint64
	for _, v := range totals {
		sum += v
	}
	assert.Equal(t, uint64(pulses), sum)
}
