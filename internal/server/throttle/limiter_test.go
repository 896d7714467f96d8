package throttle

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestLimiter_BurstThenRefill(t *testing.T) {
	clk := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(5, time.Hour, clk.Now)

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "call %d", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"), "sixth call within the minute")

	assert.True(t, l.Allow("10.0.0.2"), "other clients are independent")

	clk.Advance(12 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"), "one token refilled")
	assert.False(t, l.Allow("10.0.0.1"))

	clk.Advance(time.Minute)
	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("10.0.0.1"))
	}
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(0, 0, nil)
	for i := 0; i < 1000; i++ {
		assert.True(t, l.Allow("k"))
	}
	assert.Zero(t, l.Len())
}

func TestLimiter_EvictsIdleKeys(t *testing.T) {
	clk := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLimiter(3, time.Minute, clk.Now)

	for i := 0; i < 20; i++ {
		l.Allow(fmt.Sprintf("client-%d", i))
	}
	assert.Equal(t, 20, l.Len())

	clk.Advance(2 * time.Minute)
	l.Allow("fresh")
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_ConcurrentUse(t *testing.T) {
	l := NewLimiter(10, time.Minute, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("same") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, allowed, 10)
	assert.LessOrEqual(t, allowed, 11)
}
