package stealth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRangePick(t *testing.T) {
	r := Millis(100, 300)
	for i := 0; i < 200; i++ {
		d := r.Pick()
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 300*time.Millisecond)
	}

	assert.Equal(t, 2*time.Second, Seconds(2, 1).Pick(), "inverted range falls back to min")
}

func TestRandomPauserHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := RandomPauser{}.Pause(ctx, Seconds(5, 5))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNopPauserCounts(t *testing.T) {
	p := &NopPauser{}
	assert.NoError(t, p.Pause(context.Background(), Seconds(1, 3)))
	assert.NoError(t, p.Pause(context.Background(), Seconds(1, 3)))
	assert.Equal(t, 2, p.Calls)
}
