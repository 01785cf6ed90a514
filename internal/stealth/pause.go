// Jittered pauses between browser actions.
// Every state-changing action (navigate, click, scroll) is followed by a pause
// before the page is read again.

package stealth

import (
	"context"
	"math/rand"
	"time"
)

// Range is an inclusive [Min, Max] pause window.
type Range struct {
	Min time.Duration `yaml:"min"`
	Max time.Duration `yaml:"max"`
}

func Seconds(min, max int) Range {
	return Range{Min: time.Duration(min) * time.Second, Max: time.Duration(max) * time.Second}
}

func Millis(min, max int) Range {
	return Range{Min: time.Duration(min) * time.Millisecond, Max: time.Duration(max) * time.Millisecond}
}

// Pick returns a random duration inside the range.
func (r Range) Pick() time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + time.Duration(rand.Int63n(int64(r.Max-r.Min)+1))
}

// Pauser blocks between browser actions.
type Pauser interface {
	Pause(ctx context.Context, r Range) error
}

// RandomPauser sleeps for a random duration inside the requested range.
type RandomPauser struct{}

func (RandomPauser) Pause(ctx context.Context, r Range) error {
	d := r.Pick()
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NopPauser never sleeps. It counts how often it was asked to.
type NopPauser struct {
	Calls int
}

func (p *NopPauser) Pause(ctx context.Context, r Range) error {
	p.Calls++
	return ctx.Err()
}
