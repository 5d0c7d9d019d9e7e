// SPDX-License-Identifier: EPL-2.0

package trajectory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audcap/internal/devicetest"
	"github.com/ik5/audcap/spatial"
)

type recorder struct {
	mu        sync.Mutex
	positions []spatial.Vec3
}

func (r *recorder) SetEmitterPosition(p spatial.Vec3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions = append(r.positions, p)
}

func TestController_Run(t *testing.T) {
	t.Parallel()

	plan, err := NewPlan(5*time.Second, 10*time.Millisecond, 5.0, 5)
	require.NoError(t, err)

	clk := devicetest.NewClock()
	rec := &recorder{}
	require.NoError(t, NewController(plan, rec, WithClock(clk)).Run(context.Background()))

	require.Len(t, rec.positions, plan.Ticks())
	assert.Equal(t, plan.Duration(), clk.Now())
	for _, d := range clk.Sleeps() {
		require.Equal(t, 10*time.Millisecond, d)
	}

	// every repeat passes +5, -5 and returns to the start
	for r := range 5 {
		base := r * 2000
		assert.InDelta(t, 5.0, rec.positions[base+499].X, 0.01)
		assert.InDelta(t, -5.0, rec.positions[base+1499].X, 0.01)
		assert.InDelta(t, 0.0, rec.positions[base+1999].X, 0.01)
	}
}

func TestController_SleepsBeforeEachUpdate(t *testing.T) {
	t.Parallel()

	plan, err := NewPlan(20*time.Millisecond, 10*time.Millisecond, 1, 1)
	require.NoError(t, err)

	clk := devicetest.NewClock()
	var at []time.Duration
	emitter := emitterFunc(func(spatial.Vec3) { at = append(at, clk.Now()) })

	require.NoError(t, NewController(plan, emitter, WithClock(clk), WithStart(spatial.Vec3{Y: 1})).Run(context.Background()))

	want := []time.Duration{10, 20, 30, 40, 50, 60, 70, 80}
	for i := range want {
		want[i] *= time.Millisecond
	}
	assert.Equal(t, want, at)
}

type emitterFunc func(spatial.Vec3)

func (f emitterFunc) SetEmitterPosition(p spatial.Vec3) { f(p) }

// stopAfter cancels the context once n ticks have been slept.
type stopAfter struct {
	n      int
	cancel context.CancelFunc
}

func (s *stopAfter) Sleep(ctx context.Context, _ time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.n--
	if s.n < 0 {
		s.cancel()
		return ctx.Err()
	}
	return nil
}

func TestController_Cancel(t *testing.T) {
	t.Parallel()

	plan, err := NewPlan(time.Second, 10*time.Millisecond, 1, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	err = NewController(plan, rec, WithClock(&stopAfter{n: 3, cancel: cancel})).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, rec.positions, 3)
}
