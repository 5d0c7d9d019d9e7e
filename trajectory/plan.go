// SPDX-License-Identifier: EPL-2.0

package trajectory

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"time"

	"github.com/ik5/audcap/spatial"
)

// ErrInvalidPlan is returned by NewPlan for parameters that yield no steps.
var ErrInvalidPlan = errors.New("invalid trajectory plan")

// Segment is a run of Steps ticks moving in the direction of Sign (+1 or -1).
type Segment struct {
	Sign  float64
	Steps int
}

// Plan is a back-and-forth sweep along the X axis. One repeat moves out by
// the full distance, back through the start to the opposite extreme, and
// back to the start: n, 2n and n ticks.
type Plan struct {
	duration time.Duration
	tick     time.Duration
	distance float64
	repeats  int
	numSteps int
	step     float64
}

// NewPlan derives a plan that moves distance*tick/duration per tick for
// duration/tick ticks (rounded down) in the first segment of each repeat.
func NewPlan(duration, tick time.Duration, distance float64, repeats int) (Plan, error) {
	switch {
	case tick <= 0:
		return Plan{}, fmt.Errorf("%w: tick %s", ErrInvalidPlan, tick)
	case duration < tick:
		return Plan{}, fmt.Errorf("%w: duration %s shorter than tick %s", ErrInvalidPlan, duration, tick)
	case repeats < 1:
		return Plan{}, fmt.Errorf("%w: %d repeats", ErrInvalidPlan, repeats)
	case math.IsNaN(distance) || math.IsInf(distance, 0):
		return Plan{}, fmt.Errorf("%w: distance %v", ErrInvalidPlan, distance)
	}

	// Only the count is truncated; a partial tick shortens the sweep.
	ratio := float64(duration) / float64(tick)
	n := int(ratio)

	return Plan{
		duration: duration,
		tick:     tick,
		distance: distance,
		repeats:  repeats,
		numSteps: n,
		step:     distance / ratio,
	}, nil
}

func (p Plan) NumSteps() int            { return p.numSteps }
func (p Plan) StepDistance() float64    { return p.step }
func (p Plan) Tick() time.Duration      { return p.tick }
func (p Plan) Repeats() int             { return p.repeats }
func (p Plan) Distance() float64        { return p.distance }
func (p Plan) SweepTime() time.Duration { return p.duration }

// Segments lists the motion of the whole plan in order.
func (p Plan) Segments() []Segment {
	out := make([]Segment, 0, 3*p.repeats)
	for range p.repeats {
		out = append(out,
			Segment{Sign: 1, Steps: p.numSteps},
			Segment{Sign: -1, Steps: 2 * p.numSteps},
			Segment{Sign: 1, Steps: p.numSteps},
		)
	}
	return out
}

// Ticks is the total number of position updates.
func (p Plan) Ticks() int { return 4 * p.numSteps * p.repeats }

// Duration is the wall time the plan takes at one update per tick.
func (p Plan) Duration() time.Duration { return time.Duration(p.Ticks()) * p.tick }

// Positions yields the tick index and the emitter position after each
// update, starting from start. Positions accumulate step by step, so float
// drift over many ticks is not corrected.
func (p Plan) Positions(start spatial.Vec3) iter.Seq2[int, spatial.Vec3] {
	return func(yield func(int, spatial.Vec3) bool) {
		pos, i := start, 0
		for _, seg := range p.Segments() {
			for range seg.Steps {
				pos.X += seg.Sign * p.step
				if !yield(i, pos) {
					return
				}
				i++
			}
		}
	}
}
