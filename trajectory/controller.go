// SPDX-License-Identifier: EPL-2.0

package trajectory

import (
	"context"
	"log/slog"

	"github.com/ik5/audcap/internal/clock"
	"github.com/ik5/audcap/spatial"
)

// Emitter receives position updates. playback.SpatialSession implements it.
type Emitter interface {
	SetEmitterPosition(spatial.Vec3)
}

// Controller applies a Plan to an Emitter, sleeping one tick before each
// update.
type Controller struct {
	plan    Plan
	emitter Emitter
	start   spatial.Vec3
	clock   clock.Clock
	log     *slog.Logger
}

type Option func(*Controller)

// WithStart sets the position the first step moves from.
func WithStart(p spatial.Vec3) Option {
	return func(c *Controller) { c.start = p }
}

func WithClock(cl clock.Clock) Option {
	return func(c *Controller) { c.clock = cl }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func NewController(plan Plan, emitter Emitter, opts ...Option) *Controller {
	c := &Controller{
		plan:    plan,
		emitter: emitter,
		clock:   clock.Real{},
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run drives the emitter through the whole plan. It returns ctx.Err() if
// cancelled between ticks; the emitter keeps its last position.
func (c *Controller) Run(ctx context.Context) error {
	c.log.Info("trajectory started",
		"steps", c.plan.NumSteps(),
		"step_distance", c.plan.StepDistance(),
		"repeats", c.plan.Repeats(),
		"duration", c.plan.Duration())

	perRepeat := 4 * c.plan.NumSteps()
	var last spatial.Vec3

	for i, pos := range c.plan.Positions(c.start) {
		if err := c.clock.Sleep(ctx, c.plan.Tick()); err != nil {
			c.log.Info("trajectory cancelled", "tick", i, "position", last)
			return err
		}
		c.emitter.SetEmitterPosition(pos)
		last = pos

		if (i+1)%perRepeat == 0 {
			c.log.Debug("trajectory repeat done", "repeat", (i+1)/perRepeat, "position", pos)
		}
	}

	c.log.Info("trajectory finished", "position", last)
	return nil
}
