// SPDX-License-Identifier: EPL-2.0

// Package trajectory moves a sound emitter back and forth on a fixed tick.
//
// A Plan is pure: it derives step = distance / (duration / tick) and
// num_steps = duration / tick rounded down, and enumerates the positions of every repeat
// (+num_steps, -2*num_steps, +num_steps). A Controller replays a Plan on a
// clock.Clock, so tests can run it on virtual time.
//
//	plan, _ := trajectory.NewPlan(5*time.Second, 10*time.Millisecond, 5, 5)
//	err := trajectory.NewController(plan, session).Run(ctx)
package trajectory
