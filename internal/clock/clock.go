// SPDX-License-Identifier: EPL-2.0

// Package clock is the sleep abstraction shared by the capture session and
// the trajectory controller, so both can run on virtual time in tests.
package clock

import (
	"context"
	"time"
)

// Clock blocks the controlling goroutine for fixed intervals.
type Clock interface {
	// Sleep waits for d or until ctx is done, whichever comes first, and
	// returns ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// Real sleeps on the wall clock.
type Real struct{}

func (Real) Sleep(ctx context.Context, d time.Duration) error {
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
