// SPDX-License-Identifier: EPL-2.0

// Package playback plays audio.Sources through github.com/gopxl/beep/v2.
//
// A Session is a queue: Append adds a source, SleepUntilEnd waits for the
// queue to drain. A SpatialSession additionally pans a mono mix of its
// sources by the position of a moving emitter, which is what the trajectory
// controller drives:
//
//	out, _ := speaker.Open(44100, 100*time.Millisecond)
//	s := playback.NewSpatialSession(out, spatial.Vec3{}, spatial.Vec3{X: -1}, spatial.Vec3{X: 1})
//	s.Append(src)
//	s.SetEmitterPosition(spatial.Vec3{X: 2})
//	_ = s.SleepUntilEnd(ctx)
//
// Sources whose rate differs from the output are resampled on Append.
package playback
