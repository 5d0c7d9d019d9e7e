// SPDX-License-Identifier: EPL-2.0

// Package capture records a hardware input stream into a WAV file.
//
// A Session selects a device through a device.Host, negotiates its
// configuration and, on Start, binds the stream callback to a wav.Writer
// through a codec.Converter chosen once for the hardware/sink encoding pair.
// The callback never blocks: while the controlling goroutine finalizes the
// sink, buffers are dropped and counted.
//
//	s := capture.NewSession(host, capture.WithLogger(logger))
//	err := s.Record(ctx, "out.wav", 10*time.Second, 3*time.Second)
//
// Record streams for the given duration, pauses the device, waits the drain
// delay so buffers already in flight can land, then closes the stream and
// finalizes the file. The drain is a grace period, not a barrier.
//
// A crash before Stop leaves a file whose size fields were never patched.
package capture
