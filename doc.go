// SPDX-License-Identifier: EPL-2.0

// Package audcap records audio input devices to WAV files and plays
// assets back through a moving spatial emitter.
//
// # Capture
//
// A capture.Session bridges a device callback in any of the four
// supported sample encodings (i8, i16, i32, f32) to a streaming WAV
// writer. The callback never blocks: if the writer is busy the buffer is
// dropped and counted. Record is the fixed-duration policy:
//
//	host, _ := portaudio.Open()
//	defer host.Close()
//
//	stats, err := audcap.Record(ctx, host, "recorded.wav", 10*time.Second, 3*time.Second)
//
// # Playback
//
// Decoders for WAV, MP3, Ogg Vorbis and AIFF produce audio.Source values
// that a playback.Session queues on a beep speaker:
//
//	src, _ := audcap.Open("assets/music.ogg")
//	out, _ := speaker.Open(44100, 100*time.Millisecond)
//	s := playback.NewSession(out)
//	s.Append(src)
//	_ = s.SleepUntilEnd(ctx)
//
// # Spatial trajectory
//
// A trajectory.Controller moves the emitter of a playback.SpatialSession
// from the centre to +distance, across to -distance and back, once per
// repeat, updating the position every tick.
//
// See the subpackages for details.
package audcap
