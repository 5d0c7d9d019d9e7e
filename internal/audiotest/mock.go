// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds deterministic audio.Source fakes for tests.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the value of channel ch at frame index i.
type Waveform func(i, ch int) float32

// Source generates a fixed number of frames from a Waveform.
// It satisfies audio.Source without importing it.
type Source struct {
	rate     int
	channels int
	frames   int
	pos      int
	wave     Waveform
	closed   bool
}

func New(rate, channels, frames int, wave Waveform) *Source {
	return &Source{
		rate:     rate,
		channels: channels,
		frames:   frames,
		wave:     wave,
	}
}

// Silence is all zeros.
func Silence(rate, channels, frames int) *Source {
	return Constant(rate, channels, frames, 0)
}

func Constant(rate, channels, frames int, v float32) *Source {
	return New(rate, channels, frames, func(int, int) float32 { return v })
}

// Sine is the same tone of freq Hz on every channel.
func Sine(rate, channels, frames int, freq float64) *Source {
	return New(rate, channels, frames, func(i, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(rate)))
	})
}

// Ramp counts frames: frame i carries i/frames on every channel.
func Ramp(rate, channels, frames int) *Source {
	return New(rate, channels, frames, func(i, _ int) float32 {
		return float32(i) / float32(frames)
	})
}

func (s *Source) SampleRate() int { return s.rate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) Closed() bool    { return s.closed }

func (s *Source) Close() error {
	s.closed = true
	return nil
}

// Rewind starts the waveform over.
func (s *Source) Rewind() { s.pos = 0 }

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.pos >= s.frames {
		return 0, io.EOF
	}

	n := min(len(dst)/s.channels, s.frames-s.pos)
	for f := range n {
		for ch := range s.channels {
			dst[f*s.channels+ch] = s.wave(s.pos+f, ch)
		}
	}
	s.pos += n

	if s.pos >= s.frames {
		return n * s.channels, io.EOF
	}
	return n * s.channels, nil
}
