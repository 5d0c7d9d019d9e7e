// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// Resampler converts src to a target sample rate with Catmull-Rom cubic
// interpolation over a four frame window. Channel count is preserved.
// When downsampling, a one-pole low-pass runs on the input first.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames consumed per output frame
	channels int

	// window[0..3] hold frames t-1, t, t+1, t+2; valid tracks which are real.
	window [4][]float32
	valid  [4]bool
	primed bool
	warm   bool
	eof    bool

	phase float64
	frame []float32

	lowpass bool
	alpha   float32
	state   []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	step := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     step,
		channels: channels,
		frame:    make([]float32, channels),
		lowpass:  step > 1,
		alpha:    0.5,
		state:    make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

// pull reads one source frame into r.frame. ok is false once the source is drained.
func (r *Resampler) pull() (ok bool, err error) {
	if r.eof {
		return false, nil
	}

	n, err := r.src.ReadSamples(r.frame)
	if errors.Is(err, io.EOF) {
		r.eof = true
		err = nil
	}
	if err != nil {
		return false, fmt.Errorf("resampler: %w", err)
	}
	if n < r.channels {
		r.eof = true
		return false, nil
	}

	if r.lowpass {
		if !r.warm {
			copy(r.state, r.frame)
			r.warm = true
		}
		for c, v := range r.frame {
			r.state[c] = r.alpha*v + (1-r.alpha)*r.state[c]
			r.frame[c] = r.state[c]
		}
	}

	return true, nil
}

// advance shifts the window by one frame.
func (r *Resampler) advance() error {
	first := r.window[0]
	copy(r.window[:], r.window[1:])
	r.window[3] = first
	copy(r.valid[:], r.valid[1:])

	ok, err := r.pull()
	if err != nil {
		return err
	}
	if ok {
		copy(r.window[3], r.frame)
		r.valid[3] = true
		return nil
	}

	// Hold the last real frame so the tail still interpolates.
	r.valid[3] = false
	copy(r.window[3], r.window[2])
	return nil
}

func (r *Resampler) prime() error {
	r.primed = true
	for i := 1; i < 4; i++ {
		ok, err := r.pull()
		if err != nil {
			return err
		}
		if !ok {
			if i == 1 {
				return io.EOF
			}
			for j := i; j < 4; j++ {
				copy(r.window[j], r.window[i-1])
			}
			break
		}
		copy(r.window[i], r.frame)
		r.valid[i] = true
	}
	copy(r.window[0], r.window[1])

	return nil
}

// ReadSamples produces interleaved frames at the target rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	for written*r.channels < len(dst) {
		for r.phase >= 1 {
			r.phase--
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
		if !r.valid[1] || (!r.valid[2] && r.phase > 0) {
			return written * r.channels, io.EOF
		}

		x := float32(r.phase)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = cubic(r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}

		written++
		r.phase += r.step
	}

	return written * r.channels, nil
}

// cubic is a Catmull-Rom spline through y1..y2 at fraction x in [0,1].
func cubic(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	return ((a0*x+a1)*x+a2)*x + y1
}
