// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audcap/internal/audiotest"
)

func drain(t *testing.T, src Source, size int) []float32 {
	t.Helper()

	var out []float32
	buf := make([]float32, size)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
	}
}

func TestResampler_Rates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src, dst int
		channels int
	}{
		{"upsample 8k to 16k", 8000, 16000, 1},
		{"downsample 48k to 16k", 48000, 16000, 1},
		{"identity stereo", 44100, 44100, 2},
		{"downsample 44.1k to 8k stereo", 44100, 8000, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			frames := tt.src / 10
			r := NewResampler(audiotest.Constant(tt.src, tt.channels, frames, 0.5), tt.dst)
			assert.Equal(t, tt.dst, r.SampleRate())
			assert.Equal(t, tt.channels, r.Channels())

			out := drain(t, r, 256*tt.channels)
			gotFrames := len(out) / tt.channels
			wantFrames := tt.dst / 10
			assert.InDelta(t, wantFrames, gotFrames, 2)

			for i, v := range out {
				if !assert.InDelta(t, 0.5, v, 0.001, "sample %d", i) {
					break
				}
			}
		})
	}
}

func TestResampler_IdentityKeepsSamples(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.Ramp(8000, 1, 50), 8000)
	out := drain(t, r, 16)

	require.Len(t, out, 50)
	for i, v := range out {
		assert.InDelta(t, float32(i)/50, v, 1e-6)
	}
}

func TestResampler_InvalidDstSize(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.Silence(8000, 2, 10), 16000)
	_, err := r.ReadSamples(make([]float32, 3))
	assert.ErrorIs(t, err, ErrInvalidDstSize)
}

func TestResampler_EmptySource(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.Silence(8000, 1, 0), 16000)
	n, err := r.ReadSamples(make([]float32, 8))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestCubic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, float32(1), cubic(0, 1, 2, 3, 0))
	assert.Equal(t, float32(2), cubic(0, 1, 2, 3, 1))
	assert.InDelta(t, 2.25, cubic(1, 2, 3, 4, 0.25), 1e-6)
}
