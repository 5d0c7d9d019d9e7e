// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/device"
	"github.com/ik5/audcap/formats/wav"
)

var pipelineEncodings = []audio.Encoding{audio.Int8, audio.Int16, audio.Int32, audio.Float32}

func TestDispatch_AllPairs(t *testing.T) {
	t.Parallel()

	for _, from := range pipelineEncodings {
		for _, to := range pipelineEncodings {
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				t.Parallel()

				bind, err := dispatch(from, to)
				require.NoError(t, err)

				h, err := wav.HeaderFor(audio.StreamConfig{Channels: 1, SampleRate: 8000, Encoding: to})
				require.NoError(t, err)
				w, err := wav.Create(filepath.Join(t.TempDir(), "pair.wav"), h)
				require.NoError(t, err)

				var failures []error
				cb := bind(w, func(err error) { failures = append(failures, err) })
				assert.Equal(t, from, device.CallbackEncoding(cb))

				switch fn := cb.(type) {
				case func([]int8):
					fn(make([]int8, 16))
				case func([]int16):
					fn(make([]int16, 16))
				case func([]int32):
					fn(make([]int32, 16))
				case func([]float32):
					fn(make([]float32, 16))
				}

				assert.Empty(t, failures)
				assert.Equal(t, int64(16), w.Frames())
				require.NoError(t, w.Finalize())
			})
		}
	}
}

func TestDispatch_Unsupported(t *testing.T) {
	t.Parallel()

	for _, pair := range [][2]audio.Encoding{
		{audio.Uint8, audio.Int16},
		{audio.Int24, audio.Int16},
		{audio.Float64, audio.Float32},
		{audio.EncodingUnknown, audio.Float32},
		{audio.Int16, audio.Uint8},
		{audio.Float32, audio.Int24},
	} {
		_, err := dispatch(pair[0], pair[1])
		assert.ErrorIs(t, err, ErrUnsupportedSampleEncoding, "%s -> %s", pair[0], pair[1])
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "streaming", Streaming.String())
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "State(42)", State(42).String())
}
