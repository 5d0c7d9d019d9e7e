// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/internal/audiotest"
)

type stubDecoder struct{ name string }

func (d *stubDecoder) Decode(io.Reader) (audio.Source, error) {
	return audiotest.Silence(44100, 2, 100), nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	wav := &stubDecoder{name: "wav"}
	ogg := &stubDecoder{name: "ogg"}
	reg.Register("wav", wav)
	reg.Register("OGG", ogg)

	tests := []struct {
		format string
		want   audio.Decoder
		ok     bool
	}{
		{"wav", wav, true},
		{"WAV", wav, true},
		{"ogg", ogg, true},
		{"flac", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			got, ok := reg.Get(tt.format)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Same(t, tt.want, got)
			}
		})
	}
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	ogg := &stubDecoder{name: "ogg"}
	reg.Register("ogg", ogg)

	got, ok := reg.Lookup("assets/music.ogg")
	require.True(t, ok)
	assert.Same(t, ogg, got)

	_, ok = reg.Lookup("assets/music")
	assert.False(t, ok)

	_, ok = reg.Lookup("assets/music.mp3")
	assert.False(t, ok)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	dec := &stubDecoder{name: "test"}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.Register("format", dec)
		}()
		go func() {
			defer wg.Done()
			_, _ = reg.Get("format")
		}()
	}
	wg.Wait()

	got, ok := reg.Get("format")
	require.True(t, ok)
	assert.Same(t, dec, got)
}
