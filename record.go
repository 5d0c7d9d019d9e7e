// SPDX-License-Identifier: EPL-2.0

package audcap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/capture"
	"github.com/ik5/audcap/device"
	"github.com/ik5/audcap/formats/aiff"
	"github.com/ik5/audcap/formats/mp3"
	"github.com/ik5/audcap/formats/vorbis"
	"github.com/ik5/audcap/formats/wav"
)

// ErrUnknownFormat is returned by Open for file extensions with no decoder.
var ErrUnknownFormat = errors.New("unknown audio format")

// Record captures d of audio from host into a WAV file at path, waits drain
// for in-flight buffers and finalizes the file. The returned stats are
// valid whenever a file was written, even when err is not nil.
func Record(ctx context.Context, host device.Host, path string, d, drain time.Duration, opts ...capture.Option) (capture.Stats, error) {
	s := capture.NewSession(host, opts...)
	err := s.Record(ctx, path, d, drain)
	return s.Stats(), err
}

// Decoders returns a registry with every supported container registered
// under its usual file extensions.
func Decoders() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})

	return reg
}

// Open decodes the file at path, picking the decoder from its extension.
// The returned Source owns the file and closes it on Close.
func Open(path string) (audio.Source, error) {
	dec, ok := Decoders().Lookup(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	src, err := dec.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return &fileSource{Source: src, f: f}, nil
}

type fileSource struct {
	audio.Source
	f *os.File
}

func (s *fileSource) Close() error {
	return errors.Join(s.Source.Close(), s.f.Close())
}
