// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audcap/audio"
)

// ErrNotVorbisFile is returned when the stream has no Vorbis headers.
var ErrNotVorbisFile = errors.New("not an Ogg Vorbis file")

// oggReader is the part of oggvorbis.Reader the source needs. Read returns
// a count of values, always a multiple of Channels.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec oggReader
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.dec.Channels() }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	// oggvorbis only ever fills whole frames.
	whole := len(dst) - len(dst)%s.dec.Channels()
	if whole == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst[:whole])
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	default:
		return n, fmt.Errorf("vorbis read: %w", err)
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}
	if dec.Channels() < 1 {
		return nil, ErrNotVorbisFile
	}

	return &source{dec: dec}, nil
}
