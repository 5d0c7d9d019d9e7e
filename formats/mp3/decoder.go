// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audcap/audio"
)

// go-mp3 always produces interleaved stereo, 16-bit little-endian.
const (
	channels       = 2
	bytesPerSample = 2
)

// ErrNotMP3File is returned when no MPEG audio frame can be found.
var ErrNotMP3File = errors.New("not an MP3 file")

// pcmReader is the part of gomp3.Decoder the source needs.
type pcmReader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec     pcmReader
	raw     []byte
	pending []byte // bytes of a sample split across two reads
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	want := len(dst)*bytesPerSample - len(s.pending)
	if cap(s.raw) < len(dst)*bytesPerSample {
		s.raw = make([]byte, len(dst)*bytesPerSample)
	}
	s.raw = append(s.raw[:0], s.pending...)

	n, err := s.dec.Read(s.raw[len(s.pending) : len(s.pending)+want])
	s.raw = s.raw[:len(s.pending)+n]

	whole := len(s.raw) / bytesPerSample
	for i := range whole {
		dst[i] = float32(int16(binary.LittleEndian.Uint16(s.raw[i*2:]))) / 32768
	}
	s.pending = append(s.pending[:0], s.raw[whole*bytesPerSample:]...)

	switch {
	case err == nil:
		return whole, nil
	case errors.Is(err, io.EOF):
		if whole == 0 {
			return 0, io.EOF
		}
		return whole, nil
	default:
		return whole, fmt.Errorf("mp3 read: %w", err)
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotMP3File, err)
	}

	return &source{dec: dec, raw: make([]byte, 8192)}, nil
}
