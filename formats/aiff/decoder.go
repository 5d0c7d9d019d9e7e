// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audcap/audio"
)

// pcmReader is the part of aiff.Decoder the source needs.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type source struct {
	dec        pcmReader
	sampleRate int
	channels   int
	ints       goaudio.IntBuffer
	toFloat    func(int) float32
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.ints.Data) < len(dst) {
		s.ints.Data = make([]int, len(dst))
	}
	s.ints.Data = s.ints.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(&s.ints)
	for i, v := range s.ints.Data[:n] {
		dst[i] = s.toFloat(v)
	}

	switch {
	case n == 0 && (err == nil || errors.Is(err, io.EOF)):
		return 0, io.EOF
	case err != nil && !errors.Is(err, io.EOF):
		return n, fmt.Errorf("aiff read: %w", err)
	}

	return n, nil
}

// normalizer returns the int-to-float mapping for a bit depth. AIFF samples
// are signed big-endian; the casts reinterpret whatever go-audio hands back
// as two's complement of that width.
func normalizer(bits int) (func(int) float32, error) {
	switch bits {
	case 8:
		return func(v int) float32 { return float32(int8(uint8(v))) / 128 }, nil
	case 16:
		return func(v int) float32 { return float32(int16(uint16(v))) / 32768 }, nil
	case 24:
		return func(v int) float32 { return float32(int32(uint32(v)<<8)>>8) / (1 << 23) }, nil
	case 32:
		return func(v int) float32 { return float32(float64(int32(uint32(v))) / (1 << 31)) }, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bits)
}

// Decoder reads uncompressed 8, 16, 24 and 32-bit AIFF.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	format := dec.Format()
	if format == nil || format.NumChannels < 1 || format.SampleRate < 1 {
		return nil, ErrUnsupportedAiffLayout
	}

	toFloat, err := normalizer(int(dec.BitDepth))
	if err != nil {
		return nil, err
	}

	return &source{
		dec:        dec,
		sampleRate: format.SampleRate,
		channels:   format.NumChannels,
		ints:       goaudio.IntBuffer{Format: format, Data: make([]int, 4096)},
		toFloat:    toFloat,
	}, nil
}
