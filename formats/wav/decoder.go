// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audcap/audio"
)

// pcmReader is the part of gowav.Decoder the source needs, split out for tests.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type wavSource struct {
	dec        pcmReader
	header     Header
	sampleRate int
	channels   int
	ints       *goaudio.IntBuffer
	toFloat    func(v int) float32
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(s.ints.Data) < len(dst) {
		s.ints.Data = make([]int, len(dst))
	}
	s.ints.Data = s.ints.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.ints)
	for i, v := range s.ints.Data[:n] {
		dst[i] = s.toFloat(v)
	}

	switch {
	case n == 0 && err == nil:
		return 0, io.EOF
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	case err != nil:
		return n, fmt.Errorf("wav read: %w", err)
	}

	return n, nil
}

// sampleToFloat normalises decoded ints for the declared encoding. The casts
// through unsigned types make the result independent of whether go-audio
// hands back the raw bytes signed or unsigned.
func sampleToFloat(enc audio.Encoding) (func(int) float32, error) {
	switch enc {
	case audio.Int8:
		return func(v int) float32 { return float32(int8(uint8(v)^0x80)) / 128 }, nil
	case audio.Int16:
		return func(v int) float32 { return float32(int16(uint16(v))) / 32768 }, nil
	case audio.Int24:
		return func(v int) float32 { return float32(v) / (1 << 23) }, nil
	case audio.Int32:
		return func(v int) float32 { return float32(float64(int32(uint32(v))) / (1 << 31)) }, nil
	case audio.Float32:
		return func(v int) float32 { return math.Float32frombits(uint32(v)) }, nil
	}
	return nil, fmt.Errorf("%w: %s", audio.ErrUnsupportedSampleEncoding, enc)
}

// Decoder turns a WAV stream into an audio.Source. 8, 16, 24 and 32-bit
// integer PCM and 32-bit float data are supported.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	h, err := readHeader(dec)
	if err != nil {
		return nil, err
	}

	toFloat, err := sampleToFloat(h.Encoding())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	return &wavSource{
		dec:        dec,
		header:     h,
		sampleRate: int(h.SampleRate),
		channels:   int(h.Channels),
		ints:       &goaudio.IntBuffer{Format: dec.Format(), Data: make([]int, 4096)},
		toFloat:    toFloat,
	}, nil
}

func readHeader(dec *gowav.Decoder) (Header, error) {
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return Header{}, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if dec.NumChans == 0 || dec.SampleRate == 0 || dec.BitDepth == 0 {
		return Header{}, ErrNotWavFile
	}

	return Header{
		Channels:      dec.NumChans,
		SampleRate:    dec.SampleRate,
		BitsPerSample: dec.BitDepth,
		Format:        SampleFormat(dec.WavAudioFormat),
	}, nil
}

// Info summarises a finished WAV file.
type Info struct {
	Header   Header
	Frames   int64
	Duration time.Duration
}

// ReadInfo reads the header and data size of the WAV file at path.
func ReadInfo(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("wav info: %w", err)
	}
	defer f.Close()

	dec := gowav.NewDecoder(f)
	h, err := readHeader(dec)
	if err != nil {
		return Info{}, err
	}
	if err := dec.FwdToPCM(); err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	frameBytes := int64(h.Channels) * int64(h.BitsPerSample) / 8
	frames := int64(dec.PCMSize) / frameBytes

	return Info{
		Header:   h,
		Frames:   frames,
		Duration: h.StreamConfig().Duration(frames),
	}, nil
}
