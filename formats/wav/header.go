// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"

	"github.com/ik5/audcap/audio"
)

// SampleFormat is the numeric interpretation tag stored in the fmt chunk.
type SampleFormat uint16

const (
	FormatInt   SampleFormat = 1 // WAVE_FORMAT_PCM
	FormatFloat SampleFormat = 3 // WAVE_FORMAT_IEEE_FLOAT
)

func (f SampleFormat) String() string {
	switch f {
	case FormatInt:
		return "int"
	case FormatFloat:
		return "float"
	default:
		return fmt.Sprintf("SampleFormat(%d)", uint16(f))
	}
}

// Header describes the sample stream of a WAV file. It is written before any
// sample data and its format fields never change afterwards.
type Header struct {
	Channels      uint16
	SampleRate    uint32
	BitsPerSample uint16
	Format        SampleFormat
}

// HeaderFor derives the header for a negotiated stream configuration.
func HeaderFor(cfg audio.StreamConfig) (Header, error) {
	if err := cfg.Validate(); err != nil {
		return Header{}, err
	}
	if !cfg.Encoding.Supported() {
		return Header{}, fmt.Errorf("%w: %s", audio.ErrUnsupportedSampleEncoding, cfg.Encoding)
	}

	h := Header{
		Channels:      uint16(cfg.Channels),
		SampleRate:    uint32(cfg.SampleRate),
		BitsPerSample: uint16(cfg.Encoding.BitsPerSample()),
		Format:        FormatInt,
	}
	if cfg.Encoding.IsFloat() {
		h.Format = FormatFloat
	}

	return h, nil
}

// Encoding maps the header back to the sample encoding it declares.
func (h Header) Encoding() audio.Encoding {
	switch {
	case h.Format == FormatFloat && h.BitsPerSample == 32:
		return audio.Float32
	case h.Format == FormatFloat && h.BitsPerSample == 64:
		return audio.Float64
	case h.Format != FormatInt:
		return audio.EncodingUnknown
	}

	switch h.BitsPerSample {
	case 8:
		// stored unsigned on disk; the writer and decoder apply the offset
		return audio.Int8
	case 16:
		return audio.Int16
	case 24:
		return audio.Int24
	case 32:
		return audio.Int32
	default:
		return audio.EncodingUnknown
	}
}

// StreamConfig is the inverse of HeaderFor.
func (h Header) StreamConfig() audio.StreamConfig {
	return audio.StreamConfig{
		Channels:   int(h.Channels),
		SampleRate: int(h.SampleRate),
		Encoding:   h.Encoding(),
	}
}

func (h Header) String() string {
	return fmt.Sprintf("%dch %dHz %d-bit %s", h.Channels, h.SampleRate, h.BitsPerSample, h.Format)
}
