// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"strings"
	"time"
)

// Encoding is the bit layout of a single hardware sample.
//
// Only Int8, Int16, Int32 and Float32 can flow through the capture pipeline.
// The remaining tags exist so a device can report what it actually delivers
// and the session can refuse it explicitly.
type Encoding uint8

const (
	EncodingUnknown Encoding = iota
	Int8
	Int16
	Int32
	Float32

	Uint8
	Int24
	Float64
)

var encodingNames = map[Encoding]string{
	EncodingUnknown: "unknown",
	Int8:            "i8",
	Int16:           "i16",
	Int32:           "i32",
	Float32:         "f32",
	Uint8:           "u8",
	Int24:           "i24",
	Float64:         "f64",
}

func (e Encoding) String() string {
	if name, ok := encodingNames[e]; ok {
		return name
	}
	return fmt.Sprintf("Encoding(%d)", uint8(e))
}

// Supported reports whether samples of this encoding can be converted and written.
func (e Encoding) Supported() bool {
	switch e {
	case Int8, Int16, Int32, Float32:
		return true
	default:
		return false
	}
}

// BitsPerSample returns the width of one sample, or 0 for EncodingUnknown.
func (e Encoding) BitsPerSample() int {
	switch e {
	case Int8, Uint8:
		return 8
	case Int16:
		return 16
	case Int24:
		return 24
	case Int32, Float32:
		return 32
	case Float64:
		return 64
	default:
		return 0
	}
}

func (e Encoding) IsFloat() bool {
	return e == Float32 || e == Float64
}

// ParseEncoding accepts the short names printed by Encoding.String
// plus a few common aliases ("s16", "float32", ...).
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "i8", "s8", "int8":
		return Int8, nil
	case "i16", "s16", "int16":
		return Int16, nil
	case "i32", "s32", "int32":
		return Int32, nil
	case "f32", "float", "float32":
		return Float32, nil
	case "u8", "uint8":
		return Uint8, nil
	case "i24", "s24", "int24":
		return Int24, nil
	case "f64", "float64":
		return Float64, nil
	}

	return EncodingUnknown, fmt.Errorf("%w: %q", ErrUnsupportedSampleEncoding, s)
}

// StreamConfig is the negotiated shape of a hardware stream. It is fixed for
// the lifetime of a capture session.
type StreamConfig struct {
	Channels   int
	SampleRate int
	Encoding   Encoding
}

func (c StreamConfig) Validate() error {
	if c.Channels <= 0 || c.SampleRate <= 0 {
		return fmt.Errorf("%w: %d channel(s) at %d Hz", ErrInvalidStreamConfig, c.Channels, c.SampleRate)
	}
	return nil
}

// BytesPerFrame is the size of one interleaved frame in the declared encoding.
func (c StreamConfig) BytesPerFrame() int {
	return c.Channels * c.Encoding.BitsPerSample() / 8
}

// Duration converts a frame count to wall time at the configured rate.
func (c StreamConfig) Duration(frames int64) time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// Frames converts a duration to a whole number of frames, rounding down.
func (c StreamConfig) Frames(d time.Duration) int64 {
	return int64(d) * int64(c.SampleRate) / int64(time.Second)
}

func (c StreamConfig) String() string {
	return fmt.Sprintf("%dch %dHz %s", c.Channels, c.SampleRate, c.Encoding)
}
