// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"math"

	"github.com/ik5/audcap/audio"
)

// Sample is a hardware sample type the pipeline can carry.
type Sample interface {
	int8 | int16 | int32 | float32
}

// EncodingOf maps a Go sample type to its audio.Encoding.
func EncodingOf[T Sample]() audio.Encoding {
	var zero T
	switch any(zero).(type) {
	case int8:
		return audio.Int8
	case int16:
		return audio.Int16
	case int32:
		return audio.Int32
	case float32:
		return audio.Float32
	}
	return audio.EncodingUnknown
}

type mode uint8

const (
	identity mode = iota
	widen
	narrow
	intToFloat
	floatToInt
)

// Converter rescales samples of type T into type U.
type Converter[T, U Sample] struct {
	mode  mode
	scale float64 // multiplier applied on the float64 intermediate
	lo    float64 // saturation bounds for integer targets
	hi    float64
}

// NewConverter resolves the conversion rule for T -> U.
func NewConverter[T, U Sample]() Converter[T, U] {
	from, to := EncodingOf[T](), EncodingOf[U]()

	c := Converter[T, U]{}
	fullScale := func(e audio.Encoding) float64 {
		return math.Ldexp(1, e.BitsPerSample()-1)
	}

	switch {
	case from == to:
		c.mode = identity
	case from.IsFloat():
		c.mode = floatToInt
		c.scale = fullScale(to)
		c.lo, c.hi = -c.scale, c.scale-1
	case to.IsFloat():
		c.mode = intToFloat
		c.scale = 1 / fullScale(from)
	case from.BitsPerSample() < to.BitsPerSample():
		c.mode = widen
		c.scale = fullScale(to) / fullScale(from)
	default:
		c.mode = narrow
		c.scale = fullScale(to) / fullScale(from)
	}

	return c
}

// Convert writes len(src) converted samples into dst, growing it only when
// its capacity is too small, and returns the filled slice.
func (c Converter[T, U]) Convert(dst []U, src []T) []U {
	if cap(dst) < len(src) {
		dst = make([]U, len(src))
	}
	dst = dst[:len(src)]

	switch c.mode {
	case identity:
		for i, v := range src {
			dst[i] = U(v)
		}
	case widen:
		for i, v := range src {
			dst[i] = U(float64(v) * c.scale)
		}
	case narrow:
		for i, v := range src {
			dst[i] = U(math.Floor(float64(v) * c.scale))
		}
	case intToFloat:
		for i, v := range src {
			dst[i] = U(float64(v) * c.scale)
		}
	case floatToInt:
		for i, v := range src {
			x := float64(v)
			if math.IsNaN(x) {
				x = 0
			}
			x = math.Round(min(max(x, -1), 1) * c.scale)
			dst[i] = U(min(max(x, c.lo), c.hi))
		}
	}

	return dst
}

// Convert is a one-shot helper for callers that do not keep a Converter.
func Convert[T, U Sample](dst []U, src []T) []U {
	return NewConverter[T, U]().Convert(dst, src)
}
