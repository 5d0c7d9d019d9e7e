// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"fmt"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/codec"
	"github.com/ik5/audcap/formats/wav"
)

// binder builds the device callback for one hardware/sink encoding pair.
// report is called with every failed write.
type binder func(w *wav.Writer, report func(error)) any

// dispatch picks the binder for a hardware encoding and a sink encoding.
// It runs once per recording, before the sink exists.
func dispatch(from, to audio.Encoding) (binder, error) {
	switch from {
	case audio.Int8:
		return bindTo[int8](to)
	case audio.Int16:
		return bindTo[int16](to)
	case audio.Int32:
		return bindTo[int32](to)
	case audio.Float32:
		return bindTo[float32](to)
	}
	return nil, fmt.Errorf("%w: device delivers %s", ErrUnsupportedSampleEncoding, from)
}

func bindTo[T codec.Sample](to audio.Encoding) (binder, error) {
	switch to {
	case audio.Int8:
		return bind[T, int8], nil
	case audio.Int16:
		return bind[T, int16], nil
	case audio.Int32:
		return bind[T, int32], nil
	case audio.Float32:
		return bind[T, float32], nil
	}
	return nil, fmt.Errorf("%w: cannot write %s", ErrUnsupportedSampleEncoding, to)
}

// bind returns a func([]T) that converts each buffer to U and hands it to
// the sink. The conversion buffer is reused across calls.
func bind[T, U codec.Sample](w *wav.Writer, report func(error)) any {
	conv := codec.NewConverter[T, U]()
	var scratch []U

	return func(in []T) {
		scratch = conv.Convert(scratch, in)
		if _, err := wav.Write(w, scratch); err != nil {
			report(err)
		}
	}
}
