// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Loop buffers src completely and replays it forever. src is closed once
// it has been read.
func Loop(src Source) (*Looper, error) {
	defer src.Close()

	channels := src.Channels()
	buf := make([]float32, 4096-4096%channels)
	var data []float32

	for {
		n, err := src.ReadSamples(buf)
		data = append(data, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loop: %w", err)
		}
		if n == 0 {
			break
		}
	}

	data = data[:len(data)-len(data)%channels]

	return &Looper{
		data:       data,
		sampleRate: src.SampleRate(),
		channels:   channels,
	}, nil
}

// Looper is a Source that repeats a fixed buffer.
type Looper struct {
	data       []float32
	pos        int
	sampleRate int
	channels   int
}

func (l *Looper) SampleRate() int { return l.sampleRate }
func (l *Looper) Channels() int   { return l.channels }
func (l *Looper) Close() error    { return nil }

func (l *Looper) ReadSamples(dst []float32) (int, error) {
	if len(l.data) == 0 {
		return 0, io.EOF
	}

	n := 0
	for n < len(dst) {
		c := copy(dst[n:], l.data[l.pos:])
		n += c
		l.pos = (l.pos + c) % len(l.data)
	}

	return n, nil
}

// Limit stops a Source after d of audio.
type Limit struct {
	src  Source
	left int // samples, not frames
}

// Take wraps src so that it ends after d.
func Take(src Source, d time.Duration) *Limit {
	frames := int64(d) * int64(src.SampleRate()) / int64(time.Second)
	return &Limit{
		src:  src,
		left: int(frames) * src.Channels(),
	}
}

func (l *Limit) SampleRate() int { return l.src.SampleRate() }
func (l *Limit) Channels() int   { return l.src.Channels() }
func (l *Limit) Close() error    { return l.src.Close() }

func (l *Limit) ReadSamples(dst []float32) (int, error) {
	if l.left <= 0 {
		return 0, io.EOF
	}

	if len(dst) > l.left {
		dst = dst[:l.left]
	}

	n, err := l.src.ReadSamples(dst)
	l.left -= n
	if l.left <= 0 && err == nil {
		err = io.EOF
	}

	return n, err
}
