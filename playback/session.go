// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gopxl/beep/v2"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/spatial"
)

// Session is a queue of sources played back to back on an Output. It is
// itself the beep.Streamer handed to the output, and plays silence while
// the queue is empty.
type Session struct {
	rate int
	mono bool
	log  *slog.Logger

	// gains are float64 bits, read on the output goroutine.
	left, right atomic.Uint64

	mu      sync.Mutex
	queue   []audio.Source
	cur     audio.Source
	buf     []float32
	drained chan struct{} // closed while nothing is queued or playing
	idle    bool
	played  int64
	lastErr error
}

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// NewSession starts streaming into out.
func NewSession(out Output, opts ...Option) *Session {
	s := newSession(int(out.SampleRate()), false, opts)
	out.Play(s)
	return s
}

func newSession(rate int, mono bool, opts []Option) *Session {
	s := &Session{
		rate:    rate,
		mono:    mono,
		log:     slog.New(slog.DiscardHandler),
		drained: make(chan struct{}),
		idle:    true,
	}
	close(s.drained)
	s.setGains(1, 1)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) setGains(l, r float64) {
	s.left.Store(math.Float64bits(l))
	s.right.Store(math.Float64bits(r))
}

func (s *Session) gains() (float64, float64) {
	return math.Float64frombits(s.left.Load()), math.Float64frombits(s.right.Load())
}

// Append queues src after everything already queued. The session takes
// ownership and closes src once it has played.
func (s *Session) Append(src audio.Source) {
	if src.SampleRate() != s.rate {
		src = audio.NewResampler(src, s.rate)
	}
	if s.mono || src.Channels() > 2 {
		src = audio.NewMonoMixer(src)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = append(s.queue, src)
	if s.idle {
		s.idle = false
		s.drained = make(chan struct{})
	}
}

// Len is the number of sources queued, including the one playing.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.queue)
	if s.cur != nil {
		n++
	}
	return n
}

// Played is the number of frames streamed from sources so far.
func (s *Session) Played() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.played
}

// LastError is the last read error a source ended with.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// SleepUntilEnd blocks until every queued source has played.
func (s *Session) SleepUntilEnd(ctx context.Context) error {
	s.mu.Lock()
	drained := s.drained
	s.mu.Unlock()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drops every queued source.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cur != nil {
		s.finish(nil)
	}
	for _, src := range s.queue {
		_ = src.Close()
	}
	s.queue = nil
	s.markIdle()
}

// Stream implements beep.Streamer.
func (s *Session) Stream(samples [][2]float64) (int, bool) {
	gl, gr := s.gains()

	s.mu.Lock()
	defer s.mu.Unlock()

	filled := 0
	for filled < len(samples) {
		if s.cur == nil {
			if len(s.queue) == 0 {
				break
			}
			s.cur, s.queue = s.queue[0], s.queue[1:]
		}

		ch := s.cur.Channels()
		want := (len(samples) - filled) * ch
		if cap(s.buf) < want {
			s.buf = make([]float32, want)
		}
		buf := s.buf[:want]

		n, err := s.cur.ReadSamples(buf)
		frames := n / ch
		for i := range frames {
			l := float64(buf[i*ch])
			r := l
			if ch == 2 {
				r = float64(buf[i*ch+1])
			}
			samples[filled+i] = [2]float64{l * gl, r * gr}
		}
		filled += frames
		s.played += int64(frames)

		if err != nil || n == 0 {
			s.finish(err)
		}
	}

	clear(samples[filled:])
	if s.cur == nil && len(s.queue) == 0 {
		s.markIdle()
	}

	return len(samples), true
}

// Err implements beep.Streamer. Source errors end that source only; see
// LastError.
func (s *Session) Err() error { return nil }

func (s *Session) finish(err error) {
	if err != nil && !errors.Is(err, io.EOF) {
		s.lastErr = err
		s.log.Warn("source ended with error", "err", err)
	}
	if cerr := s.cur.Close(); cerr != nil {
		s.log.Warn("close source", "err", cerr)
	}
	s.cur = nil
}

func (s *Session) markIdle() {
	if !s.idle {
		s.idle = true
		close(s.drained)
	}
}

var _ beep.Streamer = (*Session)(nil)

// SpatialSession pans a mono mix of its sources between two ears according
// to an emitter position.
type SpatialSession struct {
	*Session

	mu    sync.Mutex
	state spatial.EmitterState
}

// NewSpatialSession starts streaming into out with the listener at the
// origin and ears at the given offsets.
func NewSpatialSession(out Output, emitter, leftEar, rightEar spatial.Vec3, opts ...Option) *SpatialSession {
	s := &SpatialSession{
		Session: newSession(int(out.SampleRate()), true, opts),
		state:   spatial.EmitterState{Emitter: emitter, LeftEar: leftEar, RightEar: rightEar},
	}
	s.setGains(s.state.Gains())
	out.Play(s.Session)
	return s
}

// SetEmitterPosition moves the emitter. Frames streamed after the call use
// the new gains.
func (s *SpatialSession) SetEmitterPosition(p spatial.Vec3) {
	s.mu.Lock()
	s.state.Emitter = p
	l, r := s.state.Gains()
	s.mu.Unlock()

	s.setGains(l, r)
}

// SetListener moves the listener; ear offsets follow it.
func (s *SpatialSession) SetListener(p spatial.Vec3) {
	s.mu.Lock()
	s.state.Listener = p
	l, r := s.state.Gains()
	s.mu.Unlock()

	s.setGains(l, r)
}

func (s *SpatialSession) EmitterState() spatial.EmitterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
