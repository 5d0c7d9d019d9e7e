// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/device"
	"github.com/ik5/audcap/formats/wav"
	"github.com/ik5/audcap/internal/clock"
)

// Session records one input stream into one WAV file.
//
//	Idle -> Configuring -> Streaming <-> Paused -> Finalizing -> Closed
//
// Setup failures return the session to Idle; Closed is terminal. Methods
// are meant to be called from a single controlling goroutine; the device
// callback runs on the host's thread and only ever touches the writer.
type Session struct {
	host         device.Host
	deviceName   string
	sinkEncoding audio.Encoding
	log          *slog.Logger
	clock        clock.Clock
	id           string
	createSink   func(path string, h wav.Header) (*wav.Writer, error)

	mu     sync.Mutex
	state  State
	dev    device.Device
	cfg    audio.StreamConfig
	sink   audio.StreamConfig
	writer *wav.Writer
	stream device.Stream

	writeFailed atomic.Bool
}

type Option func(*Session)

// WithDevice selects an input device by name instead of the host default.
func WithDevice(name string) Option {
	return func(s *Session) { s.deviceName = name }
}

// WithSinkEncoding writes the file in enc instead of the hardware encoding.
func WithSinkEncoding(enc audio.Encoding) Option {
	return func(s *Session) { s.sinkEncoding = enc }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithClock replaces the wall clock used by Record.
func WithClock(c clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

func NewSession(host device.Host, opts ...Option) *Session {
	s := &Session{
		host:       host,
		log:        slog.New(slog.DiscardHandler),
		clock:      clock.Real{},
		id:         uuid.NewString(),
		createSink: wav.Create,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("session", s.id)

	return s
}

// ID identifies the session in log output.
func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Config is the negotiated hardware configuration. It is zero before
// Configure succeeds.
func (s *Session) Config() audio.StreamConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cfg
}

// SinkConfig is the configuration the file is written in.
func (s *Session) SinkConfig() audio.StreamConfig {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sink
}

// Stats reports sink counters for the current or last recording.
type Stats struct {
	Frames   int64
	Dropped  int64
	Failures int64
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	w := s.writer
	s.mu.Unlock()

	if w == nil {
		return Stats{}
	}
	return Stats{Frames: w.Frames(), Dropped: w.Dropped(), Failures: w.Failures()}
}

func (s *Session) invalid(op string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidState, op, s.state)
}

// Configure selects the input device and negotiates its configuration.
// A device whose encoding cannot be written fails here with
// ErrUnsupportedSampleEncoding.
func (s *Session) Configure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return s.invalid("configure")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = Configuring

	dev, err := device.Select(s.host, s.deviceName)
	if err != nil {
		s.state = Idle
		return err
	}

	cfg, err := dev.DefaultInputConfig()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		s.state = Idle
		if errors.Is(err, ErrConfigNegotiation) {
			return err
		}
		return fmt.Errorf("%w: %s: %w", ErrConfigNegotiation, dev.Name(), err)
	}

	sink := cfg
	if s.sinkEncoding != audio.EncodingUnknown {
		sink.Encoding = s.sinkEncoding
	}
	if _, err := dispatch(cfg.Encoding, sink.Encoding); err != nil {
		s.state = Idle
		return err
	}

	s.dev, s.cfg, s.sink = dev, cfg, sink
	s.log.Info("input configured", "device", dev.Name(), "config", cfg, "sink", sink.Encoding)

	return nil
}

// Start creates the file at path, opens the input stream bound to it and
// starts delivery. No file is left behind when Start fails.
func (s *Session) Start(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Configuring {
		return s.invalid("start")
	}

	bind, err := dispatch(s.cfg.Encoding, s.sink.Encoding)
	if err != nil {
		s.state = Idle
		return err
	}
	header, err := wav.HeaderFor(s.sink)
	if err != nil {
		s.state = Idle
		return err
	}

	w, err := s.createSink(path, header)
	if err != nil {
		s.state = Idle
		return err
	}

	s.writeFailed.Store(false)
	stream, err := s.dev.OpenInput(s.cfg, bind(w, s.reportWrite))
	if err != nil {
		s.discard(w)
		s.state = Idle
		return startErr(err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		s.discard(w)
		s.state = Idle
		return startErr(err)
	}

	s.writer, s.stream = w, stream
	s.state = Streaming
	s.log.Info("capture started", "path", path, "header", header)

	return nil
}

func startErr(err error) error {
	if errors.Is(err, ErrStreamStart) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStreamStart, err)
}

// discard finalizes and deletes a sink that never received a stream.
func (s *Session) discard(w *wav.Writer) {
	if err := w.Finalize(); err != nil {
		s.log.Warn("finalize aborted sink", "path", w.Path(), "err", err)
	}
	if err := os.Remove(w.Path()); err != nil {
		s.log.Warn("remove aborted sink", "path", w.Path(), "err", err)
	}
}

// reportWrite runs on the device thread. Only the first failure of a
// recording is logged there; Stop logs the totals.
func (s *Session) reportWrite(err error) {
	if s.writeFailed.CompareAndSwap(false, true) {
		s.log.Warn("sample write failed, continuing", "err", err)
	}
}

// Pause stops hardware delivery and keeps the sink open. Buffers racing the
// pause may be dropped.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Streaming {
		return s.invalid("pause")
	}
	if err := s.stream.Pause(); err != nil {
		return fmt.Errorf("pause stream: %w", err)
	}

	s.state = Paused
	s.log.Debug("capture paused", "frames", s.writer.Frames())

	return nil
}

// Resume restarts delivery into the same file.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Paused {
		return s.invalid("resume")
	}
	if err := s.stream.Start(); err != nil {
		return startErr(err)
	}

	s.state = Streaming
	s.log.Debug("capture resumed")

	return nil
}

// Stop closes the stream and finalizes the file. The session is Closed
// afterwards even if finalizing fails.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Streaming && s.state != Paused {
		return s.invalid("stop")
	}
	s.state = Finalizing

	var errs []error
	if err := s.stream.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close stream: %w", err))
	}
	s.stream = nil

	if err := s.writer.Finalize(); err != nil {
		errs = append(errs, err)
	}
	s.state = Closed

	w := s.writer
	attrs := []any{
		"path", w.Path(),
		"frames", w.Frames(),
		"duration", s.sink.Duration(w.Frames()),
		"dropped", w.Dropped(),
	}
	if n := w.Failures(); n > 0 {
		s.log.Warn("capture finished with write failures", append(attrs, "failures", n, "last_err", w.LastError())...)
	} else {
		s.log.Info("capture finished", attrs...)
	}

	return errors.Join(errs...)
}

// Record runs a fixed-duration recording: it configures the session if it
// is Idle, streams for d, pauses, waits drain for in-flight buffers and
// stops. If ctx is cancelled while streaming the file is still finalized and
// the context error is returned alongside any Stop error.
func (s *Session) Record(ctx context.Context, path string, d, drain time.Duration) error {
	if s.State() == Idle {
		if err := s.Configure(ctx); err != nil {
			return err
		}
	}
	if err := s.Start(path); err != nil {
		return err
	}

	waitErr := s.clock.Sleep(ctx, d)

	if err := s.Pause(); err != nil {
		s.log.Warn("pause before drain", "err", err)
	}
	if waitErr == nil {
		waitErr = s.clock.Sleep(ctx, drain)
	}

	return errors.Join(waitErr, s.Stop())
}
