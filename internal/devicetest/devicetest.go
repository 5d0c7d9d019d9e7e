// SPDX-License-Identifier: EPL-2.0

// Package devicetest provides an in-memory device.Host whose streams are fed
// by a virtual clock instead of hardware.
package devicetest

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/codec"
	"github.com/ik5/audcap/device"
)

// ErrClosed is returned when starting a stream that was already closed.
var ErrClosed = errors.New("devicetest: stream closed")

// Host is a fixed list of fake devices. The first one is the default.
type Host struct {
	Devices      []*Device
	EnumerateErr error
}

func NewHost(devs ...*Device) *Host {
	return &Host{Devices: devs}
}

func (h *Host) InputDevices() ([]device.Device, error) {
	if h.EnumerateErr != nil {
		return nil, h.EnumerateErr
	}

	out := make([]device.Device, len(h.Devices))
	for i, d := range h.Devices {
		out[i] = d
	}
	return out, nil
}

func (h *Host) DefaultInputDevice() (device.Device, error) {
	if h.EnumerateErr != nil {
		return nil, h.EnumerateErr
	}
	if len(h.Devices) == 0 {
		return nil, device.ErrDeviceUnavailable
	}
	return h.Devices[0], nil
}

// Device reports Config as its default and hands out Streams. The *Err
// fields inject failures at each step.
type Device struct {
	DeviceName string
	Config     audio.StreamConfig

	ConfigErr error
	OpenErr   error
	StartErr  error

	// Period is the number of frames per callback buffer. Defaults to 10ms
	// worth of frames.
	Period int

	mu      sync.Mutex
	streams []*Stream
}

func NewDevice(name string, cfg audio.StreamConfig) *Device {
	return &Device{DeviceName: name, Config: cfg}
}

func (d *Device) Name() string { return d.DeviceName }

func (d *Device) DefaultInputConfig() (audio.StreamConfig, error) {
	if d.ConfigErr != nil {
		return audio.StreamConfig{}, d.ConfigErr
	}
	return d.Config, nil
}

func (d *Device) OpenInput(cfg audio.StreamConfig, callback any) (device.Stream, error) {
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	if err := device.CheckCallback(cfg, callback); err != nil {
		return nil, err
	}

	period := d.Period
	if period <= 0 {
		period = max(cfg.SampleRate/100, 1)
	}

	s := &Stream{cfg: cfg, callback: callback, period: period, startErr: d.StartErr}

	d.mu.Lock()
	d.streams = append(d.streams, s)
	d.mu.Unlock()

	return s, nil
}

// Streams returns every stream opened on d, oldest first.
func (d *Device) Streams() []*Stream {
	d.mu.Lock()
	defer d.mu.Unlock()

	return append([]*Stream(nil), d.streams...)
}

// Stream delivers a 440 Hz tone at half scale to its callback, but only
// while running and only when told to by Deliver or Advance.
type Stream struct {
	cfg      audio.StreamConfig
	callback any
	period   int
	startErr error

	mu       sync.Mutex
	running  bool
	closed   bool
	starts   int
	runtime  time.Duration // total time spent running, advanced by Advance
	frames   int64
	buffers  int
	scratch  []float32
	onBuffer func()
}

func (s *Stream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.startErr != nil {
		return s.startErr
	}
	s.running = true
	s.starts++
	return nil
}

func (s *Stream) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	return nil
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	s.closed = true
	return nil
}

func (s *Stream) Config() audio.StreamConfig { return s.cfg }

func (s *Stream) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Starts counts successful Start calls.
func (s *Stream) Starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.starts
}

// Frames is the number of frames handed to the callback.
func (s *Stream) Frames() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Buffers is the number of callback invocations.
func (s *Stream) Buffers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffers
}

// OnBuffer installs a hook that runs after every callback invocation.
func (s *Stream) OnBuffer(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onBuffer = fn
}

// Deliver pushes frames to the callback in period-sized buffers if the
// stream is running, and returns how many were delivered.
func (s *Stream) Deliver(frames int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return 0
	}
	return s.deliver(frames)
}

// Advance moves the stream's running time forward by d and delivers the
// frames that time accounts for. Paused streams do not advance.
func (s *Stream) Advance(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return 0
	}
	s.runtime += d
	due := s.cfg.Frames(s.runtime) - s.frames
	if due <= 0 {
		return 0
	}
	return s.deliver(int(due))
}

func (s *Stream) deliver(frames int) int {
	delivered := 0
	for delivered < frames {
		n := min(s.period, frames-delivered)
		s.emit(n)
		delivered += n
	}
	return delivered
}

// emit generates n frames starting at the stream's current frame position.
func (s *Stream) emit(n int) {
	ch := s.cfg.Channels
	if cap(s.scratch) < n*ch {
		s.scratch = make([]float32, n*ch)
	}
	buf := s.scratch[:n*ch]

	for i := range n {
		t := float64(s.frames+int64(i)) / float64(s.cfg.SampleRate)
		v := float32(0.5 * math.Sin(2*math.Pi*440*t))
		for c := range ch {
			buf[i*ch+c] = v
		}
	}

	switch cb := s.callback.(type) {
	case func([]int8):
		cb(codec.Convert[float32, int8](nil, buf))
	case func([]int16):
		cb(codec.Convert[float32, int16](nil, buf))
	case func([]int32):
		cb(codec.Convert[float32, int32](nil, buf))
	case func([]float32):
		cb(append([]float32(nil), buf...))
	case func([]uint8):
		raw := make([]uint8, len(buf))
		for i, v := range buf {
			raw[i] = uint8(int(v*127) + 128)
		}
		cb(raw)
	}

	s.frames += int64(n)
	s.buffers++
	if s.onBuffer != nil {
		s.onBuffer()
	}
}

// Clock is a virtual clock. Sleep returns immediately after advancing every
// stream opened on the attached devices by the slept duration.
type Clock struct {
	mu      sync.Mutex
	now     time.Duration
	sleeps  []time.Duration
	devices []*Device
}

func NewClock(devs ...*Device) *Clock {
	return &Clock{devices: devs}
}

func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.now += d
	c.sleeps = append(c.sleeps, d)
	devs := append([]*Device(nil), c.devices...)
	c.mu.Unlock()

	for _, dev := range devs {
		for _, s := range dev.Streams() {
			s.Advance(d)
		}
	}
	return nil
}

// Now is the total virtual time slept.
func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleeps lists every Sleep duration in call order.
func (c *Clock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}
