// SPDX-License-Identifier: EPL-2.0

// Package portaudio is the hardware device.Host, backed by
// github.com/gordonklaus/portaudio. It needs the PortAudio C library.
package portaudio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	pa "github.com/gordonklaus/portaudio"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/device"
)

// negotiationOrder is tried after the preferred encoding.
var negotiationOrder = []audio.Encoding{audio.Float32, audio.Int16, audio.Int32, audio.Int8}

// Host is an initialised PortAudio instance.
type Host struct {
	encoding    audio.Encoding
	lowLatency  bool
	maxChannels int

	closeOnce sync.Once
}

type Option func(*Host)

// WithEncoding sets the sample format asked of the hardware first.
// Passing a format the capture pipeline cannot write (such as u8) is allowed;
// the session will refuse the stream.
func WithEncoding(enc audio.Encoding) Option {
	return func(h *Host) { h.encoding = enc }
}

// WithLowLatency opens streams with the device's low input latency.
func WithLowLatency() Option {
	return func(h *Host) { h.lowLatency = true }
}

// WithMaxChannels caps the negotiated channel count. The default is 2.
func WithMaxChannels(n int) Option {
	return func(h *Host) { h.maxChannels = n }
}

// Open initialises PortAudio. Close must be called once the host is no
// longer needed.
func Open(opts ...Option) (*Host, error) {
	h := &Host{encoding: audio.Float32, maxChannels: 2}
	for _, opt := range opts {
		opt(h)
	}

	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %w", device.ErrDeviceUnavailable, err)
	}
	return h, nil
}

func (h *Host) Close() error {
	var err error
	h.closeOnce.Do(func() { err = pa.Terminate() })
	return err
}

func (h *Host) InputDevices() ([]device.Device, error) {
	infos, err := pa.Devices()
	if err != nil {
		return nil, err
	}

	var out []device.Device
	for _, info := range infos {
		if info.MaxInputChannels > 0 {
			out = append(out, &inputDevice{host: h, info: info})
		}
	}
	return out, nil
}

func (h *Host) DefaultInputDevice() (device.Device, error) {
	info, err := pa.DefaultInputDevice()
	if err != nil {
		if errors.Is(err, pa.NoDefaultInputDevice) {
			return nil, device.ErrDeviceUnavailable
		}
		return nil, err
	}
	return &inputDevice{host: h, info: info}, nil
}

type inputDevice struct {
	host *Host
	info *pa.DeviceInfo
}

func (d *inputDevice) Name() string { return d.info.Name }

// DefaultInputConfig uses the device's default rate and up to maxChannels
// inputs, and the first encoding in negotiation order the device accepts.
func (d *inputDevice) DefaultInputConfig() (audio.StreamConfig, error) {
	if d.info.MaxInputChannels < 1 || d.info.DefaultSampleRate <= 0 {
		return audio.StreamConfig{}, fmt.Errorf("%w: %s has no input channels", device.ErrConfigNegotiation, d.info.Name)
	}

	cfg := audio.StreamConfig{
		Channels:   min(d.info.MaxInputChannels, max(d.host.maxChannels, 1)),
		SampleRate: int(d.info.DefaultSampleRate),
	}

	var errs []error
	for _, enc := range candidates(d.host.encoding) {
		cfg.Encoding = enc
		probe, ok := probeCallback(enc)
		if !ok {
			continue
		}
		err := pa.IsFormatSupported(d.params(cfg), probe)
		if err == nil {
			return cfg, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", cfg, err))
	}

	return audio.StreamConfig{}, fmt.Errorf("%w: %s: %w", device.ErrConfigNegotiation, d.info.Name, errors.Join(errs...))
}

func (d *inputDevice) OpenInput(cfg audio.StreamConfig, callback any) (device.Stream, error) {
	if err := device.CheckCallback(cfg, callback); err != nil {
		return nil, err
	}

	s, err := pa.OpenStream(d.params(cfg), callback)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", device.ErrStreamStart, err)
	}
	return &stream{s: s}, nil
}

func (d *inputDevice) params(cfg audio.StreamConfig) pa.StreamParameters {
	p := pa.HighLatencyParameters(d.info, nil)
	if d.host.lowLatency {
		p = pa.LowLatencyParameters(d.info, nil)
	}
	p.Input.Channels = cfg.Channels
	p.SampleRate = float64(cfg.SampleRate)
	p.FramesPerBuffer = framesPerBuffer(cfg.SampleRate, 20*time.Millisecond)
	return p
}

// candidates lists preferred first, then negotiationOrder without repeats.
func candidates(preferred audio.Encoding) []audio.Encoding {
	out := []audio.Encoding{preferred}
	for _, enc := range negotiationOrder {
		if enc != preferred {
			out = append(out, enc)
		}
	}
	return out
}

// probeCallback returns a no-op callback of the shape PortAudio maps to enc.
func probeCallback(enc audio.Encoding) (any, bool) {
	switch enc {
	case audio.Int8:
		return func([]int8) {}, true
	case audio.Int16:
		return func([]int16) {}, true
	case audio.Int32:
		return func([]int32) {}, true
	case audio.Float32:
		return func([]float32) {}, true
	case audio.Uint8:
		return func([]uint8) {}, true
	default:
		return nil, false
	}
}

func framesPerBuffer(rate int, period time.Duration) int {
	return max(int(int64(rate)*int64(period)/int64(time.Second)), 1)
}

// stream maps Pause onto Pa_StopStream, which keeps the stream open so Start
// can resume it.
type stream struct {
	s *pa.Stream
}

func (s *stream) Start() error {
	if err := s.s.Start(); err != nil {
		return fmt.Errorf("%w: %w", device.ErrStreamStart, err)
	}
	return nil
}

func (s *stream) Pause() error { return s.s.Stop() }
func (s *stream) Close() error { return s.s.Close() }
