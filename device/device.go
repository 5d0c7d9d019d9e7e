// SPDX-License-Identifier: EPL-2.0

package device

import (
	"errors"
	"fmt"

	"github.com/ik5/audcap/audio"
)

// Host is an audio subsystem that can enumerate capture devices.
type Host interface {
	InputDevices() ([]Device, error)
	DefaultInputDevice() (Device, error)
}

// Device is a single capture endpoint.
type Device interface {
	Name() string
	// DefaultInputConfig reports the configuration the device prefers.
	DefaultInputConfig() (audio.StreamConfig, error)
	// OpenInput opens a stopped input stream. callback receives interleaved
	// buffers and must be a func([]T) whose T matches cfg.Encoding; see
	// CallbackEncoding. It runs on the host's real-time thread.
	OpenInput(cfg audio.StreamConfig, callback any) (Stream, error)
}

// Stream is an opened input stream. Pause stops delivery without releasing
// the stream; Start resumes it.
type Stream interface {
	Start() error
	Pause() error
	Close() error
}

// Select returns the device called name, or the host default when name is
// empty.
func Select(h Host, name string) (Device, error) {
	if name == "" {
		dev, err := h.DefaultInputDevice()
		if err != nil {
			return nil, unavailable(err)
		}
		if dev == nil {
			return nil, ErrDeviceUnavailable
		}
		return dev, nil
	}

	devs, err := h.InputDevices()
	if err != nil {
		return nil, unavailable(err)
	}
	for _, dev := range devs {
		if dev.Name() == name {
			return dev, nil
		}
	}

	return nil, fmt.Errorf("%w: no input device named %q", ErrDeviceUnavailable, name)
}

func unavailable(err error) error {
	if errors.Is(err, ErrDeviceUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDeviceUnavailable, err)
}

// CallbackEncoding reports the sample encoding a callback accepts, or
// EncodingUnknown if callback has none of the supported shapes.
func CallbackEncoding(callback any) audio.Encoding {
	switch callback.(type) {
	case func([]int8):
		return audio.Int8
	case func([]int16):
		return audio.Int16
	case func([]int32):
		return audio.Int32
	case func([]float32):
		return audio.Float32
	case func([]uint8):
		return audio.Uint8
	default:
		return audio.EncodingUnknown
	}
}

// CheckCallback verifies that callback can receive cfg.Encoding buffers.
func CheckCallback(cfg audio.StreamConfig, callback any) error {
	if got := CallbackEncoding(callback); got != cfg.Encoding {
		return fmt.Errorf("%w: %T for %s stream", ErrInvalidCallback, callback, cfg.Encoding)
	}
	return nil
}
