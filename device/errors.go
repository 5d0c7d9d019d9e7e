// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var (
	// ErrDeviceUnavailable means no input device exists, or none by the requested name.
	ErrDeviceUnavailable = errors.New("input device unavailable")

	// ErrConfigNegotiation means the device could not report a usable input configuration.
	ErrConfigNegotiation = errors.New("cannot negotiate input configuration")

	// ErrStreamStart covers failures to open or start the input stream.
	ErrStreamStart = errors.New("cannot start input stream")

	// ErrInvalidCallback is returned by OpenInput for callbacks that do not
	// match the stream encoding.
	ErrInvalidCallback = errors.New("invalid input callback")
)
