// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"errors"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/device"
	"github.com/ik5/audcap/formats/wav"
)

// Every error a Session returns matches one of these with errors.Is. All of
// them are terminal for the recording at hand; nothing is retried.
var (
	ErrDeviceUnavailable         = device.ErrDeviceUnavailable
	ErrConfigNegotiation         = device.ErrConfigNegotiation
	ErrSinkCreate                = wav.ErrSinkCreate
	ErrStreamStart               = device.ErrStreamStart
	ErrUnsupportedSampleEncoding = audio.ErrUnsupportedSampleEncoding
	ErrFinalize                  = wav.ErrFinalize

	// ErrInvalidState is returned for calls the current state does not
	// allow, such as stopping a session twice.
	ErrInvalidState = errors.New("invalid capture session state")
)
