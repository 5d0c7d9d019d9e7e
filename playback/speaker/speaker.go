// SPDX-License-Identifier: EPL-2.0

// Package speaker is the system audio output for playback sessions, through
// github.com/gopxl/beep/v2/speaker. It needs the platform audio libraries
// (ALSA on Linux) at build time.
package speaker

import (
	"errors"
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
	bspeaker "github.com/gopxl/beep/v2/speaker"

	"github.com/ik5/audcap/playback"
)

// ErrOutputUnavailable is returned when the speaker cannot be initialised.
var ErrOutputUnavailable = errors.New("audio output unavailable")

// Speaker is the default system output. Only one may be open per process.
type Speaker struct {
	rate beep.SampleRate
}

var _ playback.Output = (*Speaker)(nil)

// Open initialises the system output at rate with roughly buffer of
// latency.
func Open(rate int, buffer time.Duration) (*Speaker, error) {
	sr := beep.SampleRate(rate)
	if err := bspeaker.Init(sr, sr.N(buffer)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutputUnavailable, err)
	}
	return &Speaker{rate: sr}, nil
}

func (s *Speaker) SampleRate() beep.SampleRate { return s.rate }
func (s *Speaker) Play(st beep.Streamer)       { bspeaker.Play(st) }

// Close stops playback and releases the device.
func (s *Speaker) Close() {
	bspeaker.Clear()
	bspeaker.Close()
}
