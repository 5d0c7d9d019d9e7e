// SPDX-License-Identifier: EPL-2.0

package playback

import "github.com/gopxl/beep/v2"

// Output is the device a Session plays into. Play must not block; the
// output pulls from the streamer on its own goroutine. The system speaker
// lives in playback/speaker.
type Output interface {
	SampleRate() beep.SampleRate
	Play(beep.Streamer)
}
