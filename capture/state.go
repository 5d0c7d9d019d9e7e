// SPDX-License-Identifier: EPL-2.0

package capture

import "fmt"

// State is the lifecycle position of a Session.
type State uint8

const (
	Idle State = iota
	Configuring
	Streaming
	Paused
	Finalizing
	Closed
)

var stateNames = [...]string{
	Idle:        "idle",
	Configuring: "configuring",
	Streaming:   "streaming",
	Paused:      "paused",
	Finalizing:  "finalizing",
	Closed:      "closed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}
