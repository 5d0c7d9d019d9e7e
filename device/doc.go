// SPDX-License-Identifier: EPL-2.0

// Package device abstracts the host audio subsystem the capture session
// records from.
//
// A Host enumerates input Devices; Select is the explicit device selection
// step (by name, or the host default). A Device reports its preferred
// audio.StreamConfig and opens callback-driven Streams. The portaudio
// subpackage is the hardware implementation.
package device
