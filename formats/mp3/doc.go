// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III files with github.com/hajimehoshi/go-mp3.
//
// The decoder always yields 2-channel interleaved float32 samples in
// [-1.0, 1.0] at the file's sample rate; mono files are duplicated into both
// channels by go-mp3.
//
//	f, _ := os.Open("jingle.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
package mp3
