// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// Uncompressed 8, 16, 24 and 32-bit PCM is supported at any rate and channel
// count; AIFF-C is not. Samples are returned as interleaved float32 in
// [-1.0, 1.0]:
//
//	f, _ := os.Open("cue.aiff")
//	src, err := aiff.Decoder{}.Decode(f)
//	if errors.Is(err, aiff.ErrUnsupportedBitDepth) {
//	    // e.g. 12-bit sampler dumps
//	}
package aiff
