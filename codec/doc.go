// SPDX-License-Identifier: EPL-2.0

// Package codec converts buffers of hardware samples between the encodings
// the capture pipeline supports.
//
// A Converter is resolved once for a source/target pair and then reused for
// every buffer the device delivers:
//
//	conv := codec.NewConverter[int16, float32]()
//	out = conv.Convert(out, in) // out is reused, no allocation after warm-up
//
// Rescale rules:
//   - same encoding: copied unchanged
//   - integer to integer: the binary point is shifted; narrowing floors
//   - integer to float: divided by 2^(bits-1), so the range is [-1, 1)
//   - float to integer: clamped to [-1, 1], scaled by 2^(bits-1), rounded
//     to nearest and saturated to the integer range
package codec
