// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrUnsupportedSampleEncoding is returned when a device reports a sample
	// encoding the capture pipeline cannot convert or write.
	ErrUnsupportedSampleEncoding = errors.New("unsupported sample encoding")

	// ErrInvalidStreamConfig is returned for a zero channel count or sample rate.
	ErrInvalidStreamConfig = errors.New("invalid stream config")
)
