// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")
	ErrSinkCreate           = errors.New("cannot create WAV sink")
	ErrFinalize             = errors.New("cannot finalize WAV sink")
	ErrAlreadyFinalized     = errors.New("WAV sink already finalized")
	ErrEncodingMismatch     = errors.New("sample type does not match WAV header")
)
