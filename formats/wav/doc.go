// SPDX-License-Identifier: EPL-2.0

// Package wav is the file sink of the capture pipeline and a WAV decoder for
// playback, both built on github.com/go-audio/wav.
//
// # Writing
//
// A Writer is created from a Header, which HeaderFor derives from the
// negotiated stream configuration. The header is on disk when Create returns:
//
//	h, _ := wav.HeaderFor(audio.StreamConfig{Channels: 2, SampleRate: 48000, Encoding: audio.Float32})
//	w, err := wav.Create("recorded.wav", h)
//	if errors.Is(err, wav.ErrSinkCreate) {
//	    // path could not be created
//	}
//
// Samples are appended from the device callback with the generic Write. It
// never blocks: while Finalize holds the sink, buffers are dropped and
// counted, and after Finalize every call is a silent no-op.
//
//	wav.Write(w, samples) // samples []float32, matching the header
//	_ = w.Finalize()      // once
//
// Supported sample layouts are 8, 16 and 32-bit integer PCM and 32-bit IEEE
// float. 8-bit samples are signed in memory and stored with the unsigned
// offset WAV requires.
//
// # Reading
//
// Decoder returns an audio.Source of float32 samples in [-1.0, 1.0]; ReadInfo
// reports the header, frame count and duration of a finished file:
//
//	info, _ := wav.ReadInfo("recorded.wav")
//	fmt.Println(info.Header, info.Duration)
package wav
