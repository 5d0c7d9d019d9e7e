// SPDX-License-Identifier: EPL-2.0

// Package audio holds the vocabulary shared by the capture and playback
// sides of audcap.
//
// # Stream configuration
//
// A capture device delivers samples in one Encoding. Four of them flow
// through the pipeline:
//
//	audio.Int8, audio.Int16, audio.Int32, audio.Float32
//
// Uint8, Int24 and Float64 can be reported by hardware but are rejected with
// ErrUnsupportedSampleEncoding. A StreamConfig pairs the encoding with a
// channel count and a sample rate and is fixed once a session starts:
//
//	cfg := audio.StreamConfig{Channels: 2, SampleRate: 48000, Encoding: audio.Float32}
//	frames := cfg.Frames(10 * time.Second)
//
// # Sources
//
// Playback pulls decoded audio through the Source interface, interleaved
// float32 samples in [-1.0, 1.0]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// Sources chain:
//
//	looped, _ := audio.Loop(decoded)                // replay forever
//	clip := audio.Take(looped, 50*time.Second)      // then stop
//	res := audio.NewResampler(clip, 48000)          // match the output rate
//	mono := audio.NewMonoMixer(res)                 // one channel for panning
//
// ReadSamples returns io.EOF when a source is finished.
//
// # Format Registry
//
// Decoders are registered by format key and looked up by file extension:
//
//	registry := audio.NewRegistry()
//	registry.Register("ogg", vorbis.Decoder{})
//	decoder, ok := registry.Lookup("assets/music.ogg")
package audio
