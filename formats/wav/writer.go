// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"sync/atomic"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audcap/codec"
)

// File is the storage a Writer encodes into. *os.File implements it.
type File interface {
	io.WriteSeeker
	Truncate(size int64) error
	Sync() error
	Close() error
	Name() string
}

// headerSize is the length of the RIFF, fmt and data chunk headers the
// encoder emits; the data chunk size field is its last four bytes.
const headerSize = 44

// Writer is a WAV file sink shared between a real-time producer (the device
// callback) and the goroutine that owns the recording lifecycle.
//
// The sink lives behind a mutex as an optional encoder. Write only ever
// try-locks, so a callback never waits on Finalize; Finalize takes the lock
// and empties the sink exactly once.
//
// A buffer whose write fails is left out of the file entirely, so the data
// chunk stays frame aligned and Frames matches the finalized header. A
// process crash before Finalize leaves the size fields unpatched. There is
// no recovery for that.
type Writer struct {
	mu   sync.Mutex
	file File
	sink *atomicSink
	enc  *gowav.Encoder // nil once finalized
	buf  goaudio.IntBuffer

	header Header

	frames   atomic.Int64
	dropped  atomic.Int64
	failures atomic.Int64
	lastErr  atomic.Value // error
}

// Create makes a new WAV file at path and writes h to it before returning.
func Create(path string, h Header) (*Writer, error) {
	if err := checkHeader(h); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkCreate, err)
	}

	w, err := NewWriter(f, h)
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return w, nil
}

// NewWriter writes h to the start of f and returns a Writer appending to
// it. f is closed by Finalize, or right away if the header cannot be
// written.
func NewWriter(f File, h Header) (*Writer, error) {
	if err := checkHeader(h); err != nil {
		_ = f.Close()
		return nil, err
	}

	sink := &atomicSink{f: f}
	w := &Writer{
		file: f,
		sink: sink,
		enc:  gowav.NewEncoder(sink, int(h.SampleRate), int(h.BitsPerSample), int(h.Channels), int(h.Format)),
		buf: goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: int(h.Channels),
				SampleRate:  int(h.SampleRate),
			},
			SourceBitDepth: int(h.BitsPerSample),
		},
		header: h,
	}

	// An empty buffer makes the encoder emit the RIFF, fmt and data chunk
	// headers now instead of with the first samples.
	if err := w.enc.Write(&w.buf); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: writing header: %w", ErrSinkCreate, err)
	}

	return w, nil
}

func checkHeader(h Header) error {
	if !h.Encoding().Supported() || h.Channels == 0 || h.SampleRate == 0 {
		return fmt.Errorf("%w: %w: %s", ErrSinkCreate, ErrUnsupportedWavLayout, h)
	}
	return nil
}

// atomicSink makes each encoder write all or nothing. go-audio's encoder
// keeps the bytes of a failed write and sends them again in front of the
// next buffer; those samples were already reported as failed, so stale
// leading bytes are skipped and a partial write is cut back off the file.
type atomicSink struct {
	f     File
	off   int64
	stale int
}

func (s *atomicSink) Write(p []byte) (int, error) {
	skip := min(s.stale, len(p))

	n, err := s.f.Write(p[skip:])
	if err != nil {
		if n > 0 {
			if terr := s.f.Truncate(s.off); terr != nil {
				return 0, errors.Join(err, terr)
			}
			if _, serr := s.f.Seek(s.off, io.SeekStart); serr != nil {
				return 0, errors.Join(err, serr)
			}
		}
		s.stale = len(p)
		return 0, err
	}

	s.off += int64(n)
	s.stale = 0
	return len(p), nil
}

func (s *atomicSink) Seek(offset int64, whence int) (int64, error) {
	off, err := s.f.Seek(offset, whence)
	if err == nil {
		s.off = off
	}
	return off, err
}

func (w *Writer) Header() Header { return w.header }
func (w *Writer) Path() string   { return w.file.Name() }

// Frames is the number of frames accepted so far.
func (w *Writer) Frames() int64 { return w.frames.Load() }

// Dropped counts buffers skipped because the sink was busy.
func (w *Writer) Dropped() int64 { return w.dropped.Load() }

// Failures counts buffers the encoder failed to write.
func (w *Writer) Failures() int64 { return w.failures.Load() }

// LastError returns the most recent write failure, if any.
func (w *Writer) LastError() error {
	err, _ := w.lastErr.Load().(error)
	return err
}

// Write appends interleaved samples of type S to w without blocking.
//
// If the sink is locked by someone else the buffer is dropped and counted.
// Once finalized, Write is a silent no-op. The returned frame count is 0 in
// both cases. A failed write is counted, remembered and returned; the sink
// stays usable.
func Write[S codec.Sample](w *Writer, samples []S) (int, error) {
	if !w.mu.TryLock() {
		w.dropped.Add(1)
		return 0, nil
	}
	defer w.mu.Unlock()

	if w.enc == nil {
		return 0, nil
	}

	if enc := codec.EncodingOf[S](); enc != w.header.Encoding() {
		return 0, fmt.Errorf("%w: %s into %s", ErrEncodingMismatch, enc, w.header)
	}

	channels := int(w.header.Channels)
	frames := len(samples) / channels
	if frames == 0 {
		return 0, nil
	}

	w.buf.Data = pack(w.buf.Data[:0], samples[:frames*channels])
	if err := w.enc.Write(&w.buf); err != nil {
		w.failures.Add(1)
		w.lastErr.Store(err)
		return 0, fmt.Errorf("wav write: %w", err)
	}

	w.frames.Add(int64(frames))
	return frames, nil
}

// pack widens samples to the ints go-audio expects for each bit depth.
func pack[S codec.Sample](dst []int, samples []S) []int {
	switch s := any(samples).(type) {
	case []int8:
		for _, v := range s {
			dst = append(dst, int(v)+128)
		}
	case []int16:
		for _, v := range s {
			dst = append(dst, int(v))
		}
	case []int32:
		for _, v := range s {
			dst = append(dst, int(v))
		}
	case []float32:
		for _, v := range s {
			dst = append(dst, int(int32(math.Float32bits(v))))
		}
	}
	return dst
}

// Finalize patches the chunk sizes, syncs and closes the file. It blocks
// until any in-flight Write returns. Calling it twice is a lifecycle bug and
// returns ErrAlreadyFinalized.
func (w *Writer) Finalize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.enc == nil {
		return ErrAlreadyFinalized
	}
	enc := w.enc
	w.enc = nil

	// Bytes the encoder still holds from a failed write are never written.
	w.sink.stale = 0

	err := enc.Close()
	if err == nil {
		err = w.patchSizes()
	}
	if err == nil {
		err = w.file.Sync()
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFinalize, err)
	}

	return nil
}

// patchSizes rewrites the RIFF and data chunk sizes from the frames that
// were actually written. The encoder's own counts include failed buffers.
func (w *Writer) patchSizes() error {
	data := uint32(w.frames.Load() * int64(w.header.StreamConfig().BytesPerFrame()))

	for _, field := range []struct {
		off int64
		v   uint32
	}{
		{4, headerSize - 8 + data},
		{headerSize - 4, data},
	} {
		if _, err := w.file.Seek(field.off, io.SeekStart); err != nil {
			return err
		}
		if err := binary.Write(w.file, binary.LittleEndian, field.v); err != nil {
			return err
		}
	}

	_, err := w.file.Seek(0, io.SeekEnd)
	return err
}

// Finalized reports whether Finalize has run.
func (w *Writer) Finalized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.enc == nil
}
