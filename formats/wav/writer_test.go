// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/codec"
)

func newWriter(t *testing.T, cfg audio.StreamConfig) *Writer {
	t.Helper()

	h, err := HeaderFor(cfg)
	require.NoError(t, err)

	w, err := Create(filepath.Join(t.TempDir(), "out.wav"), h)
	require.NoError(t, err)

	return w
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()

	st, err := os.Stat(path)
	require.NoError(t, err)
	return st.Size()
}

func readAll(t *testing.T, path string) ([]float32, audio.Source) {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	src, err := Decoder{}.Decode(f)
	require.NoError(t, err)

	var out []float32
	buf := make([]float32, 256)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, src
		}
		require.NoError(t, err)
	}
}

func TestHeaderFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		enc    audio.Encoding
		bits   uint16
		format SampleFormat
	}{
		{audio.Int8, 8, FormatInt},
		{audio.Int16, 16, FormatInt},
		{audio.Int32, 32, FormatInt},
		{audio.Float32, 32, FormatFloat},
	}

	for _, tt := range tests {
		t.Run(tt.enc.String(), func(t *testing.T) {
			t.Parallel()

			cfg := audio.StreamConfig{Channels: 2, SampleRate: 44100, Encoding: tt.enc}
			h, err := HeaderFor(cfg)
			require.NoError(t, err)

			assert.Equal(t, Header{Channels: 2, SampleRate: 44100, BitsPerSample: tt.bits, Format: tt.format}, h)
			assert.Equal(t, cfg, h.StreamConfig())
		})
	}

	_, err := HeaderFor(audio.StreamConfig{Channels: 1, SampleRate: 8000, Encoding: audio.Uint8})
	assert.ErrorIs(t, err, audio.ErrUnsupportedSampleEncoding)

	_, err = HeaderFor(audio.StreamConfig{Channels: 0, SampleRate: 8000, Encoding: audio.Int16})
	assert.ErrorIs(t, err, audio.ErrInvalidStreamConfig)
}

func TestCreate_WritesHeaderImmediately(t *testing.T) {
	t.Parallel()

	w := newWriter(t, audio.StreamConfig{Channels: 2, SampleRate: 48000, Encoding: audio.Int16})
	defer w.Finalize()

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), 44)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[22:24]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]))
}

func TestCreate_Errors(t *testing.T) {
	t.Parallel()

	h := Header{Channels: 1, SampleRate: 8000, BitsPerSample: 16, Format: FormatInt}
	_, err := Create(filepath.Join(t.TempDir(), "missing", "dir", "out.wav"), h)
	assert.ErrorIs(t, err, ErrSinkCreate)

	path := filepath.Join(t.TempDir(), "bad.wav")
	_, err = Create(path, Header{Channels: 1, SampleRate: 8000, BitsPerSample: 24, Format: FormatInt})
	assert.ErrorIs(t, err, ErrSinkCreate)
	assert.NoFileExists(t, path)
}

func roundTrip[S codec.Sample](t *testing.T, in []S, tol float64) {
	t.Helper()

	enc := codec.EncodingOf[S]()
	t.Run(enc.String(), func(t *testing.T) {
		t.Parallel()

		w := newWriter(t, audio.StreamConfig{Channels: 2, SampleRate: 8000, Encoding: enc})

		n, err := Write(w, in)
		require.NoError(t, err)
		assert.Equal(t, len(in)/2, n)
		require.NoError(t, w.Finalize())

		info, err := ReadInfo(w.Path())
		require.NoError(t, err)
		assert.Equal(t, w.Header(), info.Header)
		assert.Equal(t, int64(len(in)/2), info.Frames)

		got, src := readAll(t, w.Path())
		assert.Equal(t, 2, src.Channels())
		assert.Equal(t, 8000, src.SampleRate())

		want := codec.Convert[S, float32](nil, in)
		require.Len(t, got, len(want))
		for i := range want {
			assert.InDelta(t, want[i], got[i], tol, "sample %d", i)
		}
	})
}

func TestWriter_RoundTrip(t *testing.T) {
	t.Parallel()

	roundTrip(t, []int8{0, 1, -1, 127, -128, 64}, 1e-6)
	roundTrip(t, []int16{0, 1, -1, 32767, -32768, 1000}, 1e-6)
	roundTrip(t, []int32{0, 1 << 20, -(1 << 20), 2147483647, -2147483648, 12345}, 1e-6)
	roundTrip(t, []float32{0, 0.25, -0.25, 1, -1, 0.123}, 0)
}

func TestWriter_DropsPartialFrames(t *testing.T) {
	t.Parallel()

	w := newWriter(t, audio.StreamConfig{Channels: 2, SampleRate: 8000, Encoding: audio.Int16})

	n, err := Write(w, []int16{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(1), w.Frames())

	require.NoError(t, w.Finalize())
}

func TestWriter_WriteAfterFinalizeIsNoop(t *testing.T) {
	t.Parallel()

	w := newWriter(t, audio.StreamConfig{Channels: 1, SampleRate: 8000, Encoding: audio.Float32})
	_, err := Write(w, []float32{0.1, 0.2})
	require.NoError(t, err)
	require.NoError(t, w.Finalize())
	assert.True(t, w.Finalized())

	before := fileSize(t, w.Path())

	assert.NotPanics(t, func() {
		n, err := Write(w, []float32{0.3, 0.4, 0.5})
		assert.NoError(t, err)
		assert.Zero(t, n)
	})

	assert.Equal(t, before, fileSize(t, w.Path()))
	assert.Equal(t, int64(2), w.Frames())

	info, err := ReadInfo(w.Path())
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Frames)
}

func TestWriter_FinalizeTwice(t *testing.T) {
	t.Parallel()

	w := newWriter(t, audio.StreamConfig{Channels: 1, SampleRate: 8000, Encoding: audio.Int16})
	require.NoError(t, w.Finalize())
	assert.ErrorIs(t, w.Finalize(), ErrAlreadyFinalized)
}

func TestWriter_BusySinkDropsBuffer(t *testing.T) {
	t.Parallel()

	w := newWriter(t, audio.StreamConfig{Channels: 1, SampleRate: 8000, Encoding: audio.Int16})

	w.mu.Lock()
	n, err := Write(w, []int16{1, 2, 3})
	w.mu.Unlock()

	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, int64(1), w.Dropped())
	assert.Zero(t, w.Frames())

	require.NoError(t, w.Finalize())
}

func TestWriter_EncodingMismatch(t *testing.T) {
	t.Parallel()

	w := newWriter(t, audio.StreamConfig{Channels: 1, SampleRate: 8000, Encoding: audio.Int16})
	defer w.Finalize()

	_, err := Write(w, []float32{0.5})
	assert.ErrorIs(t, err, ErrEncodingMismatch)
}

func TestWriter_ConcurrentWritersNeverDeadlock(t *testing.T) {
	t.Parallel()

	w := newWriter(t, audio.StreamConfig{Channels: 2, SampleRate: 48000, Encoding: audio.Int16})
	buf := make([]int16, 256)

	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)

	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for range 200 {
				if _, err := Write(w, buf); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}

	// A lifecycle goroutine grabbing the sink makes callbacks drop.
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		for range 200 {
			w.mu.Lock()
			time.Sleep(10 * time.Microsecond)
			w.mu.Unlock()
		}
	}()

	close(start)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("writers deadlocked")
	}

	require.NoError(t, w.Finalize())

	attempts := int64(8 * 200)
	accepted := w.Frames() / 128
	assert.Equal(t, attempts, accepted+w.Dropped())

	info, err := ReadInfo(w.Path())
	require.NoError(t, err)
	assert.Equal(t, w.Frames(), info.Frames)
}

func TestWriter_FinalizeWhileWriting(t *testing.T) {
	t.Parallel()

	w := newWriter(t, audio.StreamConfig{Channels: 1, SampleRate: 8000, Encoding: audio.Float32})
	buf := make([]float32, 64)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				_, _ = Write(w, buf)
			}
		}
	}()

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, w.Finalize())
	close(stop)
	<-done

	info, err := ReadInfo(w.Path())
	require.NoError(t, err)
	assert.Equal(t, w.Frames(), info.Frames)
}

var errDiskFull = errors.New("no space left on device")

// faultyFile fails writes while failing is set, after putting up to partial
// bytes of the buffer on disk.
type faultyFile struct {
	*os.File
	failing atomic.Bool
	partial int
	syncErr error
}

func (f *faultyFile) Write(p []byte) (int, error) {
	if f.failing.Load() {
		n, _ := f.File.Write(p[:min(f.partial, len(p))])
		return n, errDiskFull
	}
	return f.File.Write(p)
}

func (f *faultyFile) Sync() error {
	if f.syncErr != nil {
		return f.syncErr
	}
	return f.File.Sync()
}

func newFaultyWriter(t *testing.T, cfg audio.StreamConfig, partial int) (*Writer, *faultyFile) {
	t.Helper()

	h, err := HeaderFor(cfg)
	require.NoError(t, err)

	f, err := os.Create(filepath.Join(t.TempDir(), "faulty.wav"))
	require.NoError(t, err)

	ff := &faultyFile{File: f, partial: partial}
	w, err := NewWriter(ff, h)
	require.NoError(t, err)

	return w, ff
}

func TestWriter_FailedWritesLeaveFileAligned(t *testing.T) {
	t.Parallel()

	w, ff := newFaultyWriter(t, audio.StreamConfig{Channels: 1, SampleRate: 8000, Encoding: audio.Int16}, 3)

	n, err := Write(w, []int16{1000, 2000, 3000, 4000})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	ff.failing.Store(true)
	for range 2 {
		n, err = Write(w, []int16{-32768, -32768, -32768})
		assert.ErrorIs(t, err, errDiskFull)
		assert.Zero(t, n)
	}
	assert.Equal(t, int64(2), w.Failures())
	assert.ErrorIs(t, w.LastError(), errDiskFull)

	ff.failing.Store(false)
	n, err = Write(w, []int16{5000, 6000})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, w.Finalize())
	assert.Equal(t, int64(6), w.Frames())
	assert.Equal(t, int64(headerSize+6*2), fileSize(t, w.Path()))

	info, err := ReadInfo(w.Path())
	require.NoError(t, err)
	assert.Equal(t, w.Frames(), info.Frames)

	got, _ := readAll(t, w.Path())
	want := []float32{1000, 2000, 3000, 4000, 5000, 6000}
	require.Len(t, got, len(want))
	for i, v := range want {
		assert.InDelta(t, v/32768, got[i], 1e-6, "sample %d", i)
	}
}

func TestWriter_FinalizeSyncFailure(t *testing.T) {
	t.Parallel()

	w, ff := newFaultyWriter(t, audio.StreamConfig{Channels: 2, SampleRate: 8000, Encoding: audio.Float32}, 0)
	_, err := Write(w, []float32{0.25, -0.25, 0.5, -0.5})
	require.NoError(t, err)

	ff.syncErr = errors.New("i/o error")
	err = w.Finalize()
	assert.ErrorIs(t, err, ErrFinalize)
	assert.ErrorIs(t, err, ff.syncErr)

	assert.ErrorIs(t, ff.File.Close(), os.ErrClosed)
	assert.ErrorIs(t, w.Finalize(), ErrAlreadyFinalized)

	info, err := ReadInfo(w.Path())
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Frames)
}

func TestNewWriter_HeaderWriteFails(t *testing.T) {
	t.Parallel()

	h, err := HeaderFor(audio.StreamConfig{Channels: 1, SampleRate: 8000, Encoding: audio.Int8})
	require.NoError(t, err)

	f, err := os.Create(filepath.Join(t.TempDir(), "header.wav"))
	require.NoError(t, err)
	ff := &faultyFile{File: f}
	ff.failing.Store(true)

	_, err = NewWriter(ff, h)
	assert.ErrorIs(t, err, ErrSinkCreate)
	assert.ErrorIs(t, err, errDiskFull)
	assert.ErrorIs(t, f.Close(), os.ErrClosed)
}
