// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/formats/wav"
	"github.com/ik5/audcap/internal/devicetest"
)

var errDiskFull = errors.New("no space left on device")

// flakyFile fails writes while failing is set and Sync once syncErr is.
type flakyFile struct {
	*os.File
	failing atomic.Bool
	syncErr atomic.Value // error
}

func (f *flakyFile) Write(p []byte) (int, error) {
	if f.failing.Load() {
		n, _ := f.File.Write(p[:min(1, len(p))])
		return n, errDiskFull
	}
	return f.File.Write(p)
}

func (f *flakyFile) Sync() error {
	if err, ok := f.syncErr.Load().(error); ok {
		return err
	}
	return f.File.Sync()
}

func TestSession_WriteFailureKeepsStreaming(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dev := devicetest.NewDevice("mic", audio.StreamConfig{Channels: 1, SampleRate: 8000, Encoding: audio.Int16})
	clk := devicetest.NewClock(dev)

	var logs bytes.Buffer
	s := NewSession(devicetest.NewHost(dev), WithClock(clk), WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	var file *flakyFile
	s.createSink = func(path string, h wav.Header) (*wav.Writer, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		file = &flakyFile{File: f}
		return wav.NewWriter(file, h)
	}

	path := filepath.Join(t.TempDir(), "flaky.wav")
	require.NoError(t, s.Configure(ctx))
	require.NoError(t, s.Start(path))

	// 10ms buffers: 10 good, 5 failed, 10 good.
	require.NoError(t, clk.Sleep(ctx, 100*time.Millisecond))
	file.failing.Store(true)
	require.NoError(t, clk.Sleep(ctx, 50*time.Millisecond))
	file.failing.Store(false)
	require.NoError(t, clk.Sleep(ctx, 100*time.Millisecond))
	assert.Equal(t, Streaming, s.State())

	stats := s.Stats()
	assert.Equal(t, int64(1600), stats.Frames)
	assert.Equal(t, int64(5), stats.Failures)

	require.NoError(t, s.Stop())
	assert.Equal(t, Closed, s.State())

	out := logs.String()
	assert.Equal(t, 1, strings.Count(out, "sample write failed, continuing"))
	assert.Contains(t, out, "capture finished with write failures")
	assert.Contains(t, out, "failures=5")

	info, err := wav.ReadInfo(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1600), info.Frames)
	assert.InDelta(t, 0.5, peakOf(t, path), 0.01)
}

func TestSession_StopReportsFinalizeFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dev := devicetest.NewDevice("mic", audio.StreamConfig{Channels: 2, SampleRate: 16000, Encoding: audio.Float32})
	clk := devicetest.NewClock(dev)
	s := NewSession(devicetest.NewHost(dev), WithClock(clk))

	syncErr := errors.New("i/o error")
	s.createSink = func(path string, h wav.Header) (*wav.Writer, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		ff := &flakyFile{File: f}
		ff.syncErr.Store(syncErr)
		return wav.NewWriter(ff, h)
	}

	path := filepath.Join(t.TempDir(), "unsynced.wav")
	require.NoError(t, s.Configure(ctx))
	require.NoError(t, s.Start(path))
	require.NoError(t, clk.Sleep(ctx, 100*time.Millisecond))

	err := s.Stop()
	assert.ErrorIs(t, err, ErrFinalize)
	assert.ErrorIs(t, err, syncErr)
	assert.Equal(t, Closed, s.State())
	assert.ErrorIs(t, s.Stop(), ErrInvalidState)
}

func peakOf(t *testing.T, path string) float32 {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	src, err := wav.Decoder{}.Decode(f)
	require.NoError(t, err)

	var peak float32
	buf := make([]float32, 1024)
	for {
		n, err := src.ReadSamples(buf)
		for _, v := range buf[:n] {
			peak = max(peak, v, -v)
		}
		if err != nil || n == 0 {
			return peak
		}
	}
}
