// SPDX-License-Identifier: EPL-2.0

// Package config loads audcap settings from the environment. The CLI uses
// them as flag defaults.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ik5/audcap/audio"
)

// Config holds every setting the audcap command reads from the
// environment.
type Config struct {
	LogLevel string

	// Capture
	Output         string
	Device         string
	Encoding       audio.Encoding // asked of the hardware first
	SinkEncoding   audio.Encoding // EncodingUnknown writes what the hardware delivers
	Channels       int            // upper bound on negotiated input channels
	RecordDuration time.Duration
	DrainDelay     time.Duration

	// Spatial demo
	Asset              string
	TrajectoryDuration time.Duration // one sweep from the centre to an extreme
	TrajectoryDistance float64
	TrajectoryTick     time.Duration
	TrajectoryRepeats  int

	// Playback
	OutputRate   int
	OutputBuffer time.Duration
}

// Load reads configuration from environment variables with defaults
// matching the demo recording: 10s of capture and a 3s drain.
func Load() Config {
	return Config{
		LogLevel: envStr("AUDCAP_LOG_LEVEL", "info"),

		Output:         envStr("AUDCAP_OUTPUT", "recorded.wav"),
		Device:         envStr("AUDCAP_DEVICE", ""),
		Encoding:       envEncoding("AUDCAP_ENCODING", audio.Float32),
		SinkEncoding:   envEncoding("AUDCAP_SINK_ENCODING", audio.EncodingUnknown),
		Channels:       envInt("AUDCAP_CHANNELS", 2),
		RecordDuration: envDuration("AUDCAP_RECORD_DURATION", 10*time.Second),
		DrainDelay:     envDuration("AUDCAP_DRAIN_DELAY", 3*time.Second),

		Asset:              envStr("AUDCAP_ASSET", "assets/music.ogg"),
		TrajectoryDuration: envDuration("AUDCAP_TRAJECTORY_DURATION", 5*time.Second),
		TrajectoryDistance: envFloat("AUDCAP_TRAJECTORY_DISTANCE", 5.0),
		TrajectoryTick:     envDuration("AUDCAP_TRAJECTORY_TICK", 10*time.Millisecond),
		TrajectoryRepeats:  envInt("AUDCAP_TRAJECTORY_REPEATS", 5),

		OutputRate:   envInt("AUDCAP_OUTPUT_RATE", 44100),
		OutputBuffer: envDuration("AUDCAP_OUTPUT_BUFFER", 100*time.Millisecond),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// envDuration accepts Go duration syntax ("250ms") or whole seconds ("10").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}

func envEncoding(key string, fallback audio.Encoding) audio.Encoding {
	if v := os.Getenv(key); v != "" {
		if enc, err := audio.ParseEncoding(v); err == nil {
			return enc
		}
	}
	return fallback
}
