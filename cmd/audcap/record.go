// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audcap"
	"github.com/ik5/audcap/capture"
	"github.com/ik5/audcap/internal/config"
	"github.com/ik5/audcap/internal/log"
)

type recordFlags struct {
	output       string
	device       string
	encoding     string
	sinkEncoding string
	duration     time.Duration
	drain        time.Duration
	lowLatency   bool
	channels     int

	rt deps
}

func newRecordCmd(cfg config.Config, rt deps) *cobra.Command {
	flags := recordFlags{rt: rt}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a fixed duration of audio to a WAV file",
		Long: `Record captures the selected input device for --duration, pauses the
stream, waits --drain for buffers still in flight and finalizes the file.`,
		Args: cobra.NoArgs,
		RunE: flags.runRecordCommand,
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", cfg.Output, "WAV file to write")
	f.StringVar(&flags.device, "device", cfg.Device, "Input device name (default device when empty)")
	f.StringVar(&flags.encoding, "encoding", encodingName(cfg.Encoding), "Sample encoding asked of the hardware (i8, i16, i32, f32)")
	f.StringVar(&flags.sinkEncoding, "sink-encoding", encodingName(cfg.SinkEncoding), "Sample encoding of the file (hardware encoding when empty)")
	f.DurationVarP(&flags.duration, "duration", "d", cfg.RecordDuration, "Recording length")
	f.DurationVar(&flags.drain, "drain", cfg.DrainDelay, "Wait after pausing before the file is finalized")
	f.BoolVar(&flags.lowLatency, "low-latency", false, "Open the device with low input latency")
	f.IntVar(&flags.channels, "channels", cfg.Channels, "Maximum number of input channels to record")

	return cmd
}

func (f *recordFlags) runRecordCommand(cmd *cobra.Command, _ []string) error {
	enc, err := parseEncoding(f.encoding)
	if err != nil {
		return fmt.Errorf("--encoding: %w", err)
	}
	sink, err := parseEncoding(f.sinkEncoding)
	if err != nil {
		return fmt.Errorf("--sink-encoding: %w", err)
	}
	if f.duration <= 0 {
		return errors.New("--duration must be positive")
	}

	if f.channels < 1 {
		return errors.New("--channels must be at least 1")
	}

	host, release, err := f.rt.openHost(hostOptions{encoding: enc, lowLatency: f.lowLatency, maxChannels: f.channels})
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn("releasing audio host", "err", err)
		}
	}()

	stats, err := audcap.Record(cmd.Context(), host, f.output, f.duration, f.drain,
		capture.WithDevice(f.device),
		capture.WithSinkEncoding(sink),
		capture.WithLogger(log.With("component", "capture")),
		capture.WithClock(f.rt.clock),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Recording %s complete! (%d frames, %d dropped)\n", f.output, stats.Frames, stats.Dropped)
	return nil
}
