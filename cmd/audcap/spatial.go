// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audcap"
	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/internal/config"
	"github.com/ik5/audcap/internal/log"
	"github.com/ik5/audcap/playback"
	"github.com/ik5/audcap/playback/speaker"
	"github.com/ik5/audcap/spatial"
	"github.com/ik5/audcap/trajectory"
)

var (
	leftEar  = spatial.Vec3{X: -1}
	rightEar = spatial.Vec3{X: 1}
)

type spatialFlags struct {
	duration time.Duration
	distance float64
	tick     time.Duration
	repeats  int
	rate     int
	buffer   time.Duration
}

func newSpatialCmd(cfg config.Config) *cobra.Command {
	var flags spatialFlags

	cmd := &cobra.Command{
		Use:   "spatial [file]",
		Short: "Loop a file while the emitter sweeps left and right of the listener",
		Long: `Spatial plays the file on repeat for 2 x duration x repeats. The emitter
starts at the listener, moves to +distance, across to -distance and back to
the centre once per repeat, updating its position every tick.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset := cfg.Asset
			if len(args) == 1 {
				asset = args[0]
			}
			return flags.runSpatialCommand(cmd, asset)
		},
	}

	f := cmd.Flags()
	f.DurationVar(&flags.duration, "duration", cfg.TrajectoryDuration, "Time to sweep from the centre to one extreme")
	f.Float64Var(&flags.distance, "distance", cfg.TrajectoryDistance, "Distance of each extreme from the centre")
	f.DurationVar(&flags.tick, "tick", cfg.TrajectoryTick, "Interval between position updates")
	f.IntVar(&flags.repeats, "repeats", cfg.TrajectoryRepeats, "Number of full back-and-forth cycles")
	f.IntVar(&flags.rate, "rate", cfg.OutputRate, "Output sample rate in Hz")
	f.DurationVar(&flags.buffer, "buffer", cfg.OutputBuffer, "Output buffer length")

	return cmd
}

func (f *spatialFlags) runSpatialCommand(cmd *cobra.Command, asset string) error {
	plan, err := trajectory.NewPlan(f.duration, f.tick, f.distance, f.repeats)
	if err != nil {
		return err
	}

	src, err := audcap.Open(asset)
	if err != nil {
		return err
	}
	looped, err := audio.Loop(src)
	if err != nil {
		return fmt.Errorf("buffering %s: %w", asset, err)
	}
	total := 2 * f.duration * time.Duration(f.repeats)

	out, err := speaker.Open(f.rate, f.buffer)
	if err != nil {
		return err
	}
	defer out.Close()

	s := playback.NewSpatialSession(out, spatial.Vec3{}, leftEar, rightEar,
		playback.WithLogger(log.With("component", "playback")))
	s.Append(audio.Take(looped, total))

	ctrl := trajectory.NewController(plan, s, trajectory.WithLogger(log.With("component", "trajectory")))
	if err := ctrl.Run(cmd.Context()); err != nil {
		s.Stop()
		return err
	}

	return s.SleepUntilEnd(cmd.Context())
}
