// SPDX-License-Identifier: EPL-2.0

package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audcap"
	"github.com/ik5/audcap/internal/config"
	"github.com/ik5/audcap/internal/log"
	"github.com/ik5/audcap/playback"
	"github.com/ik5/audcap/playback/speaker"
)

type playFlags struct {
	rate   int
	buffer time.Duration
}

func newPlayCmd(cfg config.Config) *cobra.Command {
	var flags playFlags

	cmd := &cobra.Command{
		Use:   "play <file>",
		Short: "Play a WAV, MP3, Ogg Vorbis or AIFF file",
		Args:  cobra.ExactArgs(1),
		RunE:  flags.runPlayCommand,
	}

	cmd.Flags().IntVar(&flags.rate, "rate", cfg.OutputRate, "Output sample rate in Hz")
	cmd.Flags().DurationVar(&flags.buffer, "buffer", cfg.OutputBuffer, "Output buffer length")

	return cmd
}

func (f *playFlags) runPlayCommand(cmd *cobra.Command, args []string) error {
	src, err := audcap.Open(args[0])
	if err != nil {
		return err
	}

	out, err := speaker.Open(f.rate, f.buffer)
	if err != nil {
		src.Close()
		return err
	}
	defer out.Close()

	s := playback.NewSession(out, playback.WithLogger(log.With("component", "playback")))
	s.Append(src)

	log.Info("playing", "file", args[0], "rate", src.SampleRate(), "channels", src.Channels())
	return s.SleepUntilEnd(cmd.Context())
}
