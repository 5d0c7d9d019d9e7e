// SPDX-License-Identifier: EPL-2.0

package main

import (
	"github.com/spf13/cobra"

	"github.com/ik5/audcap/audio"
	"github.com/ik5/audcap/device"
	"github.com/ik5/audcap/device/portaudio"
	"github.com/ik5/audcap/internal/clock"
	"github.com/ik5/audcap/internal/config"
	"github.com/ik5/audcap/internal/log"
)

// hostOpener returns an input host and the function releasing it.
type hostOpener func(opts hostOptions) (device.Host, func() error, error)

// hostOptions is what the record flags ask of the hardware host.
type hostOptions struct {
	encoding    audio.Encoding
	lowLatency  bool
	maxChannels int
}

// deps is what the commands need from the outside world.
type deps struct {
	openHost hostOpener
	clock    clock.Clock
}

func defaultDeps() deps {
	return deps{openHost: openPortAudio, clock: clock.Real{}}
}

func openPortAudio(o hostOptions) (device.Host, func() error, error) {
	opts := []portaudio.Option{portaudio.WithEncoding(o.encoding)}
	if o.lowLatency {
		opts = append(opts, portaudio.WithLowLatency())
	}
	if o.maxChannels > 0 {
		opts = append(opts, portaudio.WithMaxChannels(o.maxChannels))
	}

	h, err := portaudio.Open(opts...)
	if err != nil {
		return nil, nil, err
	}
	return h, h.Close, nil
}

type rootFlags struct {
	logLevel string
}

func newRootCmd(cfg config.Config, rt deps) *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "audcap",
		Short: "Record audio input and play spatial audio",
		Example: `  audcap record -o take1.wav -d 5s
  audcap play assets/music.ogg
  audcap spatial assets/music.ogg --repeats 2`,
		PersistentPreRun: func(*cobra.Command, []string) {
			log.Init(flags.logLevel)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	cmd.AddCommand(newRecordCmd(cfg, rt))
	cmd.AddCommand(newPlayCmd(cfg))
	cmd.AddCommand(newSpatialCmd(cfg))

	return cmd
}

// encodingName is the flag form of enc; the empty string stands for
// EncodingUnknown.
func encodingName(enc audio.Encoding) string {
	if enc == audio.EncodingUnknown {
		return ""
	}
	return enc.String()
}

func parseEncoding(s string) (audio.Encoding, error) {
	if s == "" {
		return audio.EncodingUnknown, nil
	}
	return audio.ParseEncoding(s)
}
