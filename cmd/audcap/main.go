// SPDX-License-Identifier: EPL-2.0

// Command audcap records input devices to WAV files and plays audio assets,
// optionally through a moving spatial emitter.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ik5/audcap/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(config.Load(), defaultDeps()).ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "audcap:", err)
		os.Exit(1)
	}
}
