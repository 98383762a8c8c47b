// Package loop runs a refresh step on a fixed interval until interrupted.
package loop

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Step is called once per tick with the time since the loop started.
type Step func(elapsed time.Duration) error

type Looper struct {
	Interval time.Duration
	Step     Step
	Log      zerolog.Logger

	// Signals stop the loop; nil means SIGINT and SIGTERM.
	Signals []os.Signal
}

// Run calls Step immediately and then on every tick. It returns nil when ctx
// is done or a signal arrives, and the step's error if one fails.
func (l *Looper) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := l.Signals
	if sigs == nil {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	c := make(chan os.Signal, 1)
	signal.Notify(c, sigs...)
	defer signal.Stop(c)

	start := time.Now()
	if err := l.Step(0); err != nil {
		return err
	}

	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := l.Step(time.Since(start)); err != nil {
				return err
			}

		case sig := <-c:
			l.Log.Info().Str("signal", sig.String()).Msg("interrupted, cleaning up")
			return nil

		case <-ctx.Done():
			return nil
		}
	}
}
