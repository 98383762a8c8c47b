//go:build unix

package loop

import (
	"context"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestRunStopsOnSignal(t *testing.T) {
	l := &Looper{
		Interval: time.Hour,
		Log:      zerolog.Nop(),
		Signals:  []os.Signal{syscall.SIGUSR1},
		Step: func(time.Duration) error {
			return syscall.Kill(syscall.Getpid(), syscall.SIGUSR1)
		},
	}
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop on signal")
	}
}
