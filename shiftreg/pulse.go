// Package shiftreg bit-bangs 74HC595 style serial-in/parallel-out shift
// register chains over four GPIO lines: serial data, shift clock, latch and
// an active low output enable.
package shiftreg

import (
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// DefaultRate is the nominal toggle rate of the clock and latch lines.
const DefaultRate = 10 * physic.KiloHertz

// DefaultPulseWidth is how long a clock or latch line is held away from rest.
var DefaultPulseWidth = DefaultRate.Period()

// Controller is the GPIO capability the chains are driven through. Pins are
// addressed by the names they were set up with.
type Controller interface {
	// Setup configures pins as outputs driven to initial.
	Setup(pins []string, initial gpio.Level) error
	// Out drives one configured pin.
	Out(pin string, l gpio.Level) error
	// Release returns pins to an unconfigured state.
	Release(pins []string) error
}

// Sleeper blocks for the given duration.
type Sleeper func(time.Duration)

// Pulse drives pin to the opposite of rest for width, then back to rest.
func Pulse(c Controller, pin string, rest gpio.Level, width time.Duration) error {
	return pulse(c, pin, rest, width, time.Sleep)
}

func pulse(c Controller, pin string, rest gpio.Level, width time.Duration, sleep Sleeper) (err error) {
	if err := c.Out(pin, !rest); err != nil {
		return err
	}
	// The line must go back to rest whatever happens during the hold.
	defer func() {
		if rerr := c.Out(pin, rest); rerr != nil && err == nil {
			err = rerr
		}
	}()
	if width > 0 {
		sleep(width)
	}
	return nil
}
