package shiftreg

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
)

// ErrWidth is returned when a bit sequence does not fill a chain exactly.
var ErrWidth = errors.New("bit sequence does not match chain width")

// Pins names the four lines of one chain.
type Pins struct {
	SER   string // serial data
	SRCLK string // shift clock
	RCLK  string // latch
	NOE   string // output enable, active low
}

// All returns the pins in SER, SRCLK, RCLK, NOE order.
func (p Pins) All() []string {
	return []string{p.SER, p.SRCLK, p.RCLK, p.NOE}
}

// Chain is one shift register chain and the lines that drive it.
type Chain struct {
	Name       string
	Pins       Pins
	Width      int
	PulseWidth time.Duration
	Sleep      Sleeper
	Log        zerolog.Logger

	ctrl Controller
}

func NewChain(ctrl Controller, name string, pins Pins, width int) *Chain {
	return &Chain{
		Name:       name,
		Pins:       pins,
		Width:      width,
		PulseWidth: DefaultPulseWidth,
		Sleep:      time.Sleep,
		Log:        zerolog.Nop(),
		ctrl:       ctrl,
	}
}

// Load shifts bits into the chain and latches them to the outputs. The first
// bit ends up in the last register of the chain.
//
// A failure while shifting returns before the latch, so whatever was latched
// before stays on the outputs.
func (c *Chain) Load(bits []bool) error {
	if len(bits) != c.Width {
		return fmt.Errorf("%w: chain %s is %d bits, got %d", ErrWidth, c.Name, c.Width, len(bits))
	}
	c.Log.Debug().
		Str("chain", c.Name).
		Str("ser", c.Pins.SER).
		Str("srclk", c.Pins.SRCLK).
		Str("rclk", c.Pins.RCLK).
		Str("bits", FormatBits(bits)).
		Msg("loading shift register")

	for _, b := range bits {
		if err := c.ctrl.Out(c.Pins.SER, gpio.Level(b)); err != nil {
			return err
		}
		if err := c.pulse(c.Pins.SRCLK); err != nil {
			return err
		}
	}
	return c.pulse(c.Pins.RCLK)
}

// Enable lets the outputs follow the latched contents.
func (c *Chain) Enable() error {
	return c.ctrl.Out(c.Pins.NOE, gpio.Low)
}

// Disable forces every output off without touching the latched contents.
func (c *Chain) Disable() error {
	return c.ctrl.Out(c.Pins.NOE, gpio.High)
}

func (c *Chain) pulse(pin string) error {
	sleep := c.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return pulse(c.ctrl, pin, gpio.Low, c.PulseWidth, sleep)
}

// FormatBits renders bits as a string of 0 and 1.
func FormatBits(bits []bool) string {
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, b := range bits {
		if b {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
