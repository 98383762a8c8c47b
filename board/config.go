package board

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreman2200/funtimes-nixie/model"
	"github.com/coreman2200/funtimes-nixie/shiftreg"
)

// ErrConfig is returned for a pin map or chain layout the board cannot use.
var ErrConfig = errors.New("invalid board config")

// Line is one of the eight logical lines driving the board.
type Line uint8

const (
	LEDData Line = iota
	LEDClock
	LEDLatch
	LEDEnable
	DigitData
	DigitClock
	DigitLatch
	DigitEnable
	lineCount
)

var lineNames = [lineCount]string{
	"led-ser", "led-srclk", "led-rclk", "led-noe",
	"digit-ser", "digit-srclk", "digit-rclk", "digit-noe",
}

func (l Line) String() string {
	if l < lineCount {
		return lineNames[l]
	}
	return fmt.Sprintf("Line(%d)", uint8(l))
}

// Lines lists every line in declaration order.
func Lines() []Line {
	out := make([]Line, lineCount)
	for i := range out {
		out[i] = Line(i)
	}
	return out
}

// PinMap binds each line to a GPIO pin name.
type PinMap map[Line]string

// LEDPins returns the LED chain lines.
func (m PinMap) LEDPins() shiftreg.Pins {
	return shiftreg.Pins{SER: m[LEDData], SRCLK: m[LEDClock], RCLK: m[LEDLatch], NOE: m[LEDEnable]}
}

// DigitPins returns the digit chain lines.
func (m PinMap) DigitPins() shiftreg.Pins {
	return shiftreg.Pins{SER: m[DigitData], SRCLK: m[DigitClock], RCLK: m[DigitLatch], NOE: m[DigitEnable]}
}

// All returns every pin in Line order.
func (m PinMap) All() []string {
	out := make([]string, 0, lineCount)
	for _, l := range Lines() {
		out = append(out, m[l])
	}
	return out
}

// DefaultPins is the wiring of the Raspberry Pi Nixie tube driver board,
// given as BCM names. Header positions are in the comments.
func DefaultPins() PinMap {
	return PinMap{
		LEDData:     "GPIO22", // P1_15
		LEDClock:    "GPIO23", // P1_16
		LEDLatch:    "GPIO10", // P1_19
		LEDEnable:   "GPIO24", // P1_18
		DigitData:   "GPIO17", // P1_11
		DigitClock:  "GPIO18", // P1_12
		DigitLatch:  "GPIO14", // P1_8
		DigitEnable: "GPIO27", // P1_13
	}
}

// Config is the fixed hardware description of a board.
type Config struct {
	Pins       PinMap
	LEDWidth   int // bits on the LED chain
	DigitWidth int // bits on the digit chain
	PulseWidth time.Duration
}

func DefaultConfig() Config {
	return Config{
		Pins:       DefaultPins(),
		LEDWidth:   model.Positions,
		DigitWidth: model.Positions * model.BCDWidth,
		PulseWidth: shiftreg.DefaultPulseWidth,
	}
}

func (c Config) Validate() error {
	seen := map[string]Line{}
	for _, l := range Lines() {
		p, ok := c.Pins[l]
		if !ok || p == "" {
			return fmt.Errorf("%w: no pin for %s", ErrConfig, l)
		}
		if prev, dup := seen[p]; dup {
			return fmt.Errorf("%w: pin %s used by %s and %s", ErrConfig, p, prev, l)
		}
		seen[p] = l
	}
	if c.LEDWidth < model.Positions {
		return fmt.Errorf("%w: LED chain of %d bits cannot hold %d LEDs", ErrConfig, c.LEDWidth, model.Positions)
	}
	if c.DigitWidth < model.Positions*model.BCDWidth {
		return fmt.Errorf("%w: digit chain of %d bits cannot hold %d digits", ErrConfig, c.DigitWidth, model.Positions)
	}
	if c.PulseWidth < 0 {
		return fmt.Errorf("%w: negative pulse width %s", ErrConfig, c.PulseWidth)
	}
	return nil
}
