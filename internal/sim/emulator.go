// Package sim emulates the driver board in software: two 74HC595 chains,
// the 74141 BCD decoders behind the digit chain and the output enables.
package sim

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/funtimes-nixie/board"
	"github.com/coreman2200/funtimes-nixie/model"
	"github.com/coreman2200/funtimes-nixie/shiftreg"
)

var ErrNotSetup = errors.New("sim: pin not set up")

type register struct {
	pins    shiftreg.Pins
	shift   []bool
	latched []bool
}

// Emulator is a shiftreg.Controller that behaves like the board's chips.
// Q0 is the register nearest the serial input.
type Emulator struct {
	// OnChange, when set, is called after a latch or an output enable change.
	// It runs without the emulator lock held.
	OnChange func()

	mu         sync.Mutex
	levels     map[string]gpio.Level
	configured map[string]bool
	led        *register
	digit      *register
	latches    int
}

func New(cfg board.Config) *Emulator {
	return &Emulator{
		levels:     map[string]gpio.Level{},
		configured: map[string]bool{},
		led:        newRegister(cfg.Pins.LEDPins(), cfg.LEDWidth),
		digit:      newRegister(cfg.Pins.DigitPins(), cfg.DigitWidth),
	}
}

func newRegister(pins shiftreg.Pins, width int) *register {
	return &register{pins: pins, shift: make([]bool, width), latched: make([]bool, width)}
}

func (e *Emulator) Setup(pins []string, initial gpio.Level) error {
	e.mu.Lock()
	for _, p := range pins {
		e.configured[p] = true
	}
	e.mu.Unlock()
	for _, p := range pins {
		if err := e.Out(p, initial); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emulator) Out(pin string, l gpio.Level) error {
	e.mu.Lock()
	if !e.configured[pin] {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotSetup, pin)
	}
	prev := e.levels[pin]
	e.levels[pin] = l
	changed := false
	for _, r := range []*register{e.led, e.digit} {
		rising := l && !prev
		switch pin {
		case r.pins.SRCLK:
			if rising {
				copy(r.shift[1:], r.shift[:len(r.shift)-1])
				r.shift[0] = bool(e.levels[r.pins.SER])
			}
		case r.pins.RCLK:
			if rising {
				copy(r.latched, r.shift)
				e.latches++
				changed = true
			}
		case r.pins.NOE:
			changed = changed || l != prev
		}
	}
	notify := e.OnChange
	e.mu.Unlock()

	if changed && notify != nil {
		notify()
	}
	return nil
}

// Release leaves the registers as they are; only the lines float.
func (e *Emulator) Release(pins []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range pins {
		delete(e.configured, p)
	}
	return nil
}

func (e *Emulator) Configured(pin string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.configured[pin]
}

// Latches counts latch pulses seen on either chain.
func (e *Emulator) Latches() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latches
}

// nOE is active low.
func (e *Emulator) enabled(r *register) bool {
	return !bool(e.levels[r.pins.NOE])
}

// LEDs returns what the LEDs show. Q0 is LED1.
func (e *Emulator) LEDs() model.LEDs {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out model.LEDs
	if !e.enabled(e.led) {
		return out
	}
	for i := range out {
		out[i] = e.led.latched[i]
	}
	return out
}

// Digits returns what the tubes show. Tube n reads Q(4n-4)..Q(4n-1), the
// lowest register holding the least significant bit.
func (e *Emulator) Digits() model.Digits {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out model.Digits
	if !e.enabled(e.digit) {
		return out
	}
	for i := range out {
		var code [model.BCDWidth]bool
		for j := 0; j < model.BCDWidth; j++ {
			code[model.BCDWidth-1-j] = e.digit.latched[i*model.BCDWidth+j]
		}
		out[i] = model.DecodeDigit(code)
	}
	return out
}

func (e *Emulator) String() string {
	return e.Digits().String() + " " + e.LEDs().String()
}
