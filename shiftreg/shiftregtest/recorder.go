// Package shiftregtest provides a recording shiftreg.Controller for tests.
package shiftregtest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// ErrNotConfigured is returned by Out for a pin that was never set up or was
// released.
var ErrNotConfigured = errors.New("shiftregtest: pin not configured")

type Op uint8

const (
	OpSetup Op = iota
	OpOut
	OpRelease
)

func (o Op) String() string {
	switch o {
	case OpSetup:
		return "setup"
	case OpOut:
		return "out"
	case OpRelease:
		return "release"
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Event is one call that reached the controller and succeeded.
type Event struct {
	Op    Op
	Pin   string
	Pins  []string
	Level gpio.Level
}

func (e Event) String() string {
	if e.Op == OpOut {
		return fmt.Sprintf("out(%s, %s)", e.Pin, e.Level)
	}
	return fmt.Sprintf("%s(%v)", e.Op, e.Pins)
}

// Recorder remembers every call made to it. Fail, when set, is consulted
// before each call; a non-nil result is returned and the call is dropped.
// Fail runs with the recorder locked and must not call back into it.
type Recorder struct {
	Fail func(Event) error

	mu         sync.Mutex
	events     []Event
	sleeps     []time.Duration
	configured map[string]bool
	levels     map[string]gpio.Level
}

func (r *Recorder) init() {
	if r.configured == nil {
		r.configured = map[string]bool{}
		r.levels = map[string]gpio.Level{}
	}
}

func (r *Recorder) Setup(pins []string, initial gpio.Level) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()
	ev := Event{Op: OpSetup, Pins: append([]string(nil), pins...), Level: initial}
	if r.Fail != nil {
		if err := r.Fail(ev); err != nil {
			return err
		}
	}
	for _, p := range pins {
		r.configured[p] = true
		r.levels[p] = initial
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Out(pin string, l gpio.Level) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()
	ev := Event{Op: OpOut, Pin: pin, Level: l}
	if r.Fail != nil {
		if err := r.Fail(ev); err != nil {
			return err
		}
	}
	if !r.configured[pin] {
		return fmt.Errorf("%w: %s", ErrNotConfigured, pin)
	}
	r.levels[pin] = l
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Release(pins []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.init()
	ev := Event{Op: OpRelease, Pins: append([]string(nil), pins...)}
	if r.Fail != nil {
		if err := r.Fail(ev); err != nil {
			return err
		}
	}
	for _, p := range pins {
		delete(r.configured, p)
	}
	r.events = append(r.events, ev)
	return nil
}

// Sleep records d instead of sleeping. It satisfies shiftreg.Sleeper.
func (r *Recorder) Sleep(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sleeps = append(r.sleeps, d)
}

// Reset forgets the recorded history but keeps pin state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.sleeps = nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *Recorder) Sleeps() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.sleeps...)
}

// Level is the last level driven on pin.
func (r *Recorder) Level(pin string) gpio.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.levels[pin]
}

func (r *Recorder) Configured(pin string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.configured[pin]
}

// Outs returns the level writes to pin in order.
func (r *Recorder) Outs(pin string) []gpio.Level {
	var out []gpio.Level
	for _, ev := range r.Events() {
		if ev.Op == OpOut && ev.Pin == pin {
			out = append(out, ev.Level)
		}
	}
	return out
}

// Rising returns the indexes into Events at which pin went from low to high.
func (r *Recorder) Rising(pin string) []int {
	var idx []int
	var level gpio.Level
	for i, ev := range r.Events() {
		switch ev.Op {
		case OpSetup:
			for _, p := range ev.Pins {
				if p == pin {
					level = ev.Level
				}
			}
		case OpOut:
			if ev.Pin != pin {
				continue
			}
			if ev.Level && !level {
				idx = append(idx, i)
			}
			level = ev.Level
		}
	}
	return idx
}

// Shifted returns the level of ser at every rising edge of srclk, which is
// what a shift register samples.
func (r *Recorder) Shifted(ser, srclk string) []bool {
	var bits []bool
	levels := map[string]gpio.Level{}
	for _, ev := range r.Events() {
		switch ev.Op {
		case OpSetup:
			for _, p := range ev.Pins {
				levels[p] = ev.Level
			}
		case OpOut:
			if ev.Pin == srclk && ev.Level && !levels[srclk] {
				bits = append(bits, bool(levels[ser]))
			}
			levels[ev.Pin] = ev.Level
		}
	}
	return bits
}

// FailOutAfter returns a Fail func that lets n writes through and then
// fails every following write with err.
func FailOutAfter(n int, err error) func(Event) error {
	return func(ev Event) error {
		if ev.Op != OpOut {
			return nil
		}
		if n > 0 {
			n--
			return nil
		}
		return err
	}
}
