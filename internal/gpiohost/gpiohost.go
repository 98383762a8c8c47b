// Package gpiohost drives the board's lines through periph.io.
package gpiohost

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var (
	ErrNoPin    = errors.New("gpiohost: no such pin")
	ErrNotSetup = errors.New("gpiohost: pin not set up")
)

// Lookup resolves a pin name, returning nil when there is no such pin.
type Lookup func(name string) gpio.PinIO

// Host is a shiftreg.Controller over periph GPIO pins.
type Host struct {
	mu     sync.Mutex
	lookup Lookup
	pins   map[string]gpio.PinIO
	log    zerolog.Logger
}

// New loads the periph host drivers and resolves pins through gpioreg.
func New(log zerolog.Logger) (*Host, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	for _, f := range state.Failed {
		log.Debug().Str("driver", f.D.String()).Err(f.Err).Msg("periph driver failed")
	}
	return NewWithLookup(gpioreg.ByName, log), nil
}

// NewWithLookup skips host initialisation; pins come from lookup.
func NewWithLookup(lookup Lookup, log zerolog.Logger) *Host {
	return &Host{
		lookup: lookup,
		pins:   map[string]gpio.PinIO{},
		log:    log,
	}
}

// Available reports ErrNoPin naming every pin in names that lookup cannot
// resolve. Nothing is driven.
func (h *Host) Available(names []string) error {
	var missing []string
	for _, n := range names {
		if h.lookup(n) == nil {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrNoPin, strings.Join(missing, ", "))
	}
	return nil
}

func (h *Host) Setup(names []string, initial gpio.Level) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	resolved := make([]gpio.PinIO, len(names))
	for i, n := range names {
		p := h.lookup(n)
		if p == nil {
			return fmt.Errorf("%w: %s", ErrNoPin, n)
		}
		resolved[i] = p
	}
	for i, p := range resolved {
		if err := p.Out(initial); err != nil {
			return fmt.Errorf("set %s as output: %w", names[i], err)
		}
		h.pins[names[i]] = p
		h.log.Debug().Str("pin", names[i]).Str("gpio", p.Name()).Stringer("level", initial).Msg("pin configured")
	}
	return nil
}

func (h *Host) Out(name string, l gpio.Level) error {
	h.mu.Lock()
	p, ok := h.pins[name]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotSetup, name)
	}
	return p.Out(l)
}

// Release turns the pins back into floating inputs. Every pin is attempted;
// the errors are joined.
func (h *Host) Release(names []string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for _, n := range names {
		p, ok := h.pins[n]
		if !ok {
			continue
		}
		delete(h.pins, n)
		if err := p.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", n, err))
			continue
		}
		h.log.Debug().Str("pin", n).Msg("pin released")
	}
	return errors.Join(errs...)
}
