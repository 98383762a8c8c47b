// Package board drives the Nixie tube driver board: six tubes behind a 24 bit
// BCD shift register chain and six LEDs behind a second chain.
//
// The registers are the only record of what is displayed. Every Set call
// writes a whole frame; there is no read back and no partial update.
package board

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/funtimes-nixie/model"
	"github.com/coreman2200/funtimes-nixie/shiftreg"
)

// ErrNotInitialized is returned by the Set calls outside Initialize/Shutdown.
var ErrNotInitialized = errors.New("board not initialized")

// Clear selects the chains Initialize and Shutdown blank.
type Clear struct {
	LEDs   bool
	Digits bool
}

var (
	ClearAll  = Clear{LEDs: true, Digits: true}
	ClearNone = Clear{}
)

type Option func(*Board)

func WithLogger(l zerolog.Logger) Option {
	return func(b *Board) { b.log = l }
}

// WithSleeper replaces the sleep used to time pulses.
func WithSleeper(s shiftreg.Sleeper) Option {
	return func(b *Board) { b.sleep = s }
}

type Board struct {
	mu     sync.Mutex
	ctrl   shiftreg.Controller
	cfg    Config
	leds   *shiftreg.Chain
	digits *shiftreg.Chain
	log    zerolog.Logger
	sleep  shiftreg.Sleeper
	ready  bool
}

// New checks cfg and binds the two chains to ctrl. No line is touched until
// Initialize.
func New(ctrl shiftreg.Controller, cfg Config, opts ...Option) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		ctrl: ctrl,
		cfg:  cfg,
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(b)
	}
	b.leds = b.chain("led", cfg.Pins.LEDPins(), cfg.LEDWidth)
	b.digits = b.chain("digit", cfg.Pins.DigitPins(), cfg.DigitWidth)
	return b, nil
}

func (b *Board) chain(name string, pins shiftreg.Pins, width int) *shiftreg.Chain {
	c := shiftreg.NewChain(b.ctrl, name, pins, width)
	c.PulseWidth = b.cfg.PulseWidth
	c.Log = b.log
	if b.sleep != nil {
		c.Sleep = b.sleep
	}
	return c
}

func (b *Board) Config() Config {
	return b.cfg
}

// Initialize configures all eight lines as outputs at low, then blanks and
// enables each chain selected by clear. A chain that is not cleared keeps
// whatever its registers held, and its output enable is left low.
func (b *Board) Initialize(clear Clear) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.ctrl.Setup(b.cfg.Pins.All(), gpio.Low); err != nil {
		return err
	}
	b.ready = true
	b.log.Info().Bool("clear_leds", clear.LEDs).Bool("clear_digits", clear.Digits).Msg("board initialized")

	if clear.LEDs {
		if err := b.setLEDs(model.LEDs{}); err != nil {
			return err
		}
		if err := b.leds.Enable(); err != nil {
			return err
		}
	}
	if clear.Digits {
		if err := b.setDigits(model.Digits{}); err != nil {
			return err
		}
		if err := b.digits.Enable(); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown blanks the selected chains through their output enables, clears
// their registers and then releases every line. The release runs whatever
// happened before it; its error is joined with any earlier one.
func (b *Board) Shutdown(clear Clear) (err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	wasReady := b.ready
	defer func() {
		b.ready = false
		if rerr := b.ctrl.Release(b.cfg.Pins.All()); rerr != nil {
			err = errors.Join(err, fmt.Errorf("release lines: %w", rerr))
		}
		if !wasReady {
			b.log.Debug().Err(err).Msg("lines released without initialize")
			return
		}
		b.log.Info().Err(err).Msg("board shut down")
	}()

	if !b.ready {
		return ErrNotInitialized
	}
	if clear.Digits {
		if err := b.digits.Disable(); err != nil {
			return err
		}
	}
	if clear.LEDs {
		if err := b.leds.Disable(); err != nil {
			return err
		}
		if err := b.setLEDs(model.LEDs{}); err != nil {
			return err
		}
	}
	if clear.Digits {
		if err := b.setDigits(model.Digits{}); err != nil {
			return err
		}
	}
	return nil
}

// SetLEDs shows leds, LED1 first. LEDs left false are turned off.
func (b *Board) SetLEDs(leds model.LEDs) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.ready {
		return ErrNotInitialized
	}
	b.log.Info().Stringer("leds", leds).Msg("setting LED states")
	return b.setLEDs(leds)
}

func (b *Board) setLEDs(leds model.LEDs) error {
	// The first bit shifted in lands in the last register and LED1 is wired
	// to the first, so LED6 goes out first. Padding for a wider chain goes
	// out before that.
	bits := make([]bool, b.leds.Width)
	last := len(bits) - 1
	for i, on := range leds {
		bits[last-i] = on
	}
	return b.leds.Load(bits)
}

// SetDigits shows digits, tube 1 first. Off entries blank their tube. If
// any digit is out of range nothing is written.
func (b *Board) SetDigits(digits model.Digits) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.ready {
		return ErrNotInitialized
	}
	b.log.Info().Stringer("digits", digits).Msg("setting Nixie values")
	return b.setDigits(digits)
}

func (b *Board) setDigits(digits model.Digits) error {
	var codes [model.Positions][model.BCDWidth]bool
	for i, d := range digits {
		c, err := model.EncodeDigit(d)
		if err != nil {
			return fmt.Errorf("digit%d: %w", i+1, err)
		}
		b.log.Debug().Stringer("digit", d).Str("bcd", shiftreg.FormatBits(c[:])).Msg("encoded digit")
		codes[i] = c
	}

	// Same reversal as the LEDs, one BCD group at a time. Each group keeps its
	// MSB first order. Unused registers are held at the blank code.
	bits := make([]bool, b.digits.Width)
	pad := len(bits) - model.Positions*model.BCDWidth
	for i := 0; i < pad; i++ {
		bits[i] = true
	}
	k := pad
	for i := len(codes) - 1; i >= 0; i-- {
		for _, bit := range codes[i] {
			bits[k] = bit
			k++
		}
	}
	return b.digits.Load(bits)
}
