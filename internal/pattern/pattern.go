// Package pattern produces the frames shown by the sample programs.
package pattern

import (
	"fmt"
	"strings"
	"time"

	"github.com/coreman2200/funtimes-nixie/model"
)

// LEDMode selects how the LEDs move while a program runs.
type LEDMode string

const (
	StrobeLR LEDMode = "STROBE_LR"
	StrobeRL LEDMode = "STROBE_RL"
	Strobe   LEDMode = "STROBE"
	On       LEDMode = "ON"
	Off      LEDMode = "OFF"
)

// ParseLEDMode accepts any of allowed, ignoring case.
func ParseLEDMode(s string, allowed ...LEDMode) (LEDMode, error) {
	m := LEDMode(strings.ToUpper(s))
	for _, a := range allowed {
		if m == a {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown LED mode %q, want one of %v", s, allowed)
}

func (m LEDMode) strobing() bool {
	return strings.HasPrefix(string(m), string(Strobe))
}

// Ring is a fixed length run of LED states that can be rotated.
type Ring struct {
	states []bool
}

// NewRing fills n states with the mode's resting value: lit unless mode is
// Off. A strobing mode darkens the last state so there is something to move.
func NewRing(n int, mode LEDMode) *Ring {
	r := &Ring{states: make([]bool, n)}
	for i := range r.states {
		r.states[i] = mode != Off
	}
	if mode.strobing() && n > 0 {
		r.states[n-1] = false
	}
	return r
}

// Step moves the ring one place in the direction of mode.
func (r *Ring) Step(mode LEDMode) {
	n := len(r.states)
	if n < 2 {
		return
	}
	switch mode {
	case StrobeLR:
		last := r.states[n-1]
		copy(r.states[1:], r.states[:n-1])
		r.states[0] = last
	case StrobeRL:
		first := r.states[0]
		copy(r.states, r.states[1:])
		r.states[n-1] = first
	}
}

// LEDs lays the ring out from LED1. States past the sixth are dropped.
func (r *Ring) LEDs() model.LEDs {
	var l model.LEDs
	copy(l[:], r.states)
	return l
}

const (
	TimeLayout = "150405"
	DateLayout = "060102"
)

// ClockDigits formats t shifted by offset as HHMMSS, or YYMMDD when date
// is set.
func ClockDigits(t time.Time, offset time.Duration, date bool) model.Digits {
	layout := TimeLayout
	if date {
		layout = DateLayout
	}
	d, _ := model.ParseDigits(t.Add(offset).Format(layout))
	return d
}

// Walk scrolls 0..9 across the tubes. In Strobe mode one LED goes dark for
// each digit value in turn, then a full cycle runs with every LED lit.
type Walk struct {
	mode    LEDMode
	numbers []model.Digit
	digits  model.Digits
	leds    model.LEDs
	next    int
	blank   int // len(numbers) means no LED is blanked
}

// NewWalk starts with 4..9 on the tubes. offTest adds a blank tube to the
// sequence.
func NewWalk(mode LEDMode, offTest bool) *Walk {
	w := &Walk{mode: mode}
	for i := 0; i <= 9; i++ {
		w.numbers = append(w.numbers, model.D(i))
	}
	if offTest {
		w.numbers = append(w.numbers, model.Off)
	}
	for i := range w.digits {
		w.digits[i] = model.D(4 + i)
		w.leds[i] = mode != Off
	}
	return w
}

// Frame is what should be on the board now.
func (w *Walk) Frame() (model.Digits, model.LEDs) {
	return w.digits, w.leds
}

// Advance scrolls the next number in from the right.
func (w *Walk) Advance() {
	n := w.numbers[w.next]
	w.digits = w.digits.Push(n)
	if w.mode == Strobe {
		w.leds = w.leds.Push(w.blank == len(w.numbers) || n != w.numbers[w.blank])
	}
	w.next++
	if w.next == len(w.numbers) {
		w.next = 0
		w.blank = (w.blank + 1) % (len(w.numbers) + 1)
	}
}
