package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-nixie/model"
)

func TestParseLEDMode(t *testing.T) {
	m, err := ParseLEDMode("strobe_lr", StrobeLR, StrobeRL, On, Off)
	require.NoError(t, err)
	assert.Equal(t, StrobeLR, m)

	_, err = ParseLEDMode("STROBE", StrobeLR, StrobeRL, On, Off)
	assert.Error(t, err)
}

func TestRing(t *testing.T) {
	r := NewRing(6, StrobeLR)
	assert.Equal(t, model.LEDs{true, true, true, true, true, false}, r.LEDs())
	r.Step(StrobeLR)
	assert.Equal(t, model.LEDs{false, true, true, true, true, true}, r.LEDs())
	r.Step(StrobeRL)
	r.Step(StrobeRL)
	assert.Equal(t, model.LEDs{true, true, true, true, false, true}, r.LEDs())

	on := NewRing(4, On)
	on.Step(On)
	assert.Equal(t, model.LEDs{true, true, true, true, false, false}, on.LEDs(), "short ring leaves the rest off")

	off := NewRing(6, Off)
	assert.Equal(t, model.LEDs{}, off.LEDs())
}

func TestClockDigits(t *testing.T) {
	ts := time.Date(2026, 10, 18, 9, 5, 42, 0, time.UTC)
	assert.Equal(t, "090542", ClockDigits(ts, 0, false).String())
	assert.Equal(t, "261018", ClockDigits(ts, 0, true).String())
	assert.Equal(t, "113542", ClockDigits(ts, 150*time.Minute, false).String())
}

func TestWalkScrolls(t *testing.T) {
	w := NewWalk(On, false)
	d, l := w.Frame()
	assert.Equal(t, "456789", d.String())
	assert.Equal(t, "******", l.String())

	w.Advance()
	d, _ = w.Frame()
	assert.Equal(t, "567890", d.String())
	for i := 0; i < 9; i++ {
		w.Advance()
	}
	d, l = w.Frame()
	assert.Equal(t, "456789", d.String())
	assert.Equal(t, "******", l.String(), "ON mode never changes the LEDs")
}

func TestWalkStrobe(t *testing.T) {
	w := NewWalk(Strobe, false)
	// First cycle blanks the LED for digit 0.
	w.Advance()
	_, l := w.Frame()
	assert.Equal(t, "*****.", l.String())
	w.Advance()
	_, l = w.Frame()
	assert.Equal(t, "****.*", l.String())

	// Skip to the cycle with nothing blanked: cycles 0..9 blank one digit each.
	w = NewWalk(Strobe, false)
	for i := 0; i < 10*10; i++ {
		w.Advance()
	}
	for i := 0; i < 6; i++ {
		w.Advance()
	}
	_, l = w.Frame()
	assert.Equal(t, "******", l.String())
}

func TestWalkOffTest(t *testing.T) {
	w := NewWalk(Off, true)
	for i := 0; i < 11; i++ {
		w.Advance()
	}
	d, l := w.Frame()
	assert.Equal(t, "56789-", d.String())
	assert.Equal(t, model.LEDs{}, l)
}
