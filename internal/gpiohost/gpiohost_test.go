package gpiohost

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/coreman2200/funtimes-nixie/board"
	"github.com/coreman2200/funtimes-nixie/model"
)

func fakePins(names ...string) (map[string]*gpiotest.Pin, Lookup) {
	m := map[string]*gpiotest.Pin{}
	for i, n := range names {
		m[n] = &gpiotest.Pin{N: n, Num: i, L: gpio.High}
	}
	return m, func(name string) gpio.PinIO {
		if p, ok := m[name]; ok {
			return p
		}
		return nil
	}
}

func TestSetupOutRelease(t *testing.T) {
	pins, lookup := fakePins("GPIO22", "GPIO23")
	h := NewWithLookup(lookup, zerolog.Nop())

	require.NoError(t, h.Setup([]string{"GPIO22", "GPIO23"}, gpio.Low))
	assert.Equal(t, gpio.Low, pins["GPIO22"].L)
	assert.Equal(t, gpio.Low, pins["GPIO23"].L)

	require.NoError(t, h.Out("GPIO23", gpio.High))
	assert.Equal(t, gpio.High, pins["GPIO23"].L)

	require.NoError(t, h.Release([]string{"GPIO22", "GPIO23"}))
	assert.ErrorIs(t, h.Out("GPIO23", gpio.Low), ErrNotSetup)
	assert.NoError(t, h.Release([]string{"GPIO22"}), "releasing twice is harmless")
}

func TestSetupUnknownPin(t *testing.T) {
	pins, lookup := fakePins("GPIO22")
	h := NewWithLookup(lookup, zerolog.Nop())

	err := h.Setup([]string{"GPIO22", "GPIO99"}, gpio.Low)
	assert.ErrorIs(t, err, ErrNoPin)
	assert.Equal(t, gpio.High, pins["GPIO22"].L, "nothing is driven when a pin is missing")
	assert.ErrorIs(t, h.Out("GPIO22", gpio.Low), ErrNotSetup)
}

func TestAvailable(t *testing.T) {
	pins, lookup := fakePins("GPIO22", "GPIO23")
	h := NewWithLookup(lookup, zerolog.Nop())

	assert.NoError(t, h.Available([]string{"GPIO22", "GPIO23"}))
	err := h.Available([]string{"GPIO22", "GPIO17", "GPIO27"})
	assert.ErrorIs(t, err, ErrNoPin)
	assert.Contains(t, err.Error(), "GPIO17, GPIO27")
	assert.Equal(t, gpio.High, pins["GPIO22"].L, "checking drives nothing")
}

func TestBoardOverPeriphPins(t *testing.T) {
	cfg := board.DefaultConfig()
	cfg.PulseWidth = 0
	pins, lookup := fakePins(cfg.Pins.All()...)
	b, err := board.New(NewWithLookup(lookup, zerolog.Nop()), cfg)
	require.NoError(t, err)

	require.NoError(t, b.Initialize(board.ClearAll))
	assert.Equal(t, gpio.Low, pins[cfg.Pins[board.LEDEnable]].L)
	require.NoError(t, b.SetDigits(model.Digits{0: model.D(3)}))
	require.NoError(t, b.Shutdown(board.ClearAll))
	assert.Equal(t, gpio.High, pins[cfg.Pins[board.DigitEnable]].L, "outputs stay disabled after release")
}
