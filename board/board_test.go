package board_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/funtimes-nixie/board"
	"github.com/coreman2200/funtimes-nixie/internal/sim"
	. "github.com/coreman2200/funtimes-nixie/model"
	"github.com/coreman2200/funtimes-nixie/shiftreg/shiftregtest"
)

var pins = board.DefaultPins()

func newBoard(t *testing.T) (*board.Board, *shiftregtest.Recorder) {
	t.Helper()
	rec := &shiftregtest.Recorder{}
	b, err := board.New(rec, board.DefaultConfig(), board.WithSleeper(rec.Sleep))
	require.NoError(t, err)
	return b, rec
}

func ready(t *testing.T) (*board.Board, *shiftregtest.Recorder) {
	t.Helper()
	b, rec := newBoard(t)
	require.NoError(t, b.Initialize(board.ClearNone))
	rec.Reset()
	return b, rec
}

func ledShifted(rec *shiftregtest.Recorder) []bool {
	return rec.Shifted(pins[board.LEDData], pins[board.LEDClock])
}

func digitShifted(rec *shiftregtest.Recorder) []bool {
	return rec.Shifted(pins[board.DigitData], pins[board.DigitClock])
}

func bitsOf(s string) []bool {
	s = strings.ReplaceAll(s, " ", "")
	out := make([]bool, len(s))
	for i := range s {
		out[i] = s[i] == '1'
	}
	return out
}

func TestSetLEDsReversesOrder(t *testing.T) {
	b, rec := ready(t)
	require.NoError(t, b.SetLEDs(LEDs{true, false, true, false, true, true}))
	assert.Equal(t, bitsOf("110101"), ledShifted(rec), "LED6 is shifted in first")
	assert.Len(t, rec.Rising(pins[board.LEDLatch]), 1)
	assert.Empty(t, rec.Rising(pins[board.DigitLatch]), "digit chain untouched")
}

func TestSetLEDsIsIdempotent(t *testing.T) {
	b, rec := ready(t)
	require.NoError(t, b.SetLEDs(LEDs{0: true}))
	first := ledShifted(rec)
	rec.Reset()
	require.NoError(t, b.SetLEDs(LEDs{0: true}))
	assert.Equal(t, first, ledShifted(rec))
	assert.Equal(t, bitsOf("000001"), first)
}

func TestSetDigitsDefaultsToOff(t *testing.T) {
	b, rec := ready(t)
	require.NoError(t, b.SetDigits(Digits{}))
	assert.Equal(t, bitsOf(strings.Repeat("1", 24)), digitShifted(rec))
	assert.Len(t, rec.Rising(pins[board.DigitLatch]), 1)
}

func TestSetDigitsScenario(t *testing.T) {
	b, rec := ready(t)
	require.NoError(t, b.SetDigits(Digits{0: D(4), 2: D(9), 4: D(1), 5: D(7)}))

	// Shifted as [7, 1, off, 9, off, 4].
	want := bitsOf("0111 0001 1111 1001 1111 0100")
	assert.Equal(t, want, digitShifted(rec))

	clocks := rec.Rising(pins[board.DigitClock])
	latches := rec.Rising(pins[board.DigitLatch])
	assert.Len(t, clocks, 24)
	require.Len(t, latches, 1)
	assert.Greater(t, latches[0], clocks[len(clocks)-1])
}

func TestSetDigitsOutOfRangeTouchesNothing(t *testing.T) {
	for _, v := range []int{-1, 10, 42} {
		b, rec := ready(t)
		err := b.SetDigits(Digits{0: D(1), 3: D(v)})
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.Contains(t, err.Error(), "digit4")
		assert.Empty(t, rec.Events(), "validation must happen before any line moves")
	}
}

func TestSetBeforeInitialize(t *testing.T) {
	b, rec := newBoard(t)
	assert.ErrorIs(t, b.SetLEDs(LEDs{}), board.ErrNotInitialized)
	assert.ErrorIs(t, b.SetDigits(Digits{}), board.ErrNotInitialized)
	assert.Empty(t, rec.Events())
}

func TestInitialize(t *testing.T) {
	b, rec := newBoard(t)
	require.NoError(t, b.Initialize(board.ClearAll))

	evs := rec.Events()
	require.NotEmpty(t, evs)
	assert.Equal(t, shiftregtest.OpSetup, evs[0].Op)
	assert.Equal(t, pins.All(), evs[0].Pins)
	assert.Equal(t, gpio.Low, evs[0].Level)

	assert.Equal(t, bitsOf("000000"), ledShifted(rec))
	assert.Equal(t, bitsOf(strings.Repeat("1", 24)), digitShifted(rec))
	assert.Equal(t, gpio.Low, rec.Level(pins[board.LEDEnable]))
	assert.Equal(t, gpio.Low, rec.Level(pins[board.DigitEnable]))
}

func TestInitializeWithoutClear(t *testing.T) {
	b, rec := newBoard(t)
	require.NoError(t, b.Initialize(board.ClearNone))
	assert.Len(t, rec.Events(), 1, "only the setup")
}

func TestInitializeShutdownDefaults(t *testing.T) {
	b, rec := newBoard(t)
	require.NoError(t, b.Initialize(board.ClearAll))
	rec.Reset()
	require.NoError(t, b.Shutdown(board.ClearAll))

	evs := rec.Events()
	require.NotEmpty(t, evs)

	// Both enables go high before any shifting starts.
	assert.Equal(t, shiftregtest.Event{Op: shiftregtest.OpOut, Pin: pins[board.DigitEnable], Level: gpio.High}, evs[0])
	assert.Equal(t, shiftregtest.Event{Op: shiftregtest.OpOut, Pin: pins[board.LEDEnable], Level: gpio.High}, evs[1])

	assert.Len(t, rec.Rising(pins[board.LEDLatch]), 1)
	assert.Len(t, rec.Rising(pins[board.DigitLatch]), 1)
	assert.Equal(t, bitsOf("000000"), ledShifted(rec))

	last := evs[len(evs)-1]
	assert.Equal(t, shiftregtest.OpRelease, last.Op)
	assert.Equal(t, pins.All(), last.Pins)
	for _, p := range pins.All() {
		assert.False(t, rec.Configured(p))
	}
	assert.ErrorIs(t, b.SetLEDs(LEDs{}), board.ErrNotInitialized)
}

func TestShutdownReleasesOnFailure(t *testing.T) {
	boom := errors.New("board unplugged")
	b, rec := ready(t)
	rec.Fail = shiftregtest.FailOutAfter(3, boom)

	err := b.Shutdown(board.ClearAll)
	assert.ErrorIs(t, err, boom)

	evs := rec.Events()
	require.NotEmpty(t, evs)
	assert.Equal(t, shiftregtest.OpRelease, evs[len(evs)-1].Op)
	assert.False(t, rec.Configured(pins[board.LEDData]))
}

func TestShutdownJoinsReleaseError(t *testing.T) {
	boom := errors.New("clear failed")
	stuck := errors.New("release failed")
	b, rec := ready(t)
	rec.Fail = func(ev shiftregtest.Event) error {
		if ev.Op == shiftregtest.OpRelease {
			return stuck
		}
		return boom
	}
	err := b.Shutdown(board.ClearAll)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, stuck)
}

func TestShutdownWithoutClear(t *testing.T) {
	b, rec := ready(t)
	require.NoError(t, b.Shutdown(board.ClearNone))
	evs := rec.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, shiftregtest.OpRelease, evs[0].Op)
}

func TestShutdownBeforeInitialize(t *testing.T) {
	b, rec := newBoard(t)
	assert.ErrorIs(t, b.Shutdown(board.ClearAll), board.ErrNotInitialized)
	evs := rec.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, shiftregtest.OpRelease, evs[0].Op)
}

func TestShutdownLogsOnlyWhenInitialized(t *testing.T) {
	var buf bytes.Buffer
	rec := &shiftregtest.Recorder{}
	b, err := board.New(rec, board.DefaultConfig(), board.WithSleeper(rec.Sleep),
		board.WithLogger(zerolog.New(&buf).Level(zerolog.InfoLevel)))
	require.NoError(t, err)

	assert.ErrorIs(t, b.Shutdown(board.ClearNone), board.ErrNotInitialized)
	assert.NotContains(t, buf.String(), "board shut down")

	require.NoError(t, b.Initialize(board.ClearNone))
	buf.Reset()
	require.NoError(t, b.Shutdown(board.ClearNone))
	assert.Contains(t, buf.String(), "board shut down")
}

func TestEndToEndOnEmulator(t *testing.T) {
	cfg := board.DefaultConfig()
	cfg.PulseWidth = 0
	em := sim.New(cfg)
	b, err := board.New(em, cfg)
	require.NoError(t, err)

	require.NoError(t, b.Initialize(board.ClearAll))
	assert.Equal(t, Digits{}, em.Digits())
	assert.Equal(t, LEDs{}, em.LEDs())

	require.NoError(t, b.SetDigits(Digits{0: D(4), 2: D(9), 4: D(1), 5: D(7)}))
	require.NoError(t, b.SetLEDs(LEDs{true, false, true, false, true, true}))
	assert.Equal(t, "4-9-17", em.Digits().String())
	assert.Equal(t, LEDs{true, false, true, false, true, true}, em.LEDs())

	require.NoError(t, b.SetDigits(Digits{D(1), D(2), D(3), D(4), D(5), D(6)}))
	assert.Equal(t, "123456", em.Digits().String())

	require.NoError(t, b.Shutdown(board.ClearAll))
	assert.Equal(t, Digits{}, em.Digits())
	assert.Equal(t, LEDs{}, em.LEDs())
	for _, p := range cfg.Pins.All() {
		assert.False(t, em.Configured(p))
	}
}

func TestWiderChainsArePadded(t *testing.T) {
	cfg := board.DefaultConfig()
	cfg.PulseWidth = 0
	cfg.LEDWidth = 8
	cfg.DigitWidth = 32
	em := sim.New(cfg)
	b, err := board.New(em, cfg)
	require.NoError(t, err)
	require.NoError(t, b.Initialize(board.ClearAll))

	require.NoError(t, b.SetDigits(Digits{D(9), D(8), D(7), D(6), D(5), D(4)}))
	require.NoError(t, b.SetLEDs(LEDs{0: true, 5: true}))
	assert.Equal(t, "987654", em.Digits().String())
	assert.Equal(t, LEDs{0: true, 5: true}, em.LEDs())
}
