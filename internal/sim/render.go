package sim

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/display"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-nixie/model"
)

var (
	ledOn  = color.NRGBA{R: 255, G: 96, A: 255}
	ledOff = color.NRGBA{R: 24, G: 24, B: 24, A: 255}
)

// Renderer prints the emulated tubes and draws the LED row on the terminal.
// The screen device only writes to stdout, so the tubes go there too and a
// frame is never split across streams.
type Renderer struct {
	Emulator *Emulator
	drawer   display.Drawer
	out      io.Writer
}

func NewRenderer(e *Emulator) *Renderer {
	return &Renderer{
		Emulator: e,
		drawer:   screen.New(model.Positions),
		out:      colorable.NewColorableStdout(),
	}
}

func (r *Renderer) Render() error {
	if _, err := fmt.Fprintf(r.out, "[%s] ", r.Emulator.Digits()); err != nil {
		return err
	}
	if err := r.drawer.Draw(r.drawer.Bounds(), LEDImage(r.Emulator.LEDs()), image.Point{}); err != nil {
		return err
	}
	_, err := fmt.Fprintf(r.out, "\n")
	return err
}

// LEDImage renders leds as a one pixel high strip, LED1 leftmost.
func LEDImage(leds model.LEDs) *image.NRGBA {
	im := image.NewNRGBA(image.Rect(0, 0, len(leds), 1))
	for x, on := range leds {
		c := ledOff
		if on {
			c = ledOn
		}
		im.SetNRGBA(x, 0, c)
	}
	return im
}
