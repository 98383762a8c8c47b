package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-nixie/board"
	"github.com/coreman2200/funtimes-nixie/internal/loop"
	"github.com/coreman2200/funtimes-nixie/internal/pattern"
	"github.com/coreman2200/funtimes-nixie/model"
)

var (
	clockLEDMode    string
	clockHourOffset float64
	clockDate       bool

	demoLEDMode string
	demoDelay   time.Duration
	demoOffTest bool
)

var clockCmd = &cobra.Command{
	Use:   "clock",
	Short: "Show the time (or date) and strobe the LEDs; interrupt to exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := pattern.ParseLEDMode(clockLEDMode, pattern.StrobeLR, pattern.StrobeRL, pattern.On, pattern.Off)
		if err != nil {
			return err
		}
		offset := time.Duration(clockHourOffset * float64(time.Hour))
		ring := pattern.NewRing(model.Positions, mode)

		return withBoard(board.ClearAll, func(b *board.Board) error {
			l := &loop.Looper{
				Interval: time.Second,
				Log:      log.Logger,
				Step: func(time.Duration) error {
					if err := b.SetDigits(pattern.ClockDigits(time.Now(), offset, clockDate)); err != nil {
						return err
					}
					if err := b.SetLEDs(ring.LEDs()); err != nil {
						return err
					}
					ring.Step(mode)
					return nil
				},
			}
			log.Info().Str("led_mode", string(mode)).Dur("offset", offset).Msg("starting clock, interrupt to exit")
			return l.Run(cmd.Context())
		})
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk the tubes through 0-9 with LED patterns; interrupt to exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := pattern.ParseLEDMode(demoLEDMode, pattern.Strobe, pattern.On, pattern.Off)
		if err != nil {
			return err
		}
		if demoDelay <= 0 {
			return fmt.Errorf("delay must be positive, got %s", demoDelay)
		}
		walk := pattern.NewWalk(mode, demoOffTest)

		return withBoard(board.ClearAll, func(b *board.Board) error {
			l := &loop.Looper{
				Interval: demoDelay,
				Log:      log.Logger,
				Step: func(time.Duration) error {
					digits, leds := walk.Frame()
					if err := b.SetDigits(digits); err != nil {
						return err
					}
					if err := b.SetLEDs(leds); err != nil {
						return err
					}
					walk.Advance()
					return nil
				},
			}
			log.Info().Str("led_mode", string(mode)).Dur("delay", demoDelay).Msg("starting demo, interrupt to exit")
			return l.Run(cmd.Context())
		})
	},
}

func init() {
	clockCmd.Flags().StringVar(&clockLEDMode, "led-mode", string(pattern.StrobeLR), "STROBE_LR, STROBE_RL, ON or OFF")
	clockCmd.Flags().Float64Var(&clockHourOffset, "hour-offset", 0, "hours added to the local time")
	clockCmd.Flags().BoolVar(&clockDate, "date", false, "show YYMMDD instead of HHMMSS")

	demoCmd.Flags().StringVar(&demoLEDMode, "led-mode", string(pattern.Strobe), "STROBE, ON or OFF")
	demoCmd.Flags().DurationVarP(&demoDelay, "delay", "d", time.Second, "time each frame is shown")
	demoCmd.Flags().BoolVar(&demoOffTest, "off-test", false, "include a blank tube in the walk")

	rootCmd.AddCommand(clockCmd, demoCmd)
}
