package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-nixie/board"
	"github.com/coreman2200/funtimes-nixie/internal/config"
	"github.com/coreman2200/funtimes-nixie/internal/gpiohost"
	"github.com/coreman2200/funtimes-nixie/internal/sim"
	"github.com/coreman2200/funtimes-nixie/shiftreg"
)

var (
	// Global flags
	configPath string
	driver     string
	verbose    int

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "nixie",
	Short: "Drive the Raspberry Pi Nixie tube driver board",
	Long: `Sample programs for the six tube Nixie driver board with six LEDs.

Examples:
  nixie digits --digit1 4 --digit3 9        # show "4-9---"
  nixie leds --led1 --led6                  # light the outer LEDs
  nixie clock --led-mode STROBE_RL          # run a clock
  nixie demo --driver sim                   # walk the digits without hardware`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "nixie.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "", "output driver: periph | sim (overrides config)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "lower the log level, repeat for more")
}

func setup(cmd *cobra.Command, args []string) error {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	c, err := config.Load(configPath)
	switch {
	case err == nil:
		cfg = c
	case errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config"):
		cfg = config.Default()
	default:
		log.Warn().Err(err).Str("path", configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}
	if driver != "" {
		cfg.Driver = driver
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	lvl, err := cfg.Level()
	if err != nil {
		return err
	}
	lvl -= zerolog.Level(verbose)
	if lvl < zerolog.DebugLevel {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// newHost opens the periph backend.
var newHost = gpiohost.New

// openBoard builds a board on the configured driver. The periph driver falls
// back to the emulator when the host has no usable GPIO or lacks one of the
// board's pins.
func openBoard() (*board.Board, error) {
	bc, err := cfg.Board()
	if err != nil {
		return nil, err
	}

	var ctrl shiftreg.Controller
	switch cfg.Driver {
	case config.DriverPeriph:
		h, err := newHost(log.Logger)
		if err == nil {
			err = h.Available(bc.Pins.All())
		}
		if err != nil {
			log.Warn().Err(err).Str("driver", cfg.Driver).Msg("GPIO unavailable; falling back to sim")
			ctrl = newSim(bc)
		} else {
			ctrl = h
		}
	default:
		ctrl = newSim(bc)
	}
	return board.New(ctrl, bc, board.WithLogger(log.Logger))
}

func newSim(bc board.Config) *sim.Emulator {
	em := sim.New(bc)
	r := sim.NewRenderer(em)
	em.OnChange = func() {
		if err := r.Render(); err != nil {
			log.Debug().Err(err).Msg("sim render failed")
		}
	}
	return em
}

// withBoard initializes a board, runs fn and always shuts the board down.
func withBoard(clear board.Clear, fn func(*board.Board) error) (err error) {
	b, err := openBoard()
	if err != nil {
		return err
	}
	if err := b.Initialize(clear); err != nil {
		if serr := b.Shutdown(board.ClearNone); serr != nil && !errors.Is(serr, board.ErrNotInitialized) {
			log.Warn().Err(serr).Msg("release after failed init")
		}
		return err
	}
	defer func() {
		err = errors.Join(err, b.Shutdown(clear))
	}()
	return fn(b)
}
