package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-nixie/board"
)

var ErrInvalid = errors.New("invalid config")

const (
	DriverPeriph = "periph"
	DriverSim    = "sim"
)

type Chain struct {
	SER   string `yaml:"ser"`   // serial data
	SRCLK string `yaml:"srclk"` // shift clock
	RCLK  string `yaml:"rclk"`  // latch
	NOE   string `yaml:"noe"`   // output enable, active low
}

type Pins struct {
	LED   Chain `yaml:"led"`
	Digit Chain `yaml:"digit"`
}

type Config struct {
	Driver      string `yaml:"driver"` // "periph" | "sim"
	PulseRateHz int    `yaml:"pulse_rate_hz"`
	LogLevel    string `yaml:"log_level"`
	LEDWidth    int    `yaml:"led_width"`
	DigitWidth  int    `yaml:"digit_width"`

	Pins Pins `yaml:"pins"`
}

// Default mirrors board.DefaultConfig.
func Default() *Config {
	d := board.DefaultConfig()
	p := d.Pins
	return &Config{
		Driver:      DriverPeriph,
		PulseRateHz: 10000,
		LogLevel:    zerolog.InfoLevel.String(),
		LEDWidth:    d.LEDWidth,
		DigitWidth:  d.DigitWidth,
		Pins: Pins{
			LED:   Chain{SER: p[board.LEDData], SRCLK: p[board.LEDClock], RCLK: p[board.LEDLatch], NOE: p[board.LEDEnable]},
			Digit: Chain{SER: p[board.DigitData], SRCLK: p[board.DigitClock], RCLK: p[board.DigitLatch], NOE: p[board.DigitEnable]},
		},
	}
}

// Load reads path over the defaults, so a file only needs the keys it changes.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPeriph, DriverSim:
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalid, c.Driver)
	}
	if c.PulseRateHz <= 0 {
		return fmt.Errorf("%w: pulse_rate_hz must be positive, got %d", ErrInvalid, c.PulseRateHz)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c *Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.InfoLevel, nil
	}
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return l, nil
}

// Board converts the file into a checked board.Config.
func (c *Config) Board() (board.Config, error) {
	rate := physic.Frequency(c.PulseRateHz) * physic.Hertz
	bc := board.Config{
		Pins: board.PinMap{
			board.LEDData:     c.Pins.LED.SER,
			board.LEDClock:    c.Pins.LED.SRCLK,
			board.LEDLatch:    c.Pins.LED.RCLK,
			board.LEDEnable:   c.Pins.LED.NOE,
			board.DigitData:   c.Pins.Digit.SER,
			board.DigitClock:  c.Pins.Digit.SRCLK,
			board.DigitLatch:  c.Pins.Digit.RCLK,
			board.DigitEnable: c.Pins.Digit.NOE,
		},
		LEDWidth:   c.LEDWidth,
		DigitWidth: c.DigitWidth,
		PulseWidth: rate.Period(),
	}
	if err := bc.Validate(); err != nil {
		return bc, err
	}
	return bc, nil
}
