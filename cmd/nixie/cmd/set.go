package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/coreman2200/funtimes-nixie/board"
	"github.com/coreman2200/funtimes-nixie/model"
)

var (
	ledFlags   model.LEDs
	digitFlags [model.Positions]int
)

var ledsCmd = &cobra.Command{
	Use:   "leds",
	Short: "Set the LEDs; LEDs not given are turned off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		leds := ledFlags
		return withBoard(board.ClearNone, func(b *board.Board) error {
			for i, on := range leds {
				state := "OFF"
				if on {
					state = "ON"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "led%d=%s\n", i+1, state)
			}
			return b.SetLEDs(leds)
		})
	},
}

var digitsCmd = &cobra.Command{
	Use:   "digits",
	Short: "Set the Nixie tubes; tubes not given are turned off",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var digits model.Digits
		for i := range digits {
			if cmd.Flags().Changed(digitFlag(i)) {
				digits[i] = model.D(digitFlags[i])
			}
		}
		// Reject bad input before the board is touched at all.
		if err := digits.Validate(); err != nil {
			return err
		}
		return withBoard(board.ClearNone, func(b *board.Board) error {
			for i, d := range digits {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", digitFlag(i), d)
			}
			return b.SetDigits(digits)
		})
	},
}

func digitFlag(i int) string {
	return "digit" + strconv.Itoa(i+1)
}

func init() {
	for i := range ledFlags {
		ledsCmd.Flags().BoolVar(&ledFlags[i], "led"+strconv.Itoa(i+1), false, fmt.Sprintf("turn LED%d on", i+1))
	}
	for i := range digitFlags {
		digitsCmd.Flags().IntVar(&digitFlags[i], digitFlag(i), 0, fmt.Sprintf("value 0-9 for tube %d", i+1))
	}
	rootCmd.AddCommand(ledsCmd, digitsCmd)
}
