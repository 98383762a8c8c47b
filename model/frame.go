package model

import (
	"fmt"
	"strings"
)

// Positions is the number of tubes and the number of LEDs on the board.
const Positions = 6

// Digits holds one frame for the tubes, index 0 being the leftmost tube.
// Omitted entries of a keyed literal are Off:
//
//	model.Digits{0: model.D(4), 2: model.D(9)}
type Digits [Positions]Digit

// LEDs holds one frame for the indicator LEDs, index 0 being LED1.
type LEDs [Positions]bool

// Validate reports the first digit that cannot be encoded.
func (d Digits) Validate() error {
	for i, v := range d {
		if !v.Valid() {
			return fmt.Errorf("digit%d: %w: %d", i+1, ErrOutOfRange, v.val)
		}
	}
	return nil
}

// Push drops the leftmost tube and appends v on the right.
func (d Digits) Push(v Digit) Digits {
	copy(d[:], d[1:])
	d[Positions-1] = v
	return d
}

// String renders the frame with '-' for blank tubes, e.g. "4-9-17".
func (d Digits) String() string {
	var sb strings.Builder
	for _, v := range d {
		if v.IsOff() {
			sb.WriteByte('-')
			continue
		}
		sb.WriteString(v.String())
	}
	return sb.String()
}

// ParseDigits reads a frame written the way Digits.String writes it. A space
// also blanks a tube and a short string is padded with Off on the right.
func ParseDigits(s string) (Digits, error) {
	var d Digits
	if len(s) > Positions {
		return d, fmt.Errorf("%q has %d positions, board has %d", s, len(s), Positions)
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '-' || c == ' ':
			d[i] = Off
		case c >= '0' && c <= '9':
			d[i] = D(int(c - '0'))
		default:
			return d, fmt.Errorf("position %d: %w: %q", i+1, ErrOutOfRange, c)
		}
	}
	return d, nil
}

// Push drops LED1 and appends on as LED6.
func (l LEDs) Push(on bool) LEDs {
	copy(l[:], l[1:])
	l[Positions-1] = on
	return l
}

// String renders lit LEDs as '*' and dark ones as '.'.
func (l LEDs) String() string {
	var sb strings.Builder
	for _, on := range l {
		if on {
			sb.WriteByte('*')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
