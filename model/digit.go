package model

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrOutOfRange is returned for a digit that is neither Off nor in 0..9.
var ErrOutOfRange = errors.New("digit out of range")

// BCDWidth is the number of bits one digit occupies on the digit chain.
const BCDWidth = 4

// Digit is one Nixie tube value. The zero value is Off.
type Digit struct {
	val int
	set bool
}

// Off blanks a tube.
var Off = Digit{}

// D returns a digit showing v. Values outside 0..9 are kept as given and
// rejected when encoded.
func D(v int) Digit {
	return Digit{val: v, set: true}
}

// Value reports the digit and whether it is set at all.
func (d Digit) Value() (int, bool) {
	return d.val, d.set
}

func (d Digit) IsOff() bool {
	return !d.set
}

func (d Digit) Valid() bool {
	return !d.set || (d.val >= 0 && d.val <= 9)
}

func (d Digit) String() string {
	if !d.set {
		return "off"
	}
	return strconv.Itoa(d.val)
}

// EncodeDigit returns the BCD code for d, most significant bit first. Off
// encodes as all high, which the tube decoder treats as no digit.
func EncodeDigit(d Digit) ([BCDWidth]bool, error) {
	var out [BCDWidth]bool
	if !d.set {
		for i := range out {
			out[i] = true
		}
		return out, nil
	}
	if d.val < 0 || d.val > 9 {
		return out, fmt.Errorf("%w: %d is not off or 0..9", ErrOutOfRange, d.val)
	}
	for i := range out {
		out[i] = d.val&(1<<(BCDWidth-1-i)) != 0
	}
	return out, nil
}

// DecodeDigit is the inverse of EncodeDigit as seen by a 74141 style decoder:
// any code above 9 blanks the tube.
func DecodeDigit(code [BCDWidth]bool) Digit {
	v := 0
	for _, b := range code {
		v <<= 1
		if b {
			v |= 1
		}
	}
	if v > 9 {
		return Off
	}
	return D(v)
}
