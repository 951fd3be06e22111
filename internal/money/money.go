// Package money holds monetary amounts as integer minor units (cents).
//
// Every computed step rounds half-up to two decimals so totals, fees and net
// amounts never drift between currencies or across repeated arithmetic.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a monetary value in minor units (1/100 of the currency unit).
type Amount int64

// FromFloat converts a decimal major-unit value (e.g. 12.345) to an Amount,
// rounding half-up.
func FromFloat(v float64) Amount {
	return Amount(roundHalfUp(v * 100))
}

// FromMinor wraps a minor-unit integer.
func FromMinor(v int64) Amount {
	return Amount(v)
}

// Parse reads a decimal string such as "1000", "12.5" or "-800.00".
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse amount: empty string")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return FromFloat(f), nil
}

// Minor returns the amount in minor units.
func (a Amount) Minor() int64 {
	return int64(a)
}

// Float returns the amount in major units.
func (a Amount) Float() float64 {
	return float64(a) / 100
}

// Mul multiplies by an integer quantity. Exact, no rounding needed.
func (a Amount) Mul(qty int) Amount {
	return a * Amount(qty)
}

// MulRate multiplies by a fractional rate and rounds half-up to the cent.
func (a Amount) MulRate(rate float64) Amount {
	return Amount(roundHalfUp(float64(a) * rate))
}

// Neg returns the negated amount.
func (a Amount) Neg() Amount {
	return -a
}

// String renders the amount with exactly two decimals, e.g. "-800.00".
func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON emits a JSON number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		*a = 0
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// UnitFee computes the per-unit service fee in fractional minor units:
// price*rate + flat. Callers multiply by quantity before rounding so the
// rounding happens once per line.
func UnitFee(price Amount, rate float64, flat Amount) float64 {
	return float64(price)*rate + float64(flat)
}

// LineFee returns round((price*rate + flat) * qty).
func LineFee(price Amount, rate float64, flat Amount, qty int) Amount {
	return Amount(roundHalfUp(UnitFee(price, rate, flat) * float64(qty)))
}

// roundHalfUp rounds to the nearest integer with .5 going up (away from zero
// for positive values). A small epsilon absorbs binary float noise such as
// 0.285*100 = 28.499999999999996.
func roundHalfUp(v float64) int64 {
	const eps = 1e-9
	if v < 0 {
		return -int64(math.Floor(-v + 0.5 + eps))
	}
	return int64(math.Floor(v + 0.5 + eps))
}
