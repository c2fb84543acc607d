package domain

import (
	"fmt"
	"math/big"
	"strings"
)

// MaxPopulationDigits is the precision of the population columns.
const MaxPopulationDigits = 30

// maxPopulationExp bounds the binary exponent of float-notation input so that
// no value above 2^100 (31 decimal digits) is ever materialized.
const maxPopulationExp = 100

// ParsePopulation parses a decimal population value. Integral values written in
// exponent or fractional notation ("3.3e8", "12.0") are accepted; fractions are
// truncated toward zero. Negative, infinite and values longer than
// MaxPopulationDigits digits are rejected.
func ParsePopulation(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		f, _, err := big.ParseFloat(s, 10, 256, big.ToZero)
		if err != nil {
			return nil, fmt.Errorf("population %q: not a number", s)
		}
		if f.IsInf() {
			return nil, fmt.Errorf("population %q: must be finite", s)
		}
		if f.MantExp(nil) > maxPopulationExp {
			return nil, fmt.Errorf("population %q: exceeds %d digits", s, MaxPopulationDigits)
		}
		n, _ = f.Int(nil)
	}

	if n.Sign() < 0 {
		return nil, fmt.Errorf("population %q: must not be negative", s)
	}
	if len(n.String()) > MaxPopulationDigits {
		return nil, fmt.Errorf("population %q: exceeds %d digits", s, MaxPopulationDigits)
	}
	return n, nil
}

// FormatPopulation renders a population as a decimal string. A nil value renders as "0".
func FormatPopulation(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}
