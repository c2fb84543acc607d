package postgres

import (
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
)

var bigTen = big.NewInt(10)

// NumericFromBigInt encodes an arbitrary-precision integer as NUMERIC. nil encodes as 0.
func NumericFromBigInt(n *big.Int) pgtype.Numeric {
	if n == nil {
		n = new(big.Int)
	}
	return pgtype.Numeric{Int: new(big.Int).Set(n), Exp: 0, Valid: true}
}

// BigIntFromNumeric decodes a NUMERIC into an integer, applying the exponent.
// Fractional digits are truncated; NULL and NaN decode as 0.
func BigIntFromNumeric(n pgtype.Numeric) *big.Int {
	if !n.Valid || n.NaN || n.Int == nil {
		return new(big.Int)
	}

	out := new(big.Int).Set(n.Int)
	switch {
	case n.Exp > 0:
		out.Mul(out, new(big.Int).Exp(bigTen, big.NewInt(int64(n.Exp)), nil))
	case n.Exp < 0:
		out.Quo(out, new(big.Int).Exp(bigTen, big.NewInt(int64(-n.Exp)), nil))
	}
	return out
}
