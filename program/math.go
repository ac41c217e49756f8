package program

import (
	"math/bits"

	solvbtc "github.com/solv-finance/SolvBTC-Solana-Contract"
)

// mulDiv computes a*b/den with a 128-bit intermediate, matching the u128
// widening the on-chain arithmetic uses. Fails with MathOverflow when den is
// zero or the quotient does not fit in 64 bits.
func mulDiv(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, solvbtc.ErrMathOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		return 0, solvbtc.ErrMathOverflow
	}
	quo, _ := bits.Div64(hi, lo, den)
	return quo, nil
}
