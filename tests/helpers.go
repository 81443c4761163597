package tests

import (
	"math/big"
	"strings"
)

// parseUnits converts decimal string amount into the integer amount with
// the given precision, e.g. ("0.5", 18) -> 5 * 10^17.
func parseUnits(amount string, decimals int) *big.Int {
	whole, fraction, _ := strings.Cut(amount, ".")
	if len(fraction) > decimals {
		panic("too many decimal places in " + amount)
	}

	n, ok := new(big.Int).SetString(whole+fraction+strings.Repeat("0", decimals-len(fraction)), 10)
	if !ok {
		panic("invalid amount " + amount)
	}
	return n
}

func sum(values ...*big.Int) *big.Int {
	res := new(big.Int)
	for i := range values {
		res.Add(res, values[i])
	}
	return res
}
