package types

import (
	sdkmath "cosmossdk.io/math"
)

// SharesOffset and BalanceOffset are the virtual-offset constants that
// remove the first-depositor share-price manipulation. They are part of
// the protocol's security model and must never be parameterized per
// deployment.
var (
	SharesOffset = sdkmath.NewUint(1_000_000_000_000_000_000)
	BalanceOffset = sdkmath.NewUint(1_000_000_000_000_000_000)
)

// Address is an opaque bech32-style principal identifier. The engine never
// interprets its structure; it is passed verbatim to the token/strategy
// interfaces.
type Address string

// SharesForDeposit applies the virtual-offset share-price formula:
//
//	new_shares = amount * (S + SHARES_OFFSET) / ((B + BALANCE_OFFSET) - amount)
//
// sdkmath.Uint wraps an arbitrary-precision big.Int, so the
// amount*virtualShares intermediate, which can reach roughly 2^192, never
// overflows a fixed-width type.
func SharesForDeposit(amount, totalSharesBefore, balanceAfter sdkmath.Uint) (sdkmath.Uint, error) {
	if amount.IsZero() {
		return sdkmath.ZeroUint(), errInvalidArgument("deposit amount must be non-zero")
	}
	virtualShares := totalSharesBefore.Add(SharesOffset)
	virtualBalance := balanceAfter.Add(BalanceOffset)
	if virtualBalance.LT(amount) {
		return sdkmath.ZeroUint(), errInvalidArgument("deposit amount exceeds virtual balance")
	}
	denom := virtualBalance.Sub(amount)
	if denom.IsZero() {
		return sdkmath.ZeroUint(), errInvalidArgument("zero denominator in share price formula")
	}
	return amount.Mul(virtualShares).Quo(denom), nil
}

func errInvalidArgument(msg string) error {
	return ErrInvalidArgument.Wrap(msg)
}

