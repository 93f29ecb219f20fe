package keeper

import (
	"cosmossdk.io/collections"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	restaking "github.com/bvs-restaking/engine/types"
)

// GetOperatorShares returns every strategy operator has delegated shares
// in, and the per-strategy amount: the operator_shares ledger aggregated
// over every staker delegated to operator. SlashManager does not read it;
// it sums stakers' deposits via GetOperatorStakers instead.
func (k Keeper) GetOperatorShares(ctx sdk.Context, operator restaking.Address) ([]restaking.Address, []sdkmath.Uint, error) {
	rng := collections.NewPrefixedPairRange[string, string](string(operator))
	it, err := k.OperatorShares.Iterate(ctx.Context(), rng)
	if err != nil {
		return nil, nil, err
	}
	defer it.Close()

	var strategies []restaking.Address
	var shares []sdkmath.Uint
	for ; it.Valid(); it.Next() {
		kv, err := it.KeyValue()
		if err != nil {
			return nil, nil, err
		}
		strategies = append(strategies, restaking.Address(kv.Key.K2))
		shares = append(shares, kv.Value)
	}
	return strategies, shares, nil
}

