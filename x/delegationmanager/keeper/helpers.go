package keeper

import (
	"strconv"

	"cosmossdk.io/collections"
	sdkmath "cosmossdk.io/math"

	restaking "github.com/bvs-restaking/engine/types"
)

func operatorStrategyKey(operator, strategy restaking.Address) collections.Pair[string, string] {
	return collections.Join(string(operator), string(strategy))
}

func zeroUint() sdkmath.Uint {
	return sdkmath.ZeroUint()
}

func uintToString(n uint64) string {
	return strconv.FormatUint(n, 10)
}
