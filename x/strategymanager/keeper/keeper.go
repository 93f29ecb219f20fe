// Package keeper implements StrategyManager: share accounting for token
// deposits into isolated strategy vaults, using a virtual-offset ratio to
// resist first-depositor inflation attacks.
package keeper

import (
	"context"

	"cosmossdk.io/collections"
	corestore "cosmossdk.io/core/store"
	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/bvs-restaking/engine/log"
	"github.com/bvs-restaking/engine/metrics"
	"github.com/bvs-restaking/engine/store"
	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/strategymanager/types"
)

// Keeper owns the strategy registry and every staker's per-strategy share
// balance. Strategy vaults are owned by StrategyManager and never mutate
// their own total_shares outside a Deposit/Withdraw dispatch.
type Keeper struct {
	logger zerolog.Logger
	metrics *metrics.Collectors

	vaults types.VaultRegistry
	tokens types.TokenRegistry

	// delegation is dispatched on every deposit (AddShares does not
	// dispatch it). It is
	// nil-able so StrategyManager can be exercised standalone in tests.
	delegation types.DelegationHook

	maxStakerStrategyListLength int

	Schema collections.Schema
	Strategies collections.Map[string, types.StrategyRecord]
	StrategyByToken collections.Map[string, string]
	DepositWhitelist collections.KeySet[string]
	BlacklistedTokens collections.KeySet[string]
	StakerStrategyShares collections.Map[collections.Pair[string, string], sdkmath.Uint]
	StakerStrategyList collections.Map[string, []string]
	Owner collections.Item[string]
	Whitelister collections.Item[string]
}

// NewKeeper builds a StrategyManager keeper. owner becomes both the
// initial owner and whitelister, mirroring the original contract's
// single-admin instantiation.
func NewKeeper(
	storeService corestore.KVStoreService,
	base zerolog.Logger,
	mcs *metrics.Collectors,
	vaults types.VaultRegistry,
	tokens types.TokenRegistry,
	owner restaking.Address,
	maxStakerStrategyListLength int) Keeper {
	sb := collections.NewSchemaBuilder(storeService)
	k := Keeper{
		logger: log.Component(base, types.ModuleName),
		metrics: mcs,
		vaults: vaults,
		tokens: tokens,
		maxStakerStrategyListLength: maxStakerStrategyListLength,
		Strategies: collections.NewMap(sb, types.PrefixStrategies, "strategies",
			collections.StringKey, store.JSONValueCodec[types.StrategyRecord]("StrategyRecord")),
		StrategyByToken: collections.NewMap(sb, types.PrefixStrategyByToken, "strategy_by_token",
			collections.StringKey, store.JSONValueCodec[string]("string")),
		DepositWhitelist: collections.NewKeySet(sb, types.PrefixDepositWhitelist, "deposit_whitelist",
			collections.StringKey),
		BlacklistedTokens: collections.NewKeySet(sb, types.PrefixBlacklistedTokens, "blacklisted_tokens",
			collections.StringKey),
		StakerStrategyShares: collections.NewMap(sb, types.PrefixStakerStrategyShares, "staker_strategy_shares",
			collections.PairKeyCodec(collections.StringKey, collections.StringKey),
			store.JSONValueCodec[sdkmath.Uint]("Uint")),
		StakerStrategyList: collections.NewMap(sb, types.PrefixStakerStrategyList, "staker_strategy_list",
			collections.StringKey, store.JSONValueCodec[[]string]("[]string")),
		Owner: collections.NewItem(sb, types.PrefixOwner, "owner",
			store.JSONValueCodec[string]("string")),
		Whitelister: collections.NewItem(sb, types.PrefixWhitelister, "whitelister",
			store.JSONValueCodec[string]("string")),
	}
	schema, err := sb.Build()
	if err != nil {
		panic(err)
	}
	k.Schema = schema

	genesisCtx := context.Background()
	if err := k.Owner.Set(genesisCtx, string(owner)); err != nil {
		panic(err)
	}
	if err := k.Whitelister.Set(genesisCtx, string(owner)); err != nil {
		panic(err)
	}
	return k
}

// SetDelegationHook wires the DelegationManager dispatch target after
// construction, breaking the otherwise-circular dependency between the two
// keepers' constructors (DelegationManager needs a StrategyManager
// reference too).
func (k *Keeper) SetDelegationHook(hook types.DelegationHook) {
	k.delegation = hook
}

func (k Keeper) Logger() zerolog.Logger { return k.logger }
