// Package keeper implements DelegationManager: operator registration,
// staker→operator delegation, operator-share bookkeeping, and the
// two-phase withdrawal queue.
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
	"github.com/bvs-restaking/engine/x/delegationmanager/types"
)

// Params bundles the owner-tunable delay/window caps.
type Params struct {
	MaxStakerOptOutWindowBlocks uint64
	MaxWithdrawalDelayBlocks uint64
	MinWithdrawalDelayBlocksDefault uint64
}

// Keeper owns operator identity, the delegation mapping, operator-share
// aggregation and the two-phase withdrawal queue.
type Keeper struct {
	logger zerolog.Logger
	metrics *metrics.Collectors

	strategyManager types.StrategyManager
	params Params

	Schema collections.Schema
	OperatorDetailsMap collections.Map[string, types.OperatorDetails]
	DelegatedTo collections.Map[string, string]
	OperatorShares collections.Map[collections.Pair[string, string], sdkmath.Uint]
	CumulativeWithdrawalsQueued collections.Map[string, uint64]
	PendingWithdrawals collections.KeySet[string]
	MinWithdrawalDelayBlocks collections.Item[uint64]
	StrategyWithdrawalDelayBlocks collections.Map[string, uint64]
	Owner collections.Item[string]
}

// NewKeeper builds a DelegationManager keeper wired to a StrategyManager
// collaborator: dependency order places StrategyManager before
// DelegationManager.
func NewKeeper(
	storeService corestore.KVStoreService,
	base zerolog.Logger,
	mcs *metrics.Collectors,
	strategyManager types.StrategyManager,
	owner restaking.Address,
	params Params) Keeper {
	sb := collections.NewSchemaBuilder(storeService)
	k := Keeper{
		logger: log.Component(base, types.ModuleName),
		metrics: mcs,
		strategyManager: strategyManager,
		params: params,
		OperatorDetailsMap: collections.NewMap(sb, types.PrefixOperatorDetails, "operator_details",
			collections.StringKey, store.JSONValueCodec[types.OperatorDetails]("OperatorDetails")),
		DelegatedTo: collections.NewMap(sb, types.PrefixDelegatedTo, "delegated_to",
			collections.StringKey, store.JSONValueCodec[string]("string")),
		OperatorShares: collections.NewMap(sb, types.PrefixOperatorShares, "operator_shares",
			collections.PairKeyCodec(collections.StringKey, collections.StringKey),
			store.JSONValueCodec[sdkmath.Uint]("Uint")),
		CumulativeWithdrawalsQueued: collections.NewMap(sb, types.PrefixCumulativeWithdrawalsQueued, "cumulative_withdrawals_queued",
			collections.StringKey, store.JSONValueCodec[uint64]("uint64")),
		PendingWithdrawals: collections.NewKeySet(sb, types.PrefixPendingWithdrawals, "pending_withdrawals",
			collections.StringKey),
		MinWithdrawalDelayBlocks: collections.NewItem(sb, types.PrefixMinWithdrawalDelayBlocks, "min_withdrawal_delay_blocks",
			store.JSONValueCodec[uint64]("uint64")),
		StrategyWithdrawalDelayBlocks: collections.NewMap(sb, types.PrefixStrategyWithdrawalDelayBlocks, "strategy_withdrawal_delay_blocks",
			collections.StringKey, store.JSONValueCodec[uint64]("uint64")),
		Owner: collections.NewItem(sb, types.PrefixOwner, "owner",
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
	if err := k.MinWithdrawalDelayBlocks.Set(genesisCtx, params.MinWithdrawalDelayBlocksDefault); err != nil {
		panic(err)
	}
	return k
}

// SetStrategyManager wires the StrategyManager dispatch target after
// construction, matching StrategyManager's own SetDelegationHook pattern
// for breaking constructor cycles.
func (k *Keeper) SetStrategyManager(sm types.StrategyManager) {
	k.strategyManager = sm
}

func (k Keeper) Logger() zerolog.Logger { return k.logger }

