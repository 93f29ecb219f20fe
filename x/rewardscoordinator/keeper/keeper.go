// Package keeper implements RewardsCoordinator: BVS-funded rewards
// submissions, periodic distribution-root posting, and two-level Merkle
// proof claims with cumulative (not incremental) payout semantics.
package keeper

import (
	"context"

	"cosmossdk.io/collections"
	corestore "cosmossdk.io/core/store"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog"

	"github.com/bvs-restaking/engine/log"
	"github.com/bvs-restaking/engine/metrics"
	"github.com/bvs-restaking/engine/store"
	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/rewardscoordinator/types"
)

// Params bundles the owner-tunable bounds.
type Params struct {
	ActivationDelayDefault int64
	GlobalCommissionBipsDefault uint64
	MaxRewardsAmount sdkmath.Uint
	MaxRewardsDuration int64
	CalculationIntervalSeconds int64
	GenesisRewardsTimestamp int64
	MaxRetroactiveLength int64
	MaxFutureLength int64
}

// Keeper owns distribution roots, claim bookkeeping and submission
// escrow.
type Keeper struct {
	logger zerolog.Logger
	metrics *metrics.Collectors

	directory types.Directory
	tokens types.TokenRegistry
	strategy types.StrategyManager
	params Params

	Schema collections.Schema
	RewardsUpdater collections.Item[string]
	ActivationDelay collections.Item[int64]
	GlobalCommissionBips collections.Item[uint64]
	RewardsForAllSubmitter collections.KeySet[string]
	DistributionRoots collections.Map[uint64, types.DistributionRoot]
	RootSequence collections.Sequence
	CumulativeClaimed collections.Map[collections.Pair[string, string], sdkmath.Uint]
	ClaimerFor collections.Map[string, string]
	Owner collections.Item[string]
	MaxRewardsDuration collections.Item[int64]
	CalculationIntervalSeconds collections.Item[int64]
	GenesisRewardsTimestamp collections.Item[int64]
	MaxRetroactiveLength collections.Item[int64]
	MaxFutureLength collections.Item[int64]
	SubmissionNonce collections.Map[string, uint64]
	SubmittedHashes collections.KeySet[collections.Pair[string, string]]
}

// NewKeeper builds a RewardsCoordinator keeper. Besides the consumed
// Directory/TokenRegistry interfaces, it consults StrategyManager to check
// that a submission's strategies are whitelisted for deposit.
func NewKeeper(
	storeService corestore.KVStoreService,
	base zerolog.Logger,
	mcs *metrics.Collectors,
	directory types.Directory,
	tokens types.TokenRegistry,
	strategy types.StrategyManager,
	owner restaking.Address,
	rewardsUpdater restaking.Address,
	params Params) Keeper {
	sb := collections.NewSchemaBuilder(storeService)
	k := Keeper{
		logger: log.Component(base, types.ModuleName),
		metrics: mcs,
		directory: directory,
		tokens: tokens,
		strategy: strategy,
		params: params,
		RewardsUpdater: collections.NewItem(sb, types.PrefixRewardsUpdater, "rewards_updater",
			store.JSONValueCodec[string]("string")),
		ActivationDelay: collections.NewItem(sb, types.PrefixActivationDelay, "activation_delay",
			store.JSONValueCodec[int64]("int64")),
		GlobalCommissionBips: collections.NewItem(sb, types.PrefixGlobalCommissionBips, "global_commission_bips",
			store.JSONValueCodec[uint64]("uint64")),
		RewardsForAllSubmitter: collections.NewKeySet(sb, types.PrefixRewardsForAllSubmitter, "rewards_for_all_submitter",
			collections.StringKey),
		DistributionRoots: collections.NewMap(sb, types.PrefixDistributionRoots, "distribution_roots",
			collections.Uint64Key, store.JSONValueCodec[types.DistributionRoot]("DistributionRoot")),
		RootSequence: collections.NewSequence(sb, types.PrefixRootSequence, "root_sequence"),
		CumulativeClaimed: collections.NewMap(sb, types.PrefixCumulativeClaimed, "cumulative_claimed",
			collections.PairKeyCodec(collections.StringKey, collections.StringKey),
			store.JSONValueCodec[sdkmath.Uint]("Uint")),
		ClaimerFor: collections.NewMap(sb, types.PrefixClaimerFor, "claimer_for",
			collections.StringKey, store.JSONValueCodec[string]("string")),
		Owner: collections.NewItem(sb, types.PrefixOwner, "owner",
			store.JSONValueCodec[string]("string")),
		MaxRewardsDuration: collections.NewItem(sb, types.PrefixMaxRewardsDuration, "max_rewards_duration",
			store.JSONValueCodec[int64]("int64")),
		CalculationIntervalSeconds: collections.NewItem(sb, types.PrefixCalculationIntervalSeconds, "calculation_interval_seconds",
			store.JSONValueCodec[int64]("int64")),
		GenesisRewardsTimestamp: collections.NewItem(sb, types.PrefixGenesisRewardsTimestamp, "genesis_rewards_timestamp",
			store.JSONValueCodec[int64]("int64")),
		MaxRetroactiveLength: collections.NewItem(sb, types.PrefixMaxRetroactiveLength, "max_retroactive_length",
			store.JSONValueCodec[int64]("int64")),
		MaxFutureLength: collections.NewItem(sb, types.PrefixMaxFutureLength, "max_future_length",
			store.JSONValueCodec[int64]("int64")),
		SubmissionNonce: collections.NewMap(sb, types.PrefixSubmissionNonce, "submission_nonce",
			collections.StringKey, store.JSONValueCodec[uint64]("uint64")),
		SubmittedHashes: collections.NewKeySet(sb, types.PrefixSubmittedHashes, "submitted_hashes",
			collections.PairKeyCodec(collections.StringKey, collections.StringKey)),
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
	if err := k.RewardsUpdater.Set(genesisCtx, string(rewardsUpdater)); err != nil {
		panic(err)
	}
	if err := k.ActivationDelay.Set(genesisCtx, params.ActivationDelayDefault); err != nil {
		panic(err)
	}
	if err := k.GlobalCommissionBips.Set(genesisCtx, params.GlobalCommissionBipsDefault); err != nil {
		panic(err)
	}
	if err := k.MaxRewardsDuration.Set(genesisCtx, params.MaxRewardsDuration); err != nil {
		panic(err)
	}
	if err := k.CalculationIntervalSeconds.Set(genesisCtx, params.CalculationIntervalSeconds); err != nil {
		panic(err)
	}
	if err := k.GenesisRewardsTimestamp.Set(genesisCtx, params.GenesisRewardsTimestamp); err != nil {
		panic(err)
	}
	if err := k.MaxRetroactiveLength.Set(genesisCtx, params.MaxRetroactiveLength); err != nil {
		panic(err)
	}
	if err := k.MaxFutureLength.Set(genesisCtx, params.MaxFutureLength); err != nil {
		panic(err)
	}
	return k
}

func (k Keeper) Logger() zerolog.Logger { return k.logger }

func (k Keeper) requireOwner(ctx sdk.Context, caller restaking.Address) error {
	owner, err := k.Owner.Get(ctx.Context())
	if err != nil {
		return err
	}
	if string(caller) != owner {
		return restaking.ErrUnauthorized.Wrapf("%s is not the owner", caller)
	}
	return nil
}

func (k Keeper) requireRewardsUpdater(ctx sdk.Context, caller restaking.Address) error {
	updater, err := k.RewardsUpdater.Get(ctx.Context())
	if err != nil {
		return err
	}
	if string(caller) != updater {
		return restaking.ErrUnauthorized.Wrapf("%s is not the rewards updater", caller)
	}
	return nil
}
