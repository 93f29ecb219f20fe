// Package app wires the four coordination components into a single
// runnable engine, in dependency order: StrategyManager and
// RewardsCoordinator are leaves; DelegationManager depends on
// StrategyManager; SlashManager depends on both DelegationManager and
// StrategyManager.
//
// depinject (cosmossdk.io/depinject) was evaluated for this wiring and
// deliberately not used: its reflection-based container resolves providers
// by Go type, and the keeper constructors take bare restaking.Address
// values for distinct roles (every keeper takes an owner; the
// RewardsCoordinator also takes a rewards updater; the StrategyManager
// owner doubles as its whitelister) that would collide under type-based
// resolution without a
// dedicated wrapper struct per keeper — for four components, the manual
// constructor chain below is the same wiring a small cosmos app's app.go
// already falls back to and is considerably easier to read.
package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/bvs-restaking/engine/config"
	"github.com/bvs-restaking/engine/log"
	"github.com/bvs-restaking/engine/metrics"
	"github.com/bvs-restaking/engine/store"
	restaking "github.com/bvs-restaking/engine/types"
	delegationkeeper "github.com/bvs-restaking/engine/x/delegationmanager/keeper"
	rewardskeeper "github.com/bvs-restaking/engine/x/rewardscoordinator/keeper"
	rewardstypes "github.com/bvs-restaking/engine/x/rewardscoordinator/types"
	slashkeeper "github.com/bvs-restaking/engine/x/slashmanager/keeper"
	strategykeeper "github.com/bvs-restaking/engine/x/strategymanager/keeper"
	strategytypes "github.com/bvs-restaking/engine/x/strategymanager/types"
)

// App bundles the four wired keepers plus their shared ambient
// infrastructure.
type App struct {
	Logger zerolog.Logger
	Metrics *metrics.Collectors

	StrategyManager strategykeeper.Keeper
	DelegationManager delegationkeeper.Keeper
	SlashManager slashkeeper.Keeper
	RewardsCoordinator rewardskeeper.Keeper
}

// Deps are the consumed interfaces the surrounding chain (wallets,
// contracts, a BVS directory) must supply; the engine never implements
// them itself.
type Deps struct {
	Vaults strategytypes.VaultRegistry
	Tokens strategytypes.TokenRegistry
	RewardsTokens rewardstypes.TokenRegistry
	Directory rewardstypes.Directory
}

// New builds a fully wired App backed by in-memory stores, one per
// component (store.NewMemoryStoreService), using params for every
// owner-tunable bound across the four keepers.
func New(params config.Params, deps Deps, owner, rewardsUpdater restaking.Address) *App {
	base := log.NewBase()
	reg := prometheus.NewRegistry()
	mcs := metrics.NewCollectors(reg)

	stratKeeper := strategykeeper.NewKeeper(
		store.NewMemoryStoreService("strategymanager"),
		base, mcs,
		deps.Vaults, deps.Tokens,
		owner, params.MaxStakerStrategyListLength)

	delegKeeper := delegationkeeper.NewKeeper(
		store.NewMemoryStoreService("delegationmanager"),
		base, mcs,
		stratKeeper,
		owner,
		delegationkeeper.Params{
			MaxStakerOptOutWindowBlocks: params.MaxStakerOptOutWindowBlocks,
			MaxWithdrawalDelayBlocks: params.MaxWithdrawalDelayBlocks,
			MinWithdrawalDelayBlocksDefault: params.MinWithdrawalDelayBlocks,
		})
	stratKeeper.SetDelegationHook(&delegKeeper)

	slashKeeper := slashkeeper.NewKeeper(
		store.NewMemoryStoreService("slashmanager"),
		base, mcs,
		delegKeeper, stratKeeper,
		owner,
		slashkeeper.Params{
			MinimalSlashSignatureDefault: uint64(params.MinimalSlashSignature),
			MaxTimeInFutureDefault: int64(params.MaxTimeInFuture.Seconds()),
		},
		params.SignatureCacheSize)

	maxRewardsAmount, err := params.MaxRewardsAmountUint()
	if err != nil {
		panic(err)
	}
	rewardsKeeper := rewardskeeper.NewKeeper(
		store.NewMemoryStoreService("rewardscoordinator"),
		base, mcs,
		deps.Directory, deps.RewardsTokens, stratKeeper,
		owner, rewardsUpdater,
		rewardskeeper.Params{
			ActivationDelayDefault: int64(params.ActivationDelay.Seconds()),
			GlobalCommissionBipsDefault: uint64(params.GlobalCommissionBips),
			MaxRewardsAmount: maxRewardsAmount,
			MaxRewardsDuration: int64(params.MaxRewardsDuration.Seconds()),
			CalculationIntervalSeconds: params.CalculationIntervalSeconds,
			GenesisRewardsTimestamp: params.GenesisRewardsTimestamp,
			MaxRetroactiveLength: int64(params.MaxRetroactiveLength.Seconds()),
			MaxFutureLength: int64(params.MaxFutureLength.Seconds()),
		})

	return &App{
		Logger: base,
		Metrics: mcs,
		StrategyManager: stratKeeper,
		DelegationManager: delegKeeper,
		SlashManager: slashKeeper,
		RewardsCoordinator: rewardsKeeper,
	}
}
