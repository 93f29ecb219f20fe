// Package keeper implements SlashManager: validator-threshold-gated,
// pro-rata weighted slashing of an operator's delegated shares across
// strategies.
package keeper

import (
	"context"

	"cosmossdk.io/collections"
	corestore "cosmossdk.io/core/store"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/rs/zerolog"

	bvscrypto "github.com/bvs-restaking/engine/crypto"
	"github.com/bvs-restaking/engine/log"
	"github.com/bvs-restaking/engine/metrics"
	"github.com/bvs-restaking/engine/store"
	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/slashmanager/types"
)

// Params bundles the owner-tunable bounds for slash requests.
type Params struct {
	MinimalSlashSignatureDefault uint64
	MaxTimeInFutureDefault int64
}

// Keeper owns the slasher/validator registries and pending slash requests.
type Keeper struct {
	logger zerolog.Logger
	metrics *metrics.Collectors

	delegation types.DelegationManager
	strategy types.StrategyManager
	verifier *bvscrypto.SignatureVerifier

	Schema collections.Schema
	Slashers collections.Map[collections.Pair[string, string], bool]
	Validators collections.KeySet[string]
	MinimalSlashSignature collections.Item[uint64]
	MaxTimeInFuture collections.Item[int64]
	SlashRequests collections.Map[string, types.SlashRequest]
	Owner collections.Item[string]
}

// NewKeeper builds a SlashManager keeper wired to DelegationManager and
// StrategyManager collaborators: dependency order places SlashManager
// after both.
func NewKeeper(
	storeService corestore.KVStoreService,
	base zerolog.Logger,
	mcs *metrics.Collectors,
	delegation types.DelegationManager,
	strategy types.StrategyManager,
	owner restaking.Address,
	params Params,
	signatureCacheSize int) Keeper {
	sb := collections.NewSchemaBuilder(storeService)
	k := Keeper{
		logger: log.Component(base, types.ModuleName),
		metrics: mcs,
		delegation: delegation,
		strategy: strategy,
		verifier: bvscrypto.NewSignatureVerifier(signatureCacheSize),
		Slashers: collections.NewMap(sb, types.PrefixSlashers, "slashers",
			collections.PairKeyCodec(collections.StringKey, collections.StringKey),
			store.JSONValueCodec[bool]("bool")),
		Validators: collections.NewKeySet(sb, types.PrefixValidators, "validators",
			collections.StringKey),
		MinimalSlashSignature: collections.NewItem(sb, types.PrefixMinimalSlashSignature, "minimal_slash_signature",
			store.JSONValueCodec[uint64]("uint64")),
		MaxTimeInFuture: collections.NewItem(sb, types.PrefixMaxTimeInFuture, "max_time_in_future",
			store.JSONValueCodec[int64]("int64")),
		SlashRequests: collections.NewMap(sb, types.PrefixSlashRequests, "slash_requests",
			collections.StringKey, store.JSONValueCodec[types.SlashRequest]("SlashRequest")),
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
	if err := k.MinimalSlashSignature.Set(genesisCtx, params.MinimalSlashSignatureDefault); err != nil {
		panic(err)
	}
	if err := k.MaxTimeInFuture.Set(genesisCtx, params.MaxTimeInFutureDefault); err != nil {
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

