package keeper_test

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	bvscrypto "github.com/bvs-restaking/engine/crypto"
	"github.com/bvs-restaking/engine/log"
	"github.com/bvs-restaking/engine/metrics"
	"github.com/bvs-restaking/engine/store"
	"github.com/bvs-restaking/engine/testutil"
	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/rewardscoordinator/keeper"
	"github.com/bvs-restaking/engine/x/rewardscoordinator/types"
	strategykeeper "github.com/bvs-restaking/engine/x/strategymanager/keeper"
)

const (
	owner = restaking.Address("owner")
	updater = restaking.Address("updater")
	bvs = restaking.Address("some-bvs")
	earner = restaking.Address("earner")
	calcInterval = int64(86400)
)

func setupTest(t *testing.T, registered ...restaking.Address) (keeper.Keeper, *testutil.FakeTokenRegistry, strategykeeper.Keeper, *testutil.FakeVaultRegistry) {
	t.Helper()
	tokens := testutil.NewFakeTokenRegistry()
	rewardsTokens := testutil.NewFakeRewardsTokenRegistry(tokens)
	directory := testutil.NewFakeDirectory(registered...)
	vaults := testutil.NewFakeVaultRegistry()
	mcs := metrics.NewCollectors(prometheus.NewRegistry())

	sm := strategykeeper.NewKeeper(store.NewMemoryStoreService("strategymanager"), log.NewBase(), mcs, vaults, tokens, owner, 32)

	k := keeper.NewKeeper(store.NewMemoryStoreService("rewardscoordinator"), log.NewBase(), mcs,
		directory, rewardsTokens, sm, owner, updater, keeper.Params{
			ActivationDelayDefault: 100,
			GlobalCommissionBipsDefault: 1_000,
			MaxRewardsAmount: sdkmath.NewUint(1_000_000_000),
			MaxRewardsDuration: 30 * calcInterval,
			CalculationIntervalSeconds: calcInterval,
			GenesisRewardsTimestamp: 0,
			MaxRetroactiveLength: 90 * calcInterval,
			MaxFutureLength: 30 * calcInterval,
		})
	return k, tokens, sm, vaults
}

func whitelistStrategy(t *testing.T, sm strategykeeper.Keeper, vaults *testutil.FakeVaultRegistry, tokens *testutil.FakeTokenRegistry, strategy, token restaking.Address) {
	t.Helper()
	ctx := testutil.NewContext(1, time.Now())
	vaults.Vaults[strategy] = testutil.NewFakeVault(strategy, token, tokens)
	require.NoError(t, sm.AddNewStrategy(ctx, owner, strategy, token, sdkmath.NewUint(1_000_000_000), sdkmath.NewUint(10_000_000_000)))
	require.NoError(t, sm.Whitelist(ctx, owner, []restaking.Address{strategy}))
}

// alignedTime returns a block time aligned to a calculation-interval
// boundary, the way every RewardsSubmission's start_timestamp must be.
func alignedTime() time.Time {
	now := time.Now().Unix()
	return time.Unix(now-(now%calcInterval), 0)
}

func TestCreateBVSRewardsSubmissionRequiresRegisteredBVS(t *testing.T) {
	k, tokens, sm, vaults := setupTest(t)
	strategy, token := restaking.Address("strategy-1"), restaking.Address("token-1")
	whitelistStrategy(t, sm, vaults, tokens, strategy, token)
	tokens.Tokens[token] = testutil.NewFakeToken(18, map[restaking.Address]sdkmath.Uint{bvs: sdkmath.NewUint(10_000)})
	ctx := testutil.NewContext(1, alignedTime())

	submission := types.RewardsSubmission{
		Submitter: bvs,
		Token: token,
		Amount: sdkmath.NewUint(1_000),
		StrategiesAndMultipliers: []types.StrategyAndMultiplier{
			{Strategy: strategy, Multiplier: sdkmath.NewUint(1)},
		},
		StartTimestamp: ctx.BlockTime().Unix(),
		Duration: calcInterval,
	}
	require.Error(t, k.CreateBVSRewardsSubmission(ctx, bvs, submission))
}

func TestCreateBVSRewardsSubmissionEscrowsAmount(t *testing.T) {
	k, tokens, sm, vaults := setupTest(t, bvs)
	strategy, token := restaking.Address("strategy-1"), restaking.Address("token-1")
	whitelistStrategy(t, sm, vaults, tokens, strategy, token)
	tokens.Tokens[token] = testutil.NewFakeToken(18, map[restaking.Address]sdkmath.Uint{bvs: sdkmath.NewUint(10_000)})
	ctx := testutil.NewContext(1, alignedTime())

	submission := types.RewardsSubmission{
		Submitter: bvs,
		Token: token,
		Amount: sdkmath.NewUint(1_000),
		StrategiesAndMultipliers: []types.StrategyAndMultiplier{
			{Strategy: strategy, Multiplier: sdkmath.NewUint(1)},
		},
		StartTimestamp: ctx.BlockTime().Unix(),
		Duration: calcInterval,
	}
	require.NoError(t, k.CreateBVSRewardsSubmission(ctx, bvs, submission))

	bal, err := tokens.Tokens[token].BalanceOf(ctx, restaking.Address(types.ModuleName))
	require.NoError(t, err)
	require.Equal(t, sdkmath.NewUint(1_000), bal)

	// Resubmitting the exact same submission is accepted as a separate
	// submission: the submitter's nonce advanced, so its hash differs.
	require.NoError(t, k.CreateBVSRewardsSubmission(ctx, bvs, submission))
}

func TestCreateBVSRewardsSubmissionRejectsAmountAboveMax(t *testing.T) {
	k, tokens, sm, vaults := setupTest(t, bvs)
	strategy, token := restaking.Address("strategy-1"), restaking.Address("token-1")
	whitelistStrategy(t, sm, vaults, tokens, strategy, token)
	tokens.Tokens[token] = testutil.NewFakeToken(18, map[restaking.Address]sdkmath.Uint{bvs: sdkmath.NewUint(10_000_000_000)})
	ctx := testutil.NewContext(1, alignedTime())

	submission := types.RewardsSubmission{
		Submitter: bvs,
		Token: token,
		Amount: sdkmath.NewUint(2_000_000_000),
		StrategiesAndMultipliers: []types.StrategyAndMultiplier{
			{Strategy: strategy, Multiplier: sdkmath.NewUint(1)},
		},
		StartTimestamp: ctx.BlockTime().Unix(),
		Duration: calcInterval,
	}
	require.Error(t, k.CreateBVSRewardsSubmission(ctx, bvs, submission))
}

func TestCreateBVSRewardsSubmissionRejectsUnwhitelistedStrategy(t *testing.T) {
	k, tokens, _, _ := setupTest(t, bvs)
	token := restaking.Address("token-1")
	tokens.Tokens[token] = testutil.NewFakeToken(18, map[restaking.Address]sdkmath.Uint{bvs: sdkmath.NewUint(10_000)})
	ctx := testutil.NewContext(1, alignedTime())

	submission := types.RewardsSubmission{
		Submitter: bvs,
		Token: token,
		Amount: sdkmath.NewUint(1_000),
		StrategiesAndMultipliers: []types.StrategyAndMultiplier{
			{Strategy: restaking.Address("never-registered"), Multiplier: sdkmath.NewUint(1)},
		},
		StartTimestamp: ctx.BlockTime().Unix(),
		Duration: calcInterval,
	}
	require.Error(t, k.CreateBVSRewardsSubmission(ctx, bvs, submission))
}

func TestCreateBVSRewardsSubmissionRejectsMisalignedDuration(t *testing.T) {
	k, tokens, sm, vaults := setupTest(t, bvs)
	strategy, token := restaking.Address("strategy-1"), restaking.Address("token-1")
	whitelistStrategy(t, sm, vaults, tokens, strategy, token)
	tokens.Tokens[token] = testutil.NewFakeToken(18, map[restaking.Address]sdkmath.Uint{bvs: sdkmath.NewUint(10_000)})
	ctx := testutil.NewContext(1, alignedTime())

	submission := types.RewardsSubmission{
		Submitter: bvs,
		Token: token,
		Amount: sdkmath.NewUint(1_000),
		StrategiesAndMultipliers: []types.StrategyAndMultiplier{
			{Strategy: strategy, Multiplier: sdkmath.NewUint(1)},
		},
		StartTimestamp: ctx.BlockTime().Unix(),
		Duration: calcInterval + 1,
	}
	require.Error(t, k.CreateBVSRewardsSubmission(ctx, bvs, submission))
}

func TestSubmitRootRequiresRewardsUpdater(t *testing.T) {
	k, _, _, _ := setupTest(t)
	ctx := testutil.NewContext(1, time.Now())
	root := make([]byte, 32)

	_, err := k.SubmitRoot(ctx, restaking.Address("not-updater"), root)
	require.Error(t, err)

	index, err := k.SubmitRoot(ctx, updater, root)
	require.NoError(t, err)
	require.Equal(t, uint64(0), index)
}

func TestDisableRootBeforeActivation(t *testing.T) {
	k, _, _, _ := setupTest(t)
	ctx := testutil.NewContext(1, time.Now())
	root := make([]byte, 32)

	index, err := k.SubmitRoot(ctx, updater, root)
	require.NoError(t, err)
	require.NoError(t, k.DisableRoot(ctx, updater, index))

	err = k.ProcessClaim(withContextTime(ctx, ctx.BlockTime().Unix()+200), earner, earner, earner, index, []types.TokenEarnerProof{{
		Token: restaking.Address("token-1"),
		CumulativeEarnings: sdkmath.NewUint(1),
		TokenLeafIndex: 0,
		EarnerLeafIndex: 0,
	}})
	require.Error(t, err)
}

func TestProcessClaimPaysCumulativeEarningsOnce(t *testing.T) {
	k, tokens, _, _ := setupTest(t)
	token := restaking.Address("token-1")
	tokens.Tokens[token] = testutil.NewFakeToken(18, map[restaking.Address]sdkmath.Uint{
		restaking.Address(types.ModuleName): sdkmath.NewUint(1_000_000),
	})
	ctx := testutil.NewContext(1, time.Now())

	earnings := sdkmath.NewUint(50_000)
	tokenLeaf := bvscrypto.TokenLeafHash(token, bvscrypto.BigEndianUint128(earnings.BigInt().Bytes()))
	root := bvscrypto.EarnerLeafHash(earner, tokenLeaf)

	index, err := k.SubmitRoot(ctx, updater, root)
	require.NoError(t, err)

	activeCtx := withContextTime(ctx, ctx.BlockTime().Unix()+101)
	proof := types.TokenEarnerProof{
		Token: token,
		CumulativeEarnings: earnings,
		TokenLeafIndex: 0,
		EarnerLeafIndex: 0,
	}

	require.NoError(t, k.ProcessClaim(activeCtx, earner, earner, earner, index, []types.TokenEarnerProof{proof}))
	bal, err := tokens.Tokens[token].BalanceOf(activeCtx, earner)
	require.NoError(t, err)
	require.Equal(t, earnings, bal)

	// replaying the same cumulative proof pays out zero, not an error.
	require.NoError(t, k.ProcessClaim(activeCtx, earner, earner, earner, index, []types.TokenEarnerProof{proof}))
	bal, err = tokens.Tokens[token].BalanceOf(activeCtx, earner)
	require.NoError(t, err)
	require.Equal(t, earnings, bal)
}

func TestProcessClaimHonorsSetClaimerFor(t *testing.T) {
	k, tokens, _, _ := setupTest(t)
	token := restaking.Address("token-1")
	claimer := restaking.Address("claimer-addr")
	tokens.Tokens[token] = testutil.NewFakeToken(18, map[restaking.Address]sdkmath.Uint{
		restaking.Address(types.ModuleName): sdkmath.NewUint(1_000_000),
	})
	ctx := testutil.NewContext(1, time.Now())

	earnings := sdkmath.NewUint(25_000)
	tokenLeaf := bvscrypto.TokenLeafHash(token, bvscrypto.BigEndianUint128(earnings.BigInt().Bytes()))
	root := bvscrypto.EarnerLeafHash(earner, tokenLeaf)
	index, err := k.SubmitRoot(ctx, updater, root)
	require.NoError(t, err)

	require.NoError(t, k.SetClaimerFor(ctx, earner, claimer))
	require.Error(t, k.ProcessClaim(withContextTime(ctx, ctx.BlockTime().Unix()+101), earner, earner, earner, index, nil))

	activeCtx := withContextTime(ctx, ctx.BlockTime().Unix()+101)
	require.NoError(t, k.ProcessClaim(activeCtx, claimer, earner, earner, index, []types.TokenEarnerProof{{
		Token: token,
		CumulativeEarnings: earnings,
		TokenLeafIndex: 0,
		EarnerLeafIndex: 0,
	}}))

	bal, err := tokens.Tokens[token].BalanceOf(activeCtx, earner)
	require.NoError(t, err)
	require.Equal(t, earnings, bal)
}

func TestProcessClaimPaysIndependentRecipient(t *testing.T) {
	k, tokens, _, _ := setupTest(t)
	token := restaking.Address("token-1")
	recipient := restaking.Address("recipient-addr")
	tokens.Tokens[token] = testutil.NewFakeToken(18, map[restaking.Address]sdkmath.Uint{
		restaking.Address(types.ModuleName): sdkmath.NewUint(1_000_000),
	})
	ctx := testutil.NewContext(1, time.Now())

	earnings := sdkmath.NewUint(10_000)
	tokenLeaf := bvscrypto.TokenLeafHash(token, bvscrypto.BigEndianUint128(earnings.BigInt().Bytes()))
	root := bvscrypto.EarnerLeafHash(earner, tokenLeaf)
	index, err := k.SubmitRoot(ctx, updater, root)
	require.NoError(t, err)

	activeCtx := withContextTime(ctx, ctx.BlockTime().Unix()+101)
	require.NoError(t, k.ProcessClaim(activeCtx, earner, earner, recipient, index, []types.TokenEarnerProof{{
		Token: token,
		CumulativeEarnings: earnings,
		TokenLeafIndex: 0,
		EarnerLeafIndex: 0,
	}}))

	bal, err := tokens.Tokens[token].BalanceOf(activeCtx, recipient)
	require.NoError(t, err)
	require.Equal(t, earnings, bal)

	earnerBal, err := tokens.Tokens[token].BalanceOf(activeCtx, earner)
	require.NoError(t, err)
	require.True(t, earnerBal.IsZero())
}

func withContextTime(ctx sdk.Context, unixSeconds int64) sdk.Context {
	return ctx.WithBlockTime(time.Unix(unixSeconds, 0))
}
