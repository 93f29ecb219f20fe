package keeper_test

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/bvs-restaking/engine/log"
	"github.com/bvs-restaking/engine/metrics"
	"github.com/bvs-restaking/engine/store"
	"github.com/bvs-restaking/engine/testutil"
	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/delegationmanager/keeper"
	"github.com/bvs-restaking/engine/x/delegationmanager/types"
	strategykeeper "github.com/bvs-restaking/engine/x/strategymanager/keeper"
)

const (
	owner    = restaking.Address("owner")
	operator = restaking.Address("operator")
	staker   = restaking.Address("staker")
)

func setupTest(t *testing.T) (strategykeeper.Keeper, keeper.Keeper, *testutil.FakeVaultRegistry, *testutil.FakeTokenRegistry) {
	t.Helper()
	vaults := testutil.NewFakeVaultRegistry()
	tokens := testutil.NewFakeTokenRegistry()
	mcs := metrics.NewCollectors(prometheus.NewRegistry())

	sm := strategykeeper.NewKeeper(store.NewMemoryStoreService("strategymanager"), log.NewBase(), mcs, vaults, tokens, owner, 32)
	dm := keeper.NewKeeper(store.NewMemoryStoreService("delegationmanager"), log.NewBase(), mcs, sm, owner, keeper.Params{
		MaxStakerOptOutWindowBlocks:     1_000_000,
		MaxWithdrawalDelayBlocks:        100_000,
		MinWithdrawalDelayBlocksDefault: 10,
	})
	sm.SetDelegationHook(&dm)
	return sm, dm, vaults, tokens
}

func addStrategy(t *testing.T, sm strategykeeper.Keeper, vaults *testutil.FakeVaultRegistry, tokens *testutil.FakeTokenRegistry, strategy, token, funded restaking.Address, amount sdkmath.Uint) {
	t.Helper()
	ctx := testutil.NewContext(1, time.Now())
	tokens.Tokens[token] = testutil.NewFakeToken(18, map[restaking.Address]sdkmath.Uint{funded: amount})
	vaults.Vaults[strategy] = testutil.NewFakeVault(strategy, token, tokens)
	require.NoError(t, sm.AddNewStrategy(ctx, owner, strategy, token, sdkmath.NewUint(1_000_000_000), sdkmath.NewUint(10_000_000_000)))
	require.NoError(t, sm.Whitelist(ctx, owner, []restaking.Address{strategy}))
}

func TestRegisterAsOperatorSelfDelegates(t *testing.T) {
	_, dm, _, _ := setupTest(t)
	ctx := testutil.NewContext(1, time.Now())

	require.NoError(t, dm.RegisterAsOperator(ctx, operator, types.OperatorDetails{StakerOptOutWindowBlocks: 100}))

	isOp, err := dm.IsOperator(ctx, operator)
	require.NoError(t, err)
	require.True(t, isOp)

	delegatedTo, delegated, err := dm.DelegatedOperator(ctx, operator)
	require.NoError(t, err)
	require.True(t, delegated)
	require.Equal(t, operator, delegatedTo)
}

func TestRegisterAsOperatorRejectsDuplicate(t *testing.T) {
	_, dm, _, _ := setupTest(t)
	ctx := testutil.NewContext(1, time.Now())

	require.NoError(t, dm.RegisterAsOperator(ctx, operator, types.OperatorDetails{}))
	require.Error(t, dm.RegisterAsOperator(ctx, operator, types.OperatorDetails{}))
}

func TestModifyOperatorDetailsRejectsShrinkingOptOutWindow(t *testing.T) {
	_, dm, _, _ := setupTest(t)
	ctx := testutil.NewContext(1, time.Now())

	require.NoError(t, dm.RegisterAsOperator(ctx, operator, types.OperatorDetails{StakerOptOutWindowBlocks: 500}))
	require.Error(t, dm.ModifyOperatorDetails(ctx, operator, types.OperatorDetails{StakerOptOutWindowBlocks: 100}))
	require.NoError(t, dm.ModifyOperatorDetails(ctx, operator, types.OperatorDetails{StakerOptOutWindowBlocks: 600}))
}

func TestDelegateToAggregatesDepositedShares(t *testing.T) {
	sm, dm, vaults, tokens := setupTest(t)
	strategy, token := restaking.Address("strategy-1"), restaking.Address("token-1")
	addStrategy(t, sm, vaults, tokens, strategy, token, staker, sdkmath.NewUint(1_000))
	ctx := testutil.NewContext(1, time.Now())

	require.NoError(t, dm.RegisterAsOperator(ctx, operator, types.OperatorDetails{}))
	stakerShares, err := sm.Deposit(ctx, staker, strategy, token, sdkmath.NewUint(100))
	require.NoError(t, err)

	require.NoError(t, dm.DelegateTo(ctx, staker, operator))

	strategies, shares, err := dm.GetOperatorShares(ctx, operator)
	require.NoError(t, err)
	require.Equal(t, []restaking.Address{strategy}, strategies)
	require.Equal(t, stakerShares, shares[0])
}

func TestDelegateToRejectsDoubleDelegation(t *testing.T) {
	_, dm, _, _ := setupTest(t)
	ctx := testutil.NewContext(1, time.Now())

	require.NoError(t, dm.RegisterAsOperator(ctx, operator, types.OperatorDetails{}))
	require.NoError(t, dm.DelegateTo(ctx, staker, operator))
	require.Error(t, dm.DelegateTo(ctx, staker, operator))
}

func TestDepositAfterDelegationIncreasesOperatorShares(t *testing.T) {
	sm, dm, vaults, tokens := setupTest(t)
	strategy, token := restaking.Address("strategy-1"), restaking.Address("token-1")
	addStrategy(t, sm, vaults, tokens, strategy, token, staker, sdkmath.NewUint(10_000))
	ctx := testutil.NewContext(1, time.Now())

	require.NoError(t, dm.RegisterAsOperator(ctx, operator, types.OperatorDetails{}))
	require.NoError(t, dm.DelegateTo(ctx, staker, operator))

	depositedShares, err := sm.Deposit(ctx, staker, strategy, token, sdkmath.NewUint(5_000))
	require.NoError(t, err)

	_, shares, err := dm.GetOperatorShares(ctx, operator)
	require.NoError(t, err)
	require.Equal(t, depositedShares, shares[0])
}

func TestQueueAndCompleteWithdrawalRequiresDelayElapsed(t *testing.T) {
	sm, dm, vaults, tokens := setupTest(t)
	strategy, token := restaking.Address("strategy-1"), restaking.Address("token-1")
	addStrategy(t, sm, vaults, tokens, strategy, token, staker, sdkmath.NewUint(10_000))
	ctx := testutil.NewContext(1, time.Now())

	depositedShares, err := sm.Deposit(ctx, staker, strategy, token, sdkmath.NewUint(1_000))
	require.NoError(t, err)
	require.NoError(t, dm.SetStrategyWithdrawalDelayBlocks(ctx, owner, []restaking.Address{strategy}, []uint64{50}))

	root, err := dm.QueueWithdrawals(ctx, staker, staker, []restaking.Address{strategy}, []sdkmath.Uint{depositedShares})
	require.NoError(t, err)
	require.NotEmpty(t, root)

	withdrawal := types.Withdrawal{
		Staker:      staker,
		Withdrawer:  staker,
		Nonce:       0,
		StartBlock:  uint64(ctx.BlockHeight()),
		Strategies:  []restaking.Address{strategy},
		Shares:      []sdkmath.Uint{depositedShares},
	}

	tooEarly := withContextHeight(ctx, 10)
	require.ErrorIs(t, dm.CompleteQueuedWithdrawal(tooEarly, staker, withdrawal, []restaking.Address{token}, true), restaking.ErrDelayNotPassed)

	ready := withContextHeight(ctx, 51)
	require.Error(t, dm.CompleteQueuedWithdrawal(ready, restaking.Address("not-withdrawer"), withdrawal, []restaking.Address{token}, true))
	require.NoError(t, dm.CompleteQueuedWithdrawal(ready, staker, withdrawal, []restaking.Address{token}, true))

	require.Error(t, dm.CompleteQueuedWithdrawal(ready, staker, withdrawal, []restaking.Address{token}, true))
}

func TestCompleteQueuedWithdrawalFailsWithoutConfiguredDelay(t *testing.T) {
	sm, dm, vaults, tokens := setupTest(t)
	strategy, token := restaking.Address("strategy-1"), restaking.Address("token-1")
	addStrategy(t, sm, vaults, tokens, strategy, token, staker, sdkmath.NewUint(10_000))
	ctx := testutil.NewContext(1, time.Now())

	depositedShares, err := sm.Deposit(ctx, staker, strategy, token, sdkmath.NewUint(1_000))
	require.NoError(t, err)

	root, err := dm.QueueWithdrawals(ctx, staker, staker, []restaking.Address{strategy}, []sdkmath.Uint{depositedShares})
	require.NoError(t, err)
	require.NotEmpty(t, root)

	withdrawal := types.Withdrawal{
		Staker:     staker,
		Withdrawer: staker,
		Nonce:      0,
		StartBlock: uint64(ctx.BlockHeight()),
		Strategies: []restaking.Address{strategy},
		Shares:     []sdkmath.Uint{depositedShares},
	}
	err = dm.CompleteQueuedWithdrawal(withContextHeight(ctx, 1_000), staker, withdrawal, []restaking.Address{token}, true)
	require.Error(t, err)
}

func TestQueueWithdrawalsRejectsWithdrawerOtherThanStaker(t *testing.T) {
	sm, dm, vaults, tokens := setupTest(t)
	strategy, token := restaking.Address("strategy-1"), restaking.Address("token-1")
	addStrategy(t, sm, vaults, tokens, strategy, token, staker, sdkmath.NewUint(10_000))
	ctx := testutil.NewContext(1, time.Now())

	depositedShares, err := sm.Deposit(ctx, staker, strategy, token, sdkmath.NewUint(1_000))
	require.NoError(t, err)

	_, err = dm.QueueWithdrawals(ctx, staker, restaking.Address("someone-else"), []restaking.Address{strategy}, []sdkmath.Uint{depositedShares})
	require.Error(t, err)
}

func TestUndelegateQueuesFullWithdrawal(t *testing.T) {
	sm, dm, vaults, tokens := setupTest(t)
	strategy, token := restaking.Address("strategy-1"), restaking.Address("token-1")
	addStrategy(t, sm, vaults, tokens, strategy, token, staker, sdkmath.NewUint(10_000))
	ctx := testutil.NewContext(1, time.Now())

	require.NoError(t, dm.RegisterAsOperator(ctx, operator, types.OperatorDetails{}))
	require.NoError(t, dm.DelegateTo(ctx, staker, operator))
	_, err := sm.Deposit(ctx, staker, strategy, token, sdkmath.NewUint(1_000))
	require.NoError(t, err)

	roots, err := dm.Undelegate(ctx, staker, staker)
	require.NoError(t, err)
	require.Len(t, roots, 1)

	delegated, err := dm.IsDelegated(ctx, staker)
	require.NoError(t, err)
	require.False(t, delegated)

	_, shares, err := dm.GetOperatorShares(ctx, operator)
	require.NoError(t, err)
	require.Empty(t, shares)
}

func withContextHeight(ctx sdk.Context, height int64) sdk.Context {
	return ctx.WithBlockHeight(height)
}
