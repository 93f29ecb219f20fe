package keeper_test

import (
	"crypto/ed25519"
	"encoding/hex"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/bvs-restaking/engine/log"
	"github.com/bvs-restaking/engine/metrics"
	"github.com/bvs-restaking/engine/store"
	"github.com/bvs-restaking/engine/testutil"
	restaking "github.com/bvs-restaking/engine/types"
	delegationkeeper "github.com/bvs-restaking/engine/x/delegationmanager/keeper"
	delegationtypes "github.com/bvs-restaking/engine/x/delegationmanager/types"
	"github.com/bvs-restaking/engine/x/slashmanager/keeper"
	strategykeeper "github.com/bvs-restaking/engine/x/strategymanager/keeper"
)

const (
	owner    = restaking.Address("owner")
	slasher  = restaking.Address("slasher")
	operator = restaking.Address("operator")
	staker   = restaking.Address("staker")
)

type harness struct {
	sm  strategykeeper.Keeper
	dm  delegationkeeper.Keeper
	sl  keeper.Keeper
}

func setupTest(t *testing.T) (harness, *testutil.FakeVaultRegistry, *testutil.FakeTokenRegistry) {
	t.Helper()
	vaults := testutil.NewFakeVaultRegistry()
	tokens := testutil.NewFakeTokenRegistry()
	mcs := metrics.NewCollectors(prometheus.NewRegistry())

	sm := strategykeeper.NewKeeper(store.NewMemoryStoreService("strategymanager"), log.NewBase(), mcs, vaults, tokens, owner, 32)
	dm := delegationkeeper.NewKeeper(store.NewMemoryStoreService("delegationmanager"), log.NewBase(), mcs, sm, owner, delegationkeeper.Params{
		MaxStakerOptOutWindowBlocks:     1_000_000,
		MaxWithdrawalDelayBlocks:        100_000,
		MinWithdrawalDelayBlocksDefault: 10,
	})
	sm.SetDelegationHook(&dm)

	sl := keeper.NewKeeper(store.NewMemoryStoreService("slashmanager"), log.NewBase(), mcs, dm, sm, owner, keeper.Params{
		MinimalSlashSignatureDefault: 2,
		MaxTimeInFutureDefault:       3600,
	}, 64)
	return harness{sm: sm, dm: dm, sl: sl}, vaults, tokens
}

func addStrategy(t *testing.T, sm strategykeeper.Keeper, vaults *testutil.FakeVaultRegistry, tokens *testutil.FakeTokenRegistry, strategy, token, funded restaking.Address, amount sdkmath.Uint) {
	t.Helper()
	ctx := testutil.NewContext(1, time.Now())
	tokens.Tokens[token] = testutil.NewFakeToken(18, map[restaking.Address]sdkmath.Uint{funded: amount})
	vaults.Vaults[strategy] = testutil.NewFakeVault(strategy, token, tokens)
	require.NoError(t, sm.AddNewStrategy(ctx, owner, strategy, token, sdkmath.NewUint(1_000_000_000), sdkmath.NewUint(10_000_000_000)))
	require.NoError(t, sm.Whitelist(ctx, owner, []restaking.Address{strategy}))
}

func TestSubmitSlashRequestRequiresAuthorizedSlasher(t *testing.T) {
	h, _, _ := setupTest(t)
	ctx := testutil.NewContext(1, time.Now())
	require.NoError(t, h.dm.RegisterAsOperator(ctx, operator, delegationtypes.OperatorDetails{}))

	_, err := h.sl.SubmitSlashRequest(ctx, slasher, operator, sdkmath.NewUint(100), nil, 0, ctx.BlockTime().Unix()+10)
	require.Error(t, err)

	require.NoError(t, h.sl.SetSlasher(ctx, owner, operator, slasher, true))
	hash, err := h.sl.SubmitSlashRequest(ctx, slasher, operator, sdkmath.NewUint(100), nil, 0, ctx.BlockTime().Unix()+10)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
}

func TestSubmitSlashRequestRejectsWindowTooFarInFuture(t *testing.T) {
	h, _, _ := setupTest(t)
	ctx := testutil.NewContext(1, time.Now())
	require.NoError(t, h.dm.RegisterAsOperator(ctx, operator, delegationtypes.OperatorDetails{}))
	require.NoError(t, h.sl.SetSlasher(ctx, owner, operator, slasher, true))

	_, err := h.sl.SubmitSlashRequest(ctx, slasher, operator, sdkmath.NewUint(100), nil, 0, ctx.BlockTime().Unix()+100_000)
	require.Error(t, err)
}

func TestExecuteSlashRequestDistributesProRataAcrossStrategies(t *testing.T) {
	h, vaults, tokens := setupTest(t)
	strategyA, tokenA := restaking.Address("strategy-a"), restaking.Address("token-a")
	strategyB, tokenB := restaking.Address("strategy-b"), restaking.Address("token-b")
	addStrategy(t, h.sm, vaults, tokens, strategyA, tokenA, staker, sdkmath.NewUint(1_000_000))
	addStrategy(t, h.sm, vaults, tokens, strategyB, tokenB, staker, sdkmath.NewUint(1_000_000))
	ctx := testutil.NewContext(1, time.Now())

	require.NoError(t, h.dm.RegisterAsOperator(ctx, operator, delegationtypes.OperatorDetails{}))
	require.NoError(t, h.dm.DelegateTo(ctx, staker, operator))

	sharesA, err := h.sm.Deposit(ctx, staker, strategyA, tokenA, sdkmath.NewUint(600_000))
	require.NoError(t, err)
	sharesB, err := h.sm.Deposit(ctx, staker, strategyB, tokenB, sdkmath.NewUint(400_000))
	require.NoError(t, err)

	pub1, priv1, _ := ed25519.GenerateKey(nil)
	pub2, priv2, _ := ed25519.GenerateKey(nil)
	require.NoError(t, h.sl.SetSlasher(ctx, owner, operator, slasher, true))
	require.NoError(t, h.sl.SetSlasherValidator(ctx, slasher, hex.EncodeToString(pub1), true))
	require.NoError(t, h.sl.SetSlasherValidator(ctx, slasher, hex.EncodeToString(pub2), true))

	totalSlash := sdkmath.NewUint(500_000)
	hash, err := h.sl.SubmitSlashRequest(ctx, slasher, operator, totalSlash, nil, 0, ctx.BlockTime().Unix()+600)
	require.NoError(t, err)

	sig1 := ed25519.Sign(priv1, hash)
	sig2 := ed25519.Sign(priv2, hash)
	err = h.sl.ExecuteSlashRequest(ctx, hash,
		[]string{hex.EncodeToString(pub1), hex.EncodeToString(pub2)},
		[][]byte{sig1, sig2})
	require.NoError(t, err)

	strategies, shares, err := h.dm.GetOperatorShares(ctx, operator)
	require.NoError(t, err)
	total := sdkmath.ZeroUint()
	for _, s := range shares {
		total = total.Add(s)
	}
	require.True(t, total.LT(sharesA.Add(sharesB)))
	require.Len(t, strategies, 2)

	err = h.sl.ExecuteSlashRequest(ctx, hash,
		[]string{hex.EncodeToString(pub1), hex.EncodeToString(pub2)},
		[][]byte{sig1, sig2})
	require.Error(t, err)
}

func TestExecuteSlashRequestRejectsInsufficientSignatures(t *testing.T) {
	h, vaults, tokens := setupTest(t)
	strategy, token := restaking.Address("strategy-a"), restaking.Address("token-a")
	addStrategy(t, h.sm, vaults, tokens, strategy, token, staker, sdkmath.NewUint(1_000_000))
	ctx := testutil.NewContext(1, time.Now())

	require.NoError(t, h.dm.RegisterAsOperator(ctx, operator, delegationtypes.OperatorDetails{}))
	require.NoError(t, h.dm.DelegateTo(ctx, staker, operator))
	_, err := h.sm.Deposit(ctx, staker, strategy, token, sdkmath.NewUint(500_000))
	require.NoError(t, err)

	pub1, priv1, _ := ed25519.GenerateKey(nil)
	require.NoError(t, h.sl.SetSlasher(ctx, owner, operator, slasher, true))
	require.NoError(t, h.sl.SetSlasherValidator(ctx, slasher, hex.EncodeToString(pub1), true))

	hash, err := h.sl.SubmitSlashRequest(ctx, slasher, operator, sdkmath.NewUint(10_000), nil, 0, ctx.BlockTime().Unix()+600)
	require.NoError(t, err)

	sig1 := ed25519.Sign(priv1, hash)
	err = h.sl.ExecuteSlashRequest(ctx, hash, []string{hex.EncodeToString(pub1)}, [][]byte{sig1})
	require.Error(t, err)
}

func TestCancelSlashRequestOnlyBySubmittingSlasher(t *testing.T) {
	h, _, _ := setupTest(t)
	ctx := testutil.NewContext(1, time.Now())
	require.NoError(t, h.dm.RegisterAsOperator(ctx, operator, delegationtypes.OperatorDetails{}))
	require.NoError(t, h.sl.SetSlasher(ctx, owner, operator, slasher, true))

	hash, err := h.sl.SubmitSlashRequest(ctx, slasher, operator, sdkmath.NewUint(100), nil, 0, ctx.BlockTime().Unix()+10)
	require.NoError(t, err)

	require.Error(t, h.sl.CancelSlashRequest(ctx, operator, hash))
	require.NoError(t, h.sl.CancelSlashRequest(ctx, slasher, hash))
	require.Error(t, h.sl.CancelSlashRequest(ctx, slasher, hash))
}
