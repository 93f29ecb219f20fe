// Package testutil provides shared fixtures for the keeper test suites: an
// in-memory sdk.Context, and simple in-memory implementations of the
// Vault/Token/Directory interfaces each keeper consumes as an explicit
// typed interface passed at construction.
package testutil

import (
	"time"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	tmproto "github.com/tendermint/tendermint/proto/tendermint/types"

	restaking "github.com/bvs-restaking/engine/types"
	rewardstypes "github.com/bvs-restaking/engine/x/rewardscoordinator/types"
	strategytypes "github.com/bvs-restaking/engine/x/strategymanager/types"
)

// NewContext builds a bare sdk.Context with a fresh EventManager, suitable
// for driving keeper calls in tests without a real consensus engine.
func NewContext(height int64, blockTime time.Time) sdk.Context {
	header := tmproto.Header{Height: height, Time: blockTime}
	return sdk.NewContext(nil, header, false, nil).WithEventManager(sdk.NewEventManager())
}

// FakeToken is an in-memory TokenContract/TokenRegistry test double: every
// address is its own token, balances tracked per-holder.
type FakeToken struct {
	Decimal uint32
	balances map[restaking.Address]sdkmath.Uint
}

// NewFakeToken returns a token with initialBalances credited up front.
func NewFakeToken(decimals uint32, initialBalances map[restaking.Address]sdkmath.Uint) *FakeToken {
	t := &FakeToken{Decimal: decimals, balances: map[restaking.Address]sdkmath.Uint{}}
	for addr, amt := range initialBalances {
		t.balances[addr] = amt
	}
	return t
}

func (t *FakeToken) Transfer(ctx sdk.Context, recipient restaking.Address, amount sdkmath.Uint) error {
	return t.move(recipient, recipient, amount, false)
}

func (t *FakeToken) TransferFrom(ctx sdk.Context, owner, recipient restaking.Address, amount sdkmath.Uint) error {
	return t.move(owner, recipient, amount, true)
}

func (t *FakeToken) move(owner, recipient restaking.Address, amount sdkmath.Uint, debitOwner bool) error {
	if debitOwner {
		bal := t.balances[owner]
		if bal.LT(amount) {
			return restaking.ErrInsufficientBalance.Wrapf("%s has %s, needs %s", owner, bal, amount)
		}
		t.balances[owner] = bal.Sub(amount)
	}
	t.balances[recipient] = t.balances[recipient].Add(amount)
	return nil
}

func (t *FakeToken) BalanceOf(ctx sdk.Context, addr restaking.Address) (sdkmath.Uint, error) {
	if bal, ok := t.balances[addr]; ok {
		return bal, nil
	}
	return sdkmath.ZeroUint(), nil
}

func (t *FakeToken) Decimals(ctx sdk.Context) (uint32, error) { return t.Decimal, nil }

// FakeTokenRegistry resolves a fixed set of tokens by address.
type FakeTokenRegistry struct {
	Tokens map[restaking.Address]*FakeToken
}

func NewFakeTokenRegistry() *FakeTokenRegistry {
	return &FakeTokenRegistry{Tokens: map[restaking.Address]*FakeToken{}}
}

func (r *FakeTokenRegistry) Token(token restaking.Address) (strategytypes.TokenContract, bool) {
	t, ok := r.Tokens[token]
	return t, ok
}

// FakeRewardsTokenRegistry adapts the same underlying token map to
// RewardsCoordinator's narrower TokenRegistry interface (Transfer/
// TransferFrom only, no Decimals/BalanceOf) without a second Token method
// colliding with FakeTokenRegistry's.
type FakeRewardsTokenRegistry struct {
	Tokens map[restaking.Address]*FakeToken
}

func NewFakeRewardsTokenRegistry(shared *FakeTokenRegistry) *FakeRewardsTokenRegistry {
	return &FakeRewardsTokenRegistry{Tokens: shared.Tokens}
}

func (r *FakeRewardsTokenRegistry) Token(token restaking.Address) (rewardstypes.TokenContract, bool) {
	t, ok := r.Tokens[token]
	return t, ok
}

// FakeVault is an in-memory StrategyVault test double that mints shares
// 1:1 with the deposited amount (no virtual-offset math) and pays
// withdrawals 1:1 in the underlying FakeToken.
type FakeVault struct {
	ManagerAddr restaking.Address
	Token restaking.Address
	tokens *FakeTokenRegistry
	totalShares sdkmath.Uint
}

func NewFakeVault(manager, token restaking.Address, tokens *FakeTokenRegistry) *FakeVault {
	return &FakeVault{ManagerAddr: manager, Token: token, tokens: tokens, totalShares: sdkmath.ZeroUint()}
}

func (v *FakeVault) Deposit(ctx sdk.Context, amount sdkmath.Uint) (sdkmath.Uint, error) {
	v.totalShares = v.totalShares.Add(amount)
	return v.totalShares, nil
}

func (v *FakeVault) Withdraw(ctx sdk.Context, recipientAddr restaking.Address, token restaking.Address, shares sdkmath.Uint) error {
	if shares.GT(v.totalShares) {
		return restaking.ErrUnderflow.Wrap("withdraw exceeds vault total shares")
	}
	v.totalShares = v.totalShares.Sub(shares)
	t, ok := v.tokens.Token(token)
	if !ok {
		return restaking.ErrNotFound.Wrapf("token %s not registered", token)
	}
	return t.Transfer(ctx, recipientAddr, shares)
}

func (v *FakeVault) State(ctx sdk.Context) (strategytypes.VaultState, error) {
	return strategytypes.VaultState{
		Manager: v.ManagerAddr,
		UnderlyingToken: v.Token,
		TotalShares: v.totalShares,
	}, nil
}

// FakeVaultRegistry resolves a fixed set of vaults by strategy address.
type FakeVaultRegistry struct {
	Vaults map[restaking.Address]*FakeVault
}

func NewFakeVaultRegistry() *FakeVaultRegistry {
	return &FakeVaultRegistry{Vaults: map[restaking.Address]*FakeVault{}}
}

func (r *FakeVaultRegistry) Vault(strategy restaking.Address) (strategytypes.StrategyVault, bool) {
	v, ok := r.Vaults[strategy]
	return v, ok
}

// FakeDirectory is a BVS directory test double: only the addresses listed
// at construction (or added to RegisteredBVS) are registered.
type FakeDirectory struct {
	RegisteredBVS map[restaking.Address]bool
}

func NewFakeDirectory(registered ...restaking.Address) *FakeDirectory {
	d := &FakeDirectory{RegisteredBVS: map[restaking.Address]bool{}}
	for _, addr := range registered {
		d.RegisteredBVS[addr] = true
	}
	return d
}

func (d *FakeDirectory) IsBVS(ctx sdk.Context, addr restaking.Address) (bool, error) {
	return d.RegisteredBVS[addr], nil
}
