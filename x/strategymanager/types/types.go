// Package types declares StrategyManager's persistent records, consumed
// collaborator interfaces and events.
package types

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	restaking "github.com/bvs-restaking/engine/types"
)

// StrategyRecord is the registry entry created by add_new_strategy: the
// underlying token it wraps and the owner-tunable per-deposit/total-deposit
// caps, adjustable afterward via set_strategy_limits.
type StrategyRecord struct {
	UnderlyingToken restaking.Address `json:"underlying_token"`
	MaxPerDeposit sdkmath.Uint `json:"max_per_deposit"`
	MaxTotalDeposits sdkmath.Uint `json:"max_total_deposits"`
}

// VaultState is what a strategy vault reports back via get_strategy_state.
type VaultState struct {
	Manager restaking.Address
	UnderlyingToken restaking.Address
	TotalShares sdkmath.Uint
}

// StrategyVault is the consumed per-strategy vault interface: an isolated
// vault wrapping one underlying token. StrategyManager never mutates a
// vault's total_shares directly — it always dispatches Deposit or Withdraw
// and trusts the vault's own return value.
type StrategyVault interface {
	// Deposit mints shares for amount and returns the vault's new
	// total_shares after the mint.
	Deposit(ctx sdk.Context, amount sdkmath.Uint) (newTotalShares sdkmath.Uint, err error)
	// Withdraw burns shares and transfers the underlying token to
	// recipient ("withdraw_shares_as_tokens").
	Withdraw(ctx sdk.Context, recipient restaking.Address, token restaking.Address, shares sdkmath.Uint) error
	// State reports the vault's current accounting snapshot.
	State(ctx sdk.Context) (VaultState, error)
}

// TokenContract is the consumed token-transfer interface for the ERC20-like
// asset underlying a strategy.
type TokenContract interface {
	Transfer(ctx sdk.Context, recipient restaking.Address, amount sdkmath.Uint) error
	TransferFrom(ctx sdk.Context, owner, recipient restaking.Address, amount sdkmath.Uint) error
	BalanceOf(ctx sdk.Context, addr restaking.Address) (sdkmath.Uint, error)
	Decimals(ctx sdk.Context) (uint32, error)
}

// VaultRegistry resolves a strategy address to its vault implementation.
// Passed in at keeper construction as an explicit typed interface, with a
// test double for unit tests.
type VaultRegistry interface {
	Vault(strategy restaking.Address) (StrategyVault, bool)
}

// TokenRegistry resolves a token address to its token contract.
type TokenRegistry interface {
	Token(token restaking.Address) (TokenContract, bool)
}

// DelegationHook is the subset of DelegationManager that StrategyManager
// dispatches to on every share-increasing deposit. A no-op implementation
// is valid (e.g. in standalone tests of StrategyManager).
type DelegationHook interface {
	IncreaseDelegatedShares(ctx sdk.Context, staker restaking.Address, strategy restaking.Address, shares sdkmath.Uint) error
}

// Event names.
const (
	EventNewStrategyAdded = "NewStrategyAdded"
	EventTokenBlacklisted = "TokenBlacklisted"
	EventStrategyAddedToDepositWhitelist = "StrategyAddedToDepositWhitelist"
	EventStrategyRemovedFromDepositWhitelist = "StrategyRemovedFromDepositWhitelist"
	EventAddShares = "add_shares"
	EventRemoveShares = "remove_shares"
)

// Attribute keys shared across events.
const (
	AttrStrategy = "strategy"
	AttrToken = "token"
	AttrStaker = "staker"
	AttrShares = "shares"
)
