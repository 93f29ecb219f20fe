// Package types declares DelegationManager's persistent records, consumed
// collaborator interfaces and events.
package types

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	restaking "github.com/bvs-restaking/engine/types"
)

// OperatorDetails records an operator's delegation terms. The opt-out
// window is monotone non-decreasing: an operator may only raise it.
type OperatorDetails struct {
	StakerOptOutWindowBlocks uint64 `json:"staker_opt_out_window_blocks"`
	MetadataURI string `json:"metadata_uri"`
}

// Withdrawal is the queued-exit record fingerprinted by withdrawal_root.
type Withdrawal struct {
	Staker restaking.Address `json:"staker"`
	DelegatedTo restaking.Address `json:"delegated_to"`
	Withdrawer restaking.Address `json:"withdrawer"`
	Nonce uint64 `json:"nonce"`
	StartBlock uint64 `json:"start_block"`
	Strategies []restaking.Address `json:"strategies"`
	Shares []sdkmath.Uint `json:"shares"`
}

// StrategyManager is the subset of the StrategyManager keeper that
// DelegationManager dispatches to: an explicit typed interface passed at
// construction.
type StrategyManager interface {
	GetDeposits(ctx sdk.Context, staker restaking.Address) ([]restaking.Address, []sdkmath.Uint, error)
	AddShares(ctx sdk.Context, staker, token, strategy restaking.Address, shares sdkmath.Uint) error
	RemoveShares(ctx sdk.Context, staker, strategy restaking.Address, shares sdkmath.Uint) error
	WithdrawSharesAsTokens(ctx sdk.Context, recipient, strategy restaking.Address, shares sdkmath.Uint, token restaking.Address) error
}

// Event names.
const (
	EventOperatorRegistered = "OperatorRegistered"
	EventOperatorMetadataURIUpdated = "OperatorMetadataURIUpdated"
	EventOperatorDetailsSet = "OperatorDetailsSet"
	EventDelegate = "Delegate"
	EventStakerUndelegated = "StakerUndelegated"
	EventStakerForceUndelegated = "StakerForceUndelegated"
	EventOperatorSharesIncreased = "OperatorSharesIncreased"
	EventOperatorSharesDecreased = "OperatorSharesDecreased"
	EventWithdrawalQueued = "WithdrawalQueued"
	EventWithdrawalCompleted = "WithdrawalCompleted"
	EventMinWithdrawalDelayBlocksSet = "MinWithdrawalDelayBlocksSet"
	EventStrategyWithdrawalDelayBlocksSet = "StrategyWithdrawalDelayBlocksSet"
)

// Attribute keys.
const (
	AttrOperator = "operator"
	AttrStaker = "staker"
	AttrStrategy = "strategy"
	AttrShares = "shares"
	AttrWithdrawalRoot = "withdrawal_root"
	AttrWithdrawer = "withdrawer"
	AttrNonce = "nonce"
)
