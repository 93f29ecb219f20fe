// Package types declares SlashManager's persistent records, consumed
// collaborator interfaces and events.
package types

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	restaking "github.com/bvs-restaking/engine/types"
)

// SlashStatus is a request's lifecycle state.
type SlashStatus int32

const (
	SlashStatusPending SlashStatus = iota
	SlashStatusExecuted
	SlashStatusCancelled
)

// SlashRequest is the persistent record of a submitted slash; it is kept
// after execution or cancellation, with Status recording which. TotalSlashShare is an absolute figure in share units, distributed
// across every (staker, strategy) pair delegated to Operator pro-rata to
// that pair's portion of the operator's aggregate delegated shares.
type SlashRequest struct {
	Operator restaking.Address `json:"operator"`
	Slasher restaking.Address `json:"slasher"`
	TotalSlashShare sdkmath.Uint `json:"total_slash_share"`
	Validators []restaking.Address `json:"validators"`
	WindowStart int64 `json:"window_start"`
	WindowEnd int64 `json:"window_end"`
	Status SlashStatus `json:"status"`
}

// StrategyManager is the subset of the StrategyManager keeper SlashManager
// dispatches to: an explicit typed interface passed at construction.
type StrategyManager interface {
	GetDeposits(ctx sdk.Context, staker restaking.Address) ([]restaking.Address, []sdkmath.Uint, error)
	RemoveShares(ctx sdk.Context, staker, strategy restaking.Address, shares sdkmath.Uint) error
}

// DelegationManager is the subset of the DelegationManager keeper
// SlashManager dispatches to.
type DelegationManager interface {
	GetOperatorShares(ctx sdk.Context, operator restaking.Address) ([]restaking.Address, []sdkmath.Uint, error)
	GetOperatorStakers(ctx sdk.Context, operator restaking.Address) ([]restaking.Address, error)
	DecreaseDelegatedShares(ctx sdk.Context, operator, strategy restaking.Address, shares sdkmath.Uint) error
}

// Event names.
const (
	EventSlasherUpdated = "SlasherUpdated"
	EventSlasherValidatorUpdated = "SlasherValidatorUpdated"
	EventMinimalSlashSignatureSet = "MinimalSlashSignatureSet"
	EventMaxTimeInFutureSet = "MaxTimeInFutureSet"
	EventSlashRequested = "SlashRequested"
	EventSlashExecuted = "SlashExecuted"
	EventSlashCancelled = "SlashCancelled"
)

// Attribute keys.
const (
	AttrOperator = "operator"
	AttrSlasher = "slasher"
	AttrSlashHash = "slash_hash"
	AttrStrategy = "strategy"
	AttrShares = "shares"
	AttrStaker = "staker"
)
