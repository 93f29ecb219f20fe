// Package types declares RewardsCoordinator's persistent records, consumed
// collaborator interfaces and events.
package types

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	restaking "github.com/bvs-restaking/engine/types"
)

// StrategyAndMultiplier weights one strategy's contribution toward a
// rewards submission's distribution.
type StrategyAndMultiplier struct {
	Strategy restaking.Address `json:"strategy"`
	Multiplier sdkmath.Uint `json:"multiplier"`
}

// RewardsSubmission is a BVS- or protocol-funded reward pool posted for
// off-chain aggregation into a future distribution root.
type RewardsSubmission struct {
	Submitter restaking.Address `json:"submitter"`
	Token restaking.Address `json:"token"`
	Amount sdkmath.Uint `json:"amount"`
	StrategiesAndMultipliers []StrategyAndMultiplier `json:"strategies_and_multipliers"`
	StartTimestamp int64 `json:"start_timestamp"`
	Duration int64 `json:"duration"`
}

// DistributionRoot is a posted earner-tree root, activating
// ActivationDelay after submission unless disabled first.
type DistributionRoot struct {
	Root []byte `json:"root"`
	ActivatedAt int64 `json:"activated_at"`
	Disabled bool `json:"disabled"`
}

// TokenEarnerProof is one leaf of a process_claim request: a path through
// the per-earner token tree plus the path from the earner's token-tree
// root up through the earner tree.
type TokenEarnerProof struct {
	Token restaking.Address `json:"token"`
	CumulativeEarnings sdkmath.Uint `json:"cumulative_earnings"`
	TokenTreeProof []byte `json:"token_tree_proof"`
	TokenLeafIndex uint64 `json:"token_leaf_index"`
	EarnerTreeProof []byte `json:"earner_tree_proof"`
	EarnerLeafIndex uint64 `json:"earner_leaf_index"`
}

// Directory is the consumed, read-only gate used to check that a caller is
// a registered BVS before it may fund a rewards submission. No directory
// registration logic lives in this engine, only the query gate.
type Directory interface {
	IsBVS(ctx sdk.Context, addr restaking.Address) (bool, error)
}

// TokenRegistry resolves a token address to a transferable contract,
// mirrored from StrategyManager's consumed interface so RewardsCoordinator
// can escrow submitted reward pools without importing strategymanager.
type TokenRegistry interface {
	Token(token restaking.Address) (TokenContract, bool)
}

// TokenContract is the transfer surface RewardsCoordinator needs.
type TokenContract interface {
	TransferFrom(ctx sdk.Context, owner, recipient restaking.Address, amount sdkmath.Uint) error
	Transfer(ctx sdk.Context, recipient restaking.Address, amount sdkmath.Uint) error
}

// StrategyManager is the subset of the StrategyManager keeper
// RewardsCoordinator consults to validate that a submission's strategies
// are all eligible to receive rewards.
type StrategyManager interface {
	IsWhitelistedForDeposit(ctx sdk.Context, strategy restaking.Address) (bool, error)
}

// Event names.
const (
	EventRewardsUpdaterSet = "RewardsUpdaterSet"
	EventActivationDelaySet = "ActivationDelaySet"
	EventGlobalCommissionBipsSet = "GlobalCommissionBipsSet"
	EventRewardsForAllSubmitterSet = "RewardsForAllSubmitterSet"
	EventClaimerForSet = "ClaimerForSet"
	EventBVSRewardsSubmissionCreated = "BVSRewardsSubmissionCreated"
	EventRewardsForAllSubmissionCreated = "RewardsForAllSubmissionCreated"
	EventDistributionRootSubmitted = "DistributionRootSubmitted"
	EventDistributionRootDisabled = "DistributionRootDisabled"
	EventRewardsClaimed = "RewardsClaimed"
)

// Attribute keys.
const (
	AttrEarner = "earner"
	AttrToken = "token"
	AttrAmount = "amount"
	AttrRootIndex = "root_index"
)
