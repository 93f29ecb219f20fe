package types

import (
	"cosmossdk.io/errors"
)

// Codespace is shared across all four components: StrategyManager,
// DelegationManager, SlashManager and RewardsCoordinator all wrap these
// same sentinels, naming the error kind as semantic, not per-component.
const Codespace = "restaking"

var (
	// ErrUnauthorized: caller is not the required owner/whitelister/
	// delegation-manager/strategy-manager/slasher/validator/claimer.
	ErrUnauthorized = errors.Register(Codespace, 2, "unauthorized")
	// ErrPaused: the requested operation is gated off.
	ErrPaused = errors.Register(Codespace, 3, "paused")
	// ErrInvalidArgument: zero amount, mismatched array lengths, duplicate
	// entries, ordering violation, expired signature, timestamp out of window.
	ErrInvalidArgument = errors.Register(Codespace, 4, "invalid argument")
	// ErrNotFound: operator/strategy/root/slash-request/withdrawal absent.
	ErrNotFound = errors.Register(Codespace, 5, "not found")
	// ErrAlreadyExists: double-register, double-delegate, re-blacklist,
	// duplicate strategy for token.
	ErrAlreadyExists = errors.Register(Codespace, 6, "already exists")
	// ErrOverflow/ErrUnderflow: share arithmetic violates bounds. Fatal,
	// never silently saturated.
	ErrOverflow = errors.Register(Codespace, 7, "overflow")
	ErrUnderflow = errors.Register(Codespace, 8, "underflow")
	// ErrProofInvalid: earner or token proof fails to reconstruct the
	// expected root; leaf index out of range.
	ErrProofInvalid = errors.Register(Codespace, 9, "proof invalid")
	// ErrDelayNotPassed: min-delay or per-strategy delay not yet elapsed.
	ErrDelayNotPassed = errors.Register(Codespace, 10, "delay not passed")
	// ErrInsufficientBalance: the protocol cannot fulfill a claim or
	// withdrawal because token balance is missing.
	ErrInsufficientBalance = errors.Register(Codespace, 11, "insufficient balance")
)
