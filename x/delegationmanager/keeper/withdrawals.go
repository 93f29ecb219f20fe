package keeper

import (
	"encoding/hex"
	"math/big"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	bvscrypto "github.com/bvs-restaking/engine/crypto"
	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/delegationmanager/types"
)

// QueueWithdrawals begins the two-phase exit for staker across one or more
// strategies: operator_shares and the staker's deposit bookkeeping are
// decremented immediately, and a pending_withdrawals[withdrawal_root] entry
// is persisted so completion can be replayed after the delay elapses.
// withdrawer must equal staker: the engine has no forced-withdrawal path
// that would let a third party redirect someone else's queued exit.
func (k Keeper) QueueWithdrawals(ctx sdk.Context, staker, withdrawer restaking.Address, strategies []restaking.Address, shares []sdkmath.Uint) (root []byte, err error) {
	defer func() { k.metrics.ObserveOutcome(types.ModuleName, "queue_withdrawals", err) }()

	if len(strategies) == 0 || len(strategies) != len(shares) {
		return nil, restaking.ErrInvalidArgument.Wrap("strategies and shares must be equal-length and non-empty")
	}
	if withdrawer != staker {
		return nil, restaking.ErrUnauthorized.Wrap("withdrawer must be staker")
	}
	operator, delegated, err := k.DelegatedOperator(ctx, staker)
	if err != nil {
		return nil, err
	}
	if !delegated {
		operator = ""
	}
	return k.queueWithdrawalInternal(ctx, staker, operator, withdrawer, strategies, shares)
}

func (k Keeper) queueWithdrawalInternal(ctx sdk.Context, staker, operator, withdrawer restaking.Address, strategies []restaking.Address, shares []sdkmath.Uint) ([]byte, error) {
	nonce, err := k.CumulativeWithdrawalsQueued.Get(ctx.Context(), string(staker))
	if err != nil {
		nonce = 0
	}

	for i, strategy := range strategies {
		if err := k.strategyManager.RemoveShares(ctx, staker, strategy, shares[i]); err != nil {
			return nil, err
		}
		if operator != "" {
			if err := k.decreaseOperatorShares(ctx, operator, strategy, shares[i]); err != nil {
				return nil, err
			}
		}
	}

	bigShares := make([]*big.Int, len(shares))
	for i, s := range shares {
		bigShares[i] = s.BigInt()
	}
	root := bvscrypto.WithdrawalRoot(staker, operator, withdrawer, nonce, uint64(ctx.BlockHeight()), strategies, bigShares)
	rootKey := hex.EncodeToString(root)

	if err := k.PendingWithdrawals.Set(ctx.Context(), rootKey); err != nil {
		return nil, err
	}
	if err := k.CumulativeWithdrawalsQueued.Set(ctx.Context(), string(staker), nonce+1); err != nil {
		return nil, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventWithdrawalQueued,
		sdk.NewAttribute(types.AttrStaker, string(staker)),
		sdk.NewAttribute(types.AttrWithdrawer, string(withdrawer)),
		sdk.NewAttribute(types.AttrNonce, uintToString(nonce)),
		sdk.NewAttribute(types.AttrWithdrawalRoot, rootKey)))
	return root, nil
}

// CompleteQueuedWithdrawal finalizes a previously queued withdrawal,
// re-deriving withdrawal_root from the caller-supplied fields to guard
// against tampering. Only withdrawal.Withdrawer may complete it.
// receiveAsTokens selects between paying out the underlying token
// (withdraw_shares_as_tokens) or re-minting shares back to the withdrawer's
// deposit balance. Every named strategy must have an explicitly configured
// withdrawal delay: a strategy that has ever received a deposit but has no
// configured delay fails completion rather than silently defaulting.
func (k Keeper) CompleteQueuedWithdrawal(ctx sdk.Context, caller restaking.Address, withdrawal types.Withdrawal, tokens []restaking.Address, receiveAsTokens bool) (err error) {
	defer func() { k.metrics.ObserveOutcome(types.ModuleName, "complete_queued_withdrawal", err) }()

	if caller != withdrawal.Withdrawer {
		return restaking.ErrUnauthorized.Wrapf("%s is not the withdrawer", caller)
	}

	bigShares := make([]*big.Int, len(withdrawal.Shares))
	for i, s := range withdrawal.Shares {
		bigShares[i] = s.BigInt()
	}
	root := bvscrypto.WithdrawalRoot(withdrawal.Staker, withdrawal.DelegatedTo, withdrawal.Withdrawer,
		withdrawal.Nonce, withdrawal.StartBlock, withdrawal.Strategies, bigShares)
	rootKey := hex.EncodeToString(root)

	pending, err := k.PendingWithdrawals.Has(ctx.Context(), rootKey)
	if err != nil {
		return err
	}
	if !pending {
		return restaking.ErrNotFound.Wrap("no such pending withdrawal")
	}
	if receiveAsTokens && len(tokens) != len(withdrawal.Strategies) {
		return restaking.ErrInvalidArgument.Wrap("tokens must match strategies length")
	}

	minDelay, err := k.MinWithdrawalDelayBlocks.Get(ctx.Context())
	if err != nil {
		return err
	}
	if uint64(ctx.BlockHeight()) < withdrawal.StartBlock+minDelay {
		return restaking.ErrDelayNotPassed.Wrap("minimum withdrawal delay not yet elapsed")
	}

	for _, strategy := range withdrawal.Strategies {
		delay, err := k.StrategyWithdrawalDelayBlocks.Get(ctx.Context(), string(strategy))
		if err != nil {
			return restaking.ErrNotFound.Wrapf("strategy %s has no configured withdrawal delay", strategy)
		}
		if uint64(ctx.BlockHeight()) < withdrawal.StartBlock+delay {
			return restaking.ErrDelayNotPassed.Wrapf("strategy %s withdrawal delay not yet elapsed", strategy)
		}
	}

	for i, strategy := range withdrawal.Strategies {
		if receiveAsTokens {
			if err := k.strategyManager.WithdrawSharesAsTokens(ctx, withdrawal.Withdrawer, strategy, withdrawal.Shares[i], tokens[i]); err != nil {
				return err
			}
		} else {
			var token restaking.Address
			if i < len(tokens) {
				token = tokens[i]
			}
			if err := k.strategyManager.AddShares(ctx, withdrawal.Withdrawer, token, strategy, withdrawal.Shares[i]); err != nil {
				return err
			}
			if operator, delegated, err := k.DelegatedOperator(ctx, withdrawal.Withdrawer); err == nil && delegated {
				if err := k.increaseOperatorShares(ctx, operator, strategy, withdrawal.Shares[i]); err != nil {
					return err
				}
			}
		}
	}

	if err := k.PendingWithdrawals.Remove(ctx.Context(), rootKey); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventWithdrawalCompleted,
		sdk.NewAttribute(types.AttrStaker, string(withdrawal.Staker)),
		sdk.NewAttribute(types.AttrWithdrawer, string(withdrawal.Withdrawer)),
		sdk.NewAttribute(types.AttrWithdrawalRoot, rootKey)))
	return nil
}
