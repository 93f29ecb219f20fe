package keeper

import (
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/delegationmanager/types"
)

// RegisterAsOperator turns caller into an operator: operators are
// implicitly self-delegated from the moment of registration.
func (k Keeper) RegisterAsOperator(ctx sdk.Context, operator restaking.Address, details types.OperatorDetails) error {
	already, err := k.OperatorDetailsMap.Has(ctx.Context(), string(operator))
	if err != nil {
		return err
	}
	if already {
		return restaking.ErrAlreadyExists.Wrapf("%s is already an operator", operator)
	}
	if details.StakerOptOutWindowBlocks > k.params.MaxStakerOptOutWindowBlocks {
		return restaking.ErrInvalidArgument.Wrapf("opt-out window %d exceeds max %d", details.StakerOptOutWindowBlocks, k.params.MaxStakerOptOutWindowBlocks)
	}
	if err := k.OperatorDetailsMap.Set(ctx.Context(), string(operator), details); err != nil {
		return err
	}
	if err := k.DelegatedTo.Set(ctx.Context(), string(operator), string(operator)); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventOperatorRegistered,
		sdk.NewAttribute(types.AttrOperator, string(operator))))
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventOperatorDetailsSet,
		sdk.NewAttribute(types.AttrOperator, string(operator))))
	return nil
}

// ModifyOperatorDetails updates an existing operator's terms. The opt-out
// window may only increase, never decrease, protecting stakers who
// delegated under a shorter window.
func (k Keeper) ModifyOperatorDetails(ctx sdk.Context, operator restaking.Address, newDetails types.OperatorDetails) error {
	current, err := k.OperatorDetailsMap.Get(ctx.Context(), string(operator))
	if err != nil {
		return restaking.ErrNotFound.Wrapf("%s is not a registered operator", operator)
	}
	if newDetails.StakerOptOutWindowBlocks < current.StakerOptOutWindowBlocks {
		return restaking.ErrInvalidArgument.Wrap("opt-out window may only increase")
	}
	if newDetails.StakerOptOutWindowBlocks > k.params.MaxStakerOptOutWindowBlocks {
		return restaking.ErrInvalidArgument.Wrapf("opt-out window %d exceeds max %d", newDetails.StakerOptOutWindowBlocks, k.params.MaxStakerOptOutWindowBlocks)
	}
	if err := k.OperatorDetailsMap.Set(ctx.Context(), string(operator), newDetails); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventOperatorDetailsSet,
		sdk.NewAttribute(types.AttrOperator, string(operator))))
	if newDetails.MetadataURI != current.MetadataURI {
		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventOperatorMetadataURIUpdated,
			sdk.NewAttribute(types.AttrOperator, string(operator))))
	}
	return nil
}

// IsOperator reports whether addr has registered (self-delegated).
func (k Keeper) IsOperator(ctx sdk.Context, addr restaking.Address) (bool, error) {
	return k.OperatorDetailsMap.Has(ctx.Context(), string(addr))
}

// IsDelegated reports whether staker currently has a delegation.
func (k Keeper) IsDelegated(ctx sdk.Context, staker restaking.Address) (bool, error) {
	return k.DelegatedTo.Has(ctx.Context(), string(staker))
}

// DelegatedOperator returns the operator staker is delegated to, if any.
func (k Keeper) DelegatedOperator(ctx sdk.Context, staker restaking.Address) (restaking.Address, bool, error) {
	op, err := k.DelegatedTo.Get(ctx.Context(), string(staker))
	if err != nil {
		return "", false, nil
	}
	return restaking.Address(op), true, nil
}

// DelegateTo delegates staker's full deposited share balances (across every
// strategy StrategyManager reports for staker) to operator.
// A staker may have at most one active delegation; operators are
// self-delegated by registration and may not re-delegate.
func (k Keeper) DelegateTo(ctx sdk.Context, staker, operator restaking.Address) error {
	isOperator, err := k.IsOperator(ctx, operator)
	if err != nil {
		return err
	}
	if !isOperator {
		return restaking.ErrNotFound.Wrapf("%s is not a registered operator", operator)
	}
	if delegated, err := k.IsDelegated(ctx, staker); err != nil {
		return err
	} else if delegated {
		return restaking.ErrAlreadyExists.Wrapf("%s is already delegated", staker)
	}

	if err := k.DelegatedTo.Set(ctx.Context(), string(staker), string(operator)); err != nil {
		return err
	}

	strategies, shares, err := k.strategyManager.GetDeposits(ctx, staker)
	if err != nil {
		return err
	}
	for i, strategy := range strategies {
		if err := k.increaseOperatorShares(ctx, operator, strategy, shares[i]); err != nil {
			return err
		}
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventDelegate,
		sdk.NewAttribute(types.AttrStaker, string(staker)),
		sdk.NewAttribute(types.AttrOperator, string(operator))))
	return nil
}

// IncreaseDelegatedShares is the StrategyManager dispatch hook invoked on
// every deposit. A no-op if the staker is not currently delegated.
func (k Keeper) IncreaseDelegatedShares(ctx sdk.Context, staker, strategy restaking.Address, shares sdkmath.Uint) error {
	operator, delegated, err := k.DelegatedOperator(ctx, staker)
	if err != nil {
		return err
	}
	if !delegated {
		return nil
	}
	return k.increaseOperatorShares(ctx, operator, strategy, shares)
}

func (k Keeper) increaseOperatorShares(ctx sdk.Context, operator, strategy restaking.Address, shares sdkmath.Uint) error {
	key := operatorStrategyKey(operator, strategy)
	current, err := k.OperatorShares.Get(ctx.Context(), key)
	if err != nil {
		current = zeroUint()
	}
	if err := k.OperatorShares.Set(ctx.Context(), key, current.Add(shares)); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventOperatorSharesIncreased,
		sdk.NewAttribute(types.AttrOperator, string(operator)),
		sdk.NewAttribute(types.AttrStrategy, string(strategy)),
		sdk.NewAttribute(types.AttrShares, shares.String())))
	return nil
}

func (k Keeper) decreaseOperatorShares(ctx sdk.Context, operator, strategy restaking.Address, shares sdkmath.Uint) error {
	key := operatorStrategyKey(operator, strategy)
	current, err := k.OperatorShares.Get(ctx.Context(), key)
	if err != nil {
		return restaking.ErrUnderflow.Wrapf("operator %s has no shares in strategy %s", operator, strategy)
	}
	if shares.GT(current) {
		return restaking.ErrUnderflow.Wrapf("cannot decrease %s shares, operator only has %s", shares, current)
	}
	remaining := current.Sub(shares)
	if remaining.IsZero() {
		if err := k.OperatorShares.Remove(ctx.Context(), key); err != nil {
			return err
		}
	} else if err := k.OperatorShares.Set(ctx.Context(), key, remaining); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventOperatorSharesDecreased,
		sdk.NewAttribute(types.AttrOperator, string(operator)),
		sdk.NewAttribute(types.AttrStrategy, string(strategy)),
		sdk.NewAttribute(types.AttrShares, shares.String())))
	return nil
}

// DecreaseDelegatedShares is the SlashManager dispatch hook, invoked to
// reduce an operator's delegated shares by the slashed amount without
// moving any staker's deposited balance directly: the operator's
// delegated-share ledger absorbs the cut.
func (k Keeper) DecreaseDelegatedShares(ctx sdk.Context, operator, strategy restaking.Address, shares sdkmath.Uint) error {
	return k.decreaseOperatorShares(ctx, operator, strategy, shares)
}

// Undelegate severs staker's delegation and queues full withdrawals of
// every strategy balance the staker holds, exactly as queue_withdrawals
// would. caller must be either the staker or the staker's
// current operator (operator-initiated force-undelegate).
func (k Keeper) Undelegate(ctx sdk.Context, caller, staker restaking.Address) ([][]byte, error) {
	operator, delegated, err := k.DelegatedOperator(ctx, staker)
	if err != nil {
		return nil, err
	}
	if !delegated {
		return nil, restaking.ErrInvalidArgument.Wrapf("%s is not delegated", staker)
	}
	isOperator, err := k.IsOperator(ctx, staker)
	if err != nil {
		return nil, err
	}
	if isOperator {
		return nil, restaking.ErrInvalidArgument.Wrap("operators cannot be undelegated")
	}
	forced := caller != staker
	if forced && caller != operator {
		return nil, restaking.ErrUnauthorized.Wrapf("%s may not undelegate %s", caller, staker)
	}

	strategies, shares, err := k.strategyManager.GetDeposits(ctx, staker)
	if err != nil {
		return nil, err
	}
	var roots [][]byte
	if len(strategies) > 0 {
		root, err := k.queueWithdrawalInternal(ctx, staker, operator, staker, strategies, shares)
		if err != nil {
			return nil, err
		}
		roots = append(roots, root)
	}

	if err := k.DelegatedTo.Remove(ctx.Context(), string(staker)); err != nil {
		return nil, err
	}

	event := types.EventStakerUndelegated
	if forced {
		event = types.EventStakerForceUndelegated
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		event,
		sdk.NewAttribute(types.AttrStaker, string(staker)),
		sdk.NewAttribute(types.AttrOperator, string(operator))))
	return roots, nil
}

// GetOperatorStakers is a linear scan returning every staker currently
// delegated to operator. Fine for the engine's in-memory scale; a
// production deployment would maintain a secondary index.
func (k Keeper) GetOperatorStakers(ctx sdk.Context, operator restaking.Address) ([]restaking.Address, error) {
	var stakers []restaking.Address
	it, err := k.DelegatedTo.Iterate(ctx.Context(), nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		kv, err := it.KeyValue()
		if err != nil {
			return nil, err
		}
		if kv.Value == string(operator) {
			stakers = append(stakers, restaking.Address(kv.Key))
		}
	}
	return stakers, nil
}

// GetDelegatableShares returns the strategies/shares StrategyManager has on
// record for staker: a query helper mirroring what DelegateTo would move.
func (k Keeper) GetDelegatableShares(ctx sdk.Context, staker restaking.Address) ([]restaking.Address, []sdkmath.Uint, error) {
	return k.strategyManager.GetDeposits(ctx, staker)
}

