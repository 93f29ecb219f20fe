package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/delegationmanager/types"
)

func (k Keeper) requireOwner(ctx sdk.Context, caller restaking.Address) error {
	owner, err := k.Owner.Get(ctx.Context())
	if err != nil {
		return err
	}
	if string(caller) != owner {
		return restaking.ErrUnauthorized.Wrapf("%s is not the owner", caller)
	}
	return nil
}

// SetMinWithdrawalDelayBlocks sets the floor delay applied to every
// withdrawal regardless of strategy.
func (k Keeper) SetMinWithdrawalDelayBlocks(ctx sdk.Context, caller restaking.Address, blocks uint64) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}
	if blocks > k.params.MaxWithdrawalDelayBlocks {
		return restaking.ErrInvalidArgument.Wrapf("delay %d exceeds max %d", blocks, k.params.MaxWithdrawalDelayBlocks)
	}
	if err := k.MinWithdrawalDelayBlocks.Set(ctx.Context(), blocks); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventMinWithdrawalDelayBlocksSet))
	return nil
}

// SetStrategyWithdrawalDelayBlocks configures the per-strategy delay floor.
// Completion of any withdrawal naming a strategy with no configured delay
// fails (resolved against silent defaulting).
func (k Keeper) SetStrategyWithdrawalDelayBlocks(ctx sdk.Context, caller restaking.Address, strategies []restaking.Address, blocks []uint64) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}
	if len(strategies) != len(blocks) {
		return restaking.ErrInvalidArgument.Wrap("strategies and blocks must be equal-length")
	}
	floor, err := k.MinWithdrawalDelayBlocks.Get(ctx.Context())
	if err != nil {
		return err
	}
	for i, strategy := range strategies {
		if blocks[i] < floor {
			return restaking.ErrInvalidArgument.Wrapf("delay %d for %s is below the min floor %d", blocks[i], strategy, floor)
		}
		if blocks[i] > k.params.MaxWithdrawalDelayBlocks {
			return restaking.ErrInvalidArgument.Wrapf("delay %d for %s exceeds max %d", blocks[i], strategy, k.params.MaxWithdrawalDelayBlocks)
		}
		if err := k.StrategyWithdrawalDelayBlocks.Set(ctx.Context(), string(strategy), blocks[i]); err != nil {
			return err
		}
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventStrategyWithdrawalDelayBlocksSet))
	return nil
}

// StrategyWithdrawalDelay returns the configured delay for strategy, if
// any.
func (k Keeper) StrategyWithdrawalDelay(ctx sdk.Context, strategy restaking.Address) (uint64, bool, error) {
	v, err := k.StrategyWithdrawalDelayBlocks.Get(ctx.Context(), string(strategy))
	if err != nil {
		return 0, false, nil
	}
	return v, true, nil
}

