package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/rewardscoordinator/types"
)

// SetRewardsUpdater changes the address permitted to submit and disable
// distribution roots.
func (k Keeper) SetRewardsUpdater(ctx sdk.Context, caller, updater restaking.Address) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}
	if err := k.RewardsUpdater.Set(ctx.Context(), string(updater)); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventRewardsUpdaterSet))
	return nil
}

// SetActivationDelay changes the delay between submit_root and a root
// becoming claimable.
func (k Keeper) SetActivationDelay(ctx sdk.Context, caller restaking.Address, seconds int64) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}
	if seconds < 0 {
		return restaking.ErrInvalidArgument.Wrap("activation delay must be non-negative")
	}
	if err := k.ActivationDelay.Set(ctx.Context(), seconds); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventActivationDelaySet))
	return nil
}

// SetGlobalCommissionBips changes the protocol-wide default operator
// commission applied to distributions.
func (k Keeper) SetGlobalCommissionBips(ctx sdk.Context, caller restaking.Address, bips uint64) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}
	if bips > 10_000 {
		return restaking.ErrInvalidArgument.Wrap("commission bips must not exceed 10000")
	}
	if err := k.GlobalCommissionBips.Set(ctx.Context(), bips); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventGlobalCommissionBipsSet))
	return nil
}

// SetRewardsForAllSubmitter authorizes or revokes addr's ability to call
// CreateRewardsForAllSubmission (protocol-funded, not tied to a specific
// BVS).
func (k Keeper) SetRewardsForAllSubmitter(ctx sdk.Context, caller, addr restaking.Address, enabled bool) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}
	var err error
	if enabled {
		err = k.RewardsForAllSubmitter.Set(ctx.Context(), string(addr))
	} else {
		err = k.RewardsForAllSubmitter.Remove(ctx.Context(), string(addr))
	}
	if err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventRewardsForAllSubmitterSet))
	return nil
}

// SetClaimerFor lets earner designate claimer as the principal allowed to
// call ProcessClaim on its behalf; the payout goes to the recipient named
// in that ProcessClaim call.
func (k Keeper) SetClaimerFor(ctx sdk.Context, earner, claimer restaking.Address) error {
	if err := k.ClaimerFor.Set(ctx.Context(), string(earner), string(claimer)); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventClaimerForSet,
		sdk.NewAttribute(types.AttrEarner, string(earner))))
	return nil
}

func (k Keeper) claimerFor(ctx sdk.Context, earner restaking.Address) restaking.Address {
	claimer, err := k.ClaimerFor.Get(ctx.Context(), string(earner))
	if err != nil {
		return earner
	}
	return restaking.Address(claimer)
}

