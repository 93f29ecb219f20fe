package keeper

import (
	"cosmossdk.io/collections"
	sdk "github.com/cosmos/cosmos-sdk/types"

	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/slashmanager/types"
)

// SetSlasher authorizes or revokes slasher as an entity that may submit
// slash requests on behalf of operator. Owner-only.
func (k Keeper) SetSlasher(ctx sdk.Context, caller, operator, slasher restaking.Address, enabled bool) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}
	key := collections.Join(string(operator), string(slasher))
	if err := k.Slashers.Set(ctx.Context(), key, enabled); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventSlasherUpdated,
		sdk.NewAttribute(types.AttrOperator, string(operator)),
		sdk.NewAttribute(types.AttrSlasher, string(slasher))))
	return nil
}

func (k Keeper) isSlasherFor(ctx sdk.Context, operator, slasher restaking.Address) (bool, error) {
	v, err := k.Slashers.Get(ctx.Context(), collections.Join(string(operator), string(slasher)))
	if err != nil {
		return false, nil
	}
	return v, nil
}

// isAnySlasher reports whether caller is an authorized slasher for at least
// one operator. SetSlasherValidator governs a global validator set that is
// not scoped to a single operator, so the authorization check it needs is
// "does caller hold slasher rights anywhere," not "for operator X."
func (k Keeper) isAnySlasher(ctx sdk.Context, caller restaking.Address) (bool, error) {
	it, err := k.Slashers.Iterate(ctx.Context(), nil)
	if err != nil {
		return false, err
	}
	defer it.Close()
	for ; it.Valid(); it.Next() {
		kv, err := it.KeyValue()
		if err != nil {
			return false, err
		}
		if kv.Value && kv.Key.K2() == string(caller) {
			return true, nil
		}
	}
	return false, nil
}

// SetSlasherValidator adds or removes pubkeyHex from the set of validators
// whose signatures count toward the N-of-M execution threshold. Gated on
// slasher authorization: this is the validator-principal set a slasher
// maintains, not an owner-level protocol parameter.
func (k Keeper) SetSlasherValidator(ctx sdk.Context, caller restaking.Address, pubkeyHex string, enabled bool) error {
	authorized, err := k.isAnySlasher(ctx, caller)
	if err != nil {
		return err
	}
	if !authorized {
		return restaking.ErrUnauthorized.Wrapf("%s is not an authorized slasher", caller)
	}
	if enabled {
		err = k.Validators.Set(ctx.Context(), pubkeyHex)
	} else {
		err = k.Validators.Remove(ctx.Context(), pubkeyHex)
	}
	if err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventSlasherValidatorUpdated))
	return nil
}

// SetMinimalSlashSignature sets M, the number of distinct validator
// signatures required to execute a slash request.
func (k Keeper) SetMinimalSlashSignature(ctx sdk.Context, caller restaking.Address, m uint64) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}
	if m == 0 {
		return restaking.ErrInvalidArgument.Wrap("minimal slash signature must be non-zero")
	}
	if err := k.MinimalSlashSignature.Set(ctx.Context(), m); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventMinimalSlashSignatureSet))
	return nil
}

// SetMaxTimeInFuture bounds how far past the current block time a slash
// request's window_end may be set, limiting how long a pending request
// can be held open before expiring validator attention.
func (k Keeper) SetMaxTimeInFuture(ctx sdk.Context, caller restaking.Address, seconds int64) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}
	if seconds <= 0 {
		return restaking.ErrInvalidArgument.Wrap("max time in future must be positive")
	}
	if err := k.MaxTimeInFuture.Set(ctx.Context(), seconds); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(types.EventMaxTimeInFutureSet))
	return nil
}
