package keeper

import (
	sdk "github.com/cosmos/cosmos-sdk/types"

	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/strategymanager/types"

	sdkmath "cosmossdk.io/math"
)

// AddNewStrategy registers strategy as the vault for token. Owner only.
// Fails if the token is blacklisted, if a strategy already exists for
// that token, if the strategy has no registered vault, or if the vault
// reports an empty manager; which manager the vault names is not checked
// against this keeper. Initializes the strategy as not whitelisted
// for deposit.
func (k Keeper) AddNewStrategy(ctx sdk.Context, caller restaking.Address, strategy, token restaking.Address, maxPerDeposit, maxTotalDeposits sdkmath.Uint) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}

	blacklisted, err := k.BlacklistedTokens.Has(ctx.Context(), string(token))
	if err != nil {
		return err
	}
	if blacklisted {
		return restaking.ErrInvalidArgument.Wrapf("token %s is blacklisted", token)
	}

	if _, err := k.StrategyByToken.Get(ctx.Context(), string(token)); err == nil {
		return restaking.ErrAlreadyExists.Wrapf("strategy already registered for token %s", token)
	}

	vault, ok := k.vaults.Vault(strategy)
	if !ok {
		return restaking.ErrNotFound.Wrapf("strategy %s has no registered vault", strategy)
	}
	state, err := vault.State(ctx)
	if err != nil {
		return err
	}
	if state.Manager == "" {
		return restaking.ErrInvalidArgument.Wrap("strategy does not declare a controlling manager")
	}

	record := types.StrategyRecord{
		UnderlyingToken: token,
		MaxPerDeposit: maxPerDeposit,
		MaxTotalDeposits: maxTotalDeposits,
	}
	if err := k.Strategies.Set(ctx.Context(), string(strategy), record); err != nil {
		return err
	}
	if err := k.StrategyByToken.Set(ctx.Context(), string(token), string(strategy)); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventNewStrategyAdded,
		sdk.NewAttribute(types.AttrStrategy, string(strategy)),
		sdk.NewAttribute(types.AttrToken, string(token))))
	return nil
}

// SetStrategyLimits updates a strategy's per-deposit and total-deposit
// caps. Owner only (supplementing the Strategy entity's
// attributes with the setter never itemized).
func (k Keeper) SetStrategyLimits(ctx sdk.Context, caller, strategy restaking.Address, maxPerDeposit, maxTotalDeposits sdkmath.Uint) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}
	record, err := k.Strategies.Get(ctx.Context(), string(strategy))
	if err != nil {
		return restaking.ErrNotFound.Wrapf("strategy %s not registered", strategy)
	}
	record.MaxPerDeposit = maxPerDeposit
	record.MaxTotalDeposits = maxTotalDeposits
	return k.Strategies.Set(ctx.Context(), string(strategy), record)
}

// Whitelist adds strategies to the deposit whitelist. Whitelister only.
// Idempotent: re-adding an already-whitelisted strategy emits no event.
func (k Keeper) Whitelist(ctx sdk.Context, caller restaking.Address, strategies []restaking.Address) error {
	if err := k.requireWhitelister(ctx, caller); err != nil {
		return err
	}
	for _, s := range strategies {
		already, err := k.DepositWhitelist.Has(ctx.Context(), string(s))
		if err != nil {
			return err
		}
		if already {
			continue
		}
		if err := k.DepositWhitelist.Set(ctx.Context(), string(s)); err != nil {
			return err
		}
		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventStrategyAddedToDepositWhitelist,
			sdk.NewAttribute(types.AttrStrategy, string(s))))
	}
	return nil
}

// Unwhitelist removes strategies from the deposit whitelist. Whitelister
// only. Idempotent.
func (k Keeper) Unwhitelist(ctx sdk.Context, caller restaking.Address, strategies []restaking.Address) error {
	if err := k.requireWhitelister(ctx, caller); err != nil {
		return err
	}
	for _, s := range strategies {
		already, err := k.DepositWhitelist.Has(ctx.Context(), string(s))
		if err != nil {
			return err
		}
		if !already {
			continue
		}
		if err := k.DepositWhitelist.Remove(ctx.Context(), string(s)); err != nil {
			return err
		}
		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventStrategyRemovedFromDepositWhitelist,
			sdk.NewAttribute(types.AttrStrategy, string(s))))
	}
	return nil
}

// BlacklistTokens rejects already-blacklisted tokens. If a strategy exists
// for the token, also removes it from the deposit whitelist.
func (k Keeper) BlacklistTokens(ctx sdk.Context, caller restaking.Address, tokens []restaking.Address) error {
	if err := k.requireWhitelister(ctx, caller); err != nil {
		return err
	}
	for _, t := range tokens {
		already, err := k.BlacklistedTokens.Has(ctx.Context(), string(t))
		if err != nil {
			return err
		}
		if already {
			return restaking.ErrAlreadyExists.Wrapf("token %s already blacklisted", t)
		}
		if err := k.BlacklistedTokens.Set(ctx.Context(), string(t)); err != nil {
			return err
		}
		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventTokenBlacklisted,
			sdk.NewAttribute(types.AttrToken, string(t))))

		strategy, err := k.StrategyByToken.Get(ctx.Context(), string(t))
		if err == nil {
			if err := k.DepositWhitelist.Remove(ctx.Context(), strategy); err != nil {
				return err
			}
			ctx.EventManager().EmitEvent(sdk.NewEvent(
				types.EventStrategyRemovedFromDepositWhitelist,
				sdk.NewAttribute(types.AttrStrategy, strategy)))
		}
	}
	return nil
}

// TransferOwner hands off the single owner slot. Owner only.
func (k Keeper) TransferOwner(ctx sdk.Context, caller, newOwner restaking.Address) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}
	return k.Owner.Set(ctx.Context(), string(newOwner))
}

// SetWhitelister hands off the whitelister slot. Owner only.
func (k Keeper) SetWhitelister(ctx sdk.Context, caller, newWhitelister restaking.Address) error {
	if err := k.requireOwner(ctx, caller); err != nil {
		return err
	}
	return k.Whitelister.Set(ctx.Context(), string(newWhitelister))
}

func (k Keeper) requireOwner(ctx sdk.Context, caller restaking.Address) error {
	owner, err := k.Owner.Get(ctx.Context())
	if err != nil {
		return err
	}
	if owner != string(caller) {
		return restaking.ErrUnauthorized.Wrapf("caller %s is not the owner", caller)
	}
	return nil
}

func (k Keeper) requireWhitelister(ctx sdk.Context, caller restaking.Address) error {
	whitelister, err := k.Whitelister.Get(ctx.Context())
	if err != nil {
		return err
	}
	if whitelister != string(caller) {
		return restaking.ErrUnauthorized.Wrapf("caller %s is not the whitelister", caller)
	}
	return nil
}

// IsWhitelistedForDeposit reports whether a strategy currently accepts
// deposits.
func (k Keeper) IsWhitelistedForDeposit(ctx sdk.Context, strategy restaking.Address) (bool, error) {
	return k.DepositWhitelist.Has(ctx.Context(), string(strategy))
}
