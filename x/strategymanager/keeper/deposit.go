package keeper

import (
	sdkmath "cosmossdk.io/math"
	"cosmossdk.io/collections"
	sdk "github.com/cosmos/cosmos-sdk/types"

	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/strategymanager/types"
)

// Deposit executes the deposit protocol: the caller becomes the staker.
// Fails if the strategy is not whitelisted, if amount is 0, or if the
// resulting shares round to 0.
func (k Keeper) Deposit(ctx sdk.Context, staker, strategy, token restaking.Address, amount sdkmath.Uint) (newShares sdkmath.Uint, err error) {
	defer func() { k.metrics.ObserveOutcome(types.ModuleName, "deposit", err) }()

	if amount.IsZero() {
		return sdkmath.Uint{}, restaking.ErrInvalidArgument.Wrap("deposit amount must be non-zero")
	}
	whitelisted, err := k.DepositWhitelist.Has(ctx.Context(), string(strategy))
	if err != nil {
		return sdkmath.Uint{}, err
	}
	if !whitelisted {
		return sdkmath.Uint{}, restaking.ErrInvalidArgument.Wrapf("strategy %s is not whitelisted for deposit", strategy)
	}

	vault, ok := k.vaults.Vault(strategy)
	if !ok {
		return sdkmath.Uint{}, restaking.ErrNotFound.Wrapf("strategy %s has no registered vault", strategy)
	}
	tokenContract, ok := k.tokens.Token(token)
	if !ok {
		return sdkmath.Uint{}, restaking.ErrNotFound.Wrapf("token %s has no registered contract", token)
	}

	// Step 1: transfer_from(caller, strategy, amount).
	if err := tokenContract.TransferFrom(ctx, staker, strategy, amount); err != nil {
		return sdkmath.Uint{}, err
	}

	// Step 2/3: B = balance after transfer, S = total_shares before.
	stateBefore, err := vault.State(ctx)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	balanceAfter, err := tokenContract.BalanceOf(ctx, restaking.Address(strategy))
	if err != nil {
		return sdkmath.Uint{}, err
	}

	newShares, err = restaking.SharesForDeposit(amount, stateBefore.TotalShares, balanceAfter)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	if newShares.IsZero() {
		return sdkmath.Uint{}, restaking.ErrInvalidArgument.Wrap("deposit rounds to zero shares")
	}

	// Step 5: message the strategy to update its internal total_shares.
	newTotalShares, err := vault.Deposit(ctx, amount)
	if err != nil {
		return sdkmath.Uint{}, err
	}
	k.metrics.SharesOutstanding.WithLabelValues(string(strategy)).Set(float64(newTotalShares.BigInt().Int64()))

	// Step 6: bookkeeping.
	if err := k.addStakerShares(ctx, staker, strategy, newShares); err != nil {
		return sdkmath.Uint{}, err
	}

	// Step 7: dispatch DelegationManager.increase_delegated_shares.
	if k.delegation != nil {
		if err := k.delegation.IncreaseDelegatedShares(ctx, staker, strategy, newShares); err != nil {
			return sdkmath.Uint{}, err
		}
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventAddShares,
		sdk.NewAttribute(types.AttrStaker, string(staker)),
		sdk.NewAttribute(types.AttrStrategy, string(strategy)),
		sdk.NewAttribute(types.AttrShares, newShares.String())))
	return newShares, nil
}

// AddShares is pure bookkeeping (no token movement), callable only by
// DelegationManager/SlashManager via their held Keeper reference. Same
// list/cap rules as Deposit.
func (k Keeper) AddShares(ctx sdk.Context, staker, token, strategy restaking.Address, shares sdkmath.Uint) (err error) {
	defer func() { k.metrics.ObserveOutcome(types.ModuleName, "add_shares", err) }()

	if shares.IsZero() {
		return restaking.ErrInvalidArgument.Wrap("shares must be non-zero")
	}
	if err = k.addStakerShares(ctx, staker, strategy, shares); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventAddShares,
		sdk.NewAttribute(types.AttrStaker, string(staker)),
		sdk.NewAttribute(types.AttrStrategy, string(strategy)),
		sdk.NewAttribute(types.AttrShares, shares.String())))
	return nil
}

func (k Keeper) addStakerShares(ctx sdk.Context, staker, strategy restaking.Address, shares sdkmath.Uint) error {
	key := collections.Join(string(staker), string(strategy))
	current, err := k.StakerStrategyShares.Get(ctx.Context(), key)
	if err != nil {
		current = sdkmath.ZeroUint()
	}
	wasZero := current.IsZero()
	if err := k.StakerStrategyShares.Set(ctx.Context(), key, current.Add(shares)); err != nil {
		return err
	}
	if wasZero {
		return k.appendStakerStrategy(ctx, staker, strategy)
	}
	return nil
}

func (k Keeper) appendStakerStrategy(ctx sdk.Context, staker, strategy restaking.Address) error {
	list, err := k.StakerStrategyList.Get(ctx.Context(), string(staker))
	if err != nil {
		list = nil
	}
	for _, s := range list {
		if s == string(strategy) {
			return nil
		}
	}
	if len(list) >= k.maxStakerStrategyListLength {
		return restaking.ErrInvalidArgument.Wrapf("staker %s strategy list exceeds max length %d", staker, k.maxStakerStrategyListLength)
	}
	list = append(list, string(strategy))
	return k.StakerStrategyList.Set(ctx.Context(), string(staker), list)
}

func (k Keeper) removeStakerStrategy(ctx sdk.Context, staker, strategy restaking.Address) error {
	list, err := k.StakerStrategyList.Get(ctx.Context(), string(staker))
	if err != nil {
		return nil
	}
	out := list[:0]
	for _, s := range list {
		if s != string(strategy) {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return k.StakerStrategyList.Remove(ctx.Context(), string(staker))
	}
	return k.StakerStrategyList.Set(ctx.Context(), string(staker), out)
}

// RemoveShares decrements a staker's shares in a strategy. Fails if
// shares > current or shares == 0. Removes the strategy from the staker's
// list iff the post-balance is 0.
func (k Keeper) RemoveShares(ctx sdk.Context, staker, strategy restaking.Address, shares sdkmath.Uint) (err error) {
	defer func() { k.metrics.ObserveOutcome(types.ModuleName, "remove_shares", err) }()

	if shares.IsZero() {
		return restaking.ErrInvalidArgument.Wrap("shares must be non-zero")
	}
	key := collections.Join(string(staker), string(strategy))
	current, err := k.StakerStrategyShares.Get(ctx.Context(), key)
	if err != nil {
		return restaking.ErrUnderflow.Wrapf("staker %s has no shares in strategy %s", staker, strategy)
	}
	if shares.GT(current) {
		return restaking.ErrUnderflow.Wrapf("cannot remove %s shares, staker only has %s", shares, current)
	}
	remaining := current.Sub(shares)
	if remaining.IsZero() {
		if err = k.StakerStrategyShares.Remove(ctx.Context(), key); err != nil {
			return err
		}
		if err = k.removeStakerStrategy(ctx, staker, strategy); err != nil {
			return err
		}
	} else if err = k.StakerStrategyShares.Set(ctx.Context(), key, remaining); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventRemoveShares,
		sdk.NewAttribute(types.AttrStaker, string(staker)),
		sdk.NewAttribute(types.AttrStrategy, string(strategy)),
		sdk.NewAttribute(types.AttrShares, shares.String())))
	return nil
}

// WithdrawSharesAsTokens forwards to the strategy's withdraw, callable
// only by DelegationManager.
func (k Keeper) WithdrawSharesAsTokens(ctx sdk.Context, recipient, strategy restaking.Address, shares sdkmath.Uint, token restaking.Address) (err error) {
	defer func() { k.metrics.ObserveOutcome(types.ModuleName, "withdraw_shares_as_tokens", err) }()

	vault, ok := k.vaults.Vault(strategy)
	if !ok {
		return restaking.ErrNotFound.Wrapf("strategy %s has no registered vault", strategy)
	}
	err = vault.Withdraw(ctx, recipient, token, shares)
	return err
}

// GetDeposits returns the staker's strategies and per-strategy shares, in
// list order, used by DelegationManager's delegate_to and by
// SlashManager's pro-rata computation.
func (k Keeper) GetDeposits(ctx sdk.Context, staker restaking.Address) ([]restaking.Address, []sdkmath.Uint, error) {
	list, err := k.StakerStrategyList.Get(ctx.Context(), string(staker))
	if err != nil {
		return nil, nil, nil
	}
	strategies := make([]restaking.Address, 0, len(list))
	shares := make([]sdkmath.Uint, 0, len(list))
	for _, s := range list {
		amt, err := k.StakerStrategyShares.Get(ctx.Context(), collections.Join(string(staker), s))
		if err != nil {
			continue
		}
		strategies = append(strategies, restaking.Address(s))
		shares = append(shares, amt)
	}
	return strategies, shares, nil
}

// GetStakerStrategyList returns the raw strategy list for staker.
func (k Keeper) GetStakerStrategyList(ctx sdk.Context, staker restaking.Address) ([]restaking.Address, error) {
	list, err := k.StakerStrategyList.Get(ctx.Context(), string(staker))
	if err != nil {
		return nil, nil
	}
	out := make([]restaking.Address, len(list))
	for i, s := range list {
		out[i] = restaking.Address(s)
	}
	return out, nil
}

// GetStakerShares returns the staker's share balance in strategy, 0 if
// none.
func (k Keeper) GetStakerShares(ctx sdk.Context, staker, strategy restaking.Address) sdkmath.Uint {
	amt, err := k.StakerStrategyShares.Get(ctx.Context(), collections.Join(string(staker), string(strategy)))
	if err != nil {
		return sdkmath.ZeroUint()
	}
	return amt
}

