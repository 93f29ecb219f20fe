package keeper

import (
	"encoding/hex"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	tmed25519 "github.com/tendermint/tendermint/crypto/ed25519"

	bvscrypto "github.com/bvs-restaking/engine/crypto"
	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/slashmanager/types"
)

// slashContractAddr is the fixed "contract address" segment of slash_hash:
// this engine has one SlashManager instance, so the segment is a constant
// rather than a deployed-contract address.
const slashContractAddr = restaking.Address("slashmanager")

// SubmitSlashRequest records a pending slash against operator, fingerprinted
// by slash_hash. caller must be a slasher the owner has authorized for
// operator via SetSlasher, and
// is recorded on the request as the only principal allowed to cancel it.
func (k Keeper) SubmitSlashRequest(ctx sdk.Context, caller, operator restaking.Address, totalSlashShare sdkmath.Uint, validators []restaking.Address, windowStart, windowEnd int64) (hash []byte, err error) {
	defer func() { k.metrics.ObserveOutcome(types.ModuleName, "submit_slash_request", err) }()

	authorized, err := k.isSlasherFor(ctx, operator, caller)
	if err != nil {
		return nil, err
	}
	if !authorized {
		return nil, restaking.ErrUnauthorized.Wrapf("%s is not an authorized slasher for %s", caller, operator)
	}
	if totalSlashShare.IsZero() {
		return nil, restaking.ErrInvalidArgument.Wrap("total slash share must be non-zero")
	}
	if windowEnd < windowStart {
		return nil, restaking.ErrInvalidArgument.Wrap("window_end must not precede window_start")
	}
	maxFuture, err := k.MaxTimeInFuture.Get(ctx.Context())
	if err != nil {
		return nil, err
	}
	if windowEnd > ctx.BlockTime().Unix()+maxFuture {
		return nil, restaking.ErrInvalidArgument.Wrap("window_end too far in the future")
	}

	details := bvscrypto.CanonicalSlashDetails(operator, totalSlashShare.BigInt(), validators, windowStart, windowEnd)
	pubkeys := make([][]byte, 0)
	hash = bvscrypto.SlashHash(caller, details, slashContractAddr, pubkeys)
	hashKey := hex.EncodeToString(hash)

	if exists, err := k.SlashRequests.Has(ctx.Context(), hashKey); err != nil {
		return nil, err
	} else if exists {
		return nil, restaking.ErrAlreadyExists.Wrap("slash request already pending")
	}

	req := types.SlashRequest{
		Operator: operator,
		Slasher: caller,
		TotalSlashShare: totalSlashShare,
		Validators: validators,
		WindowStart: windowStart,
		WindowEnd: windowEnd,
		Status: types.SlashStatusPending,
	}
	if err := k.SlashRequests.Set(ctx.Context(), hashKey, req); err != nil {
		return nil, err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventSlashRequested,
		sdk.NewAttribute(types.AttrOperator, string(operator)),
		sdk.NewAttribute(types.AttrSlashHash, hashKey)))
	return hash, nil
}

// ExecuteSlashRequest verifies at least MinimalSlashSignature distinct
// registered-validator signatures over slash_hash, then distributes
// TotalSlashShare pro-rata across every (staker, strategy) pair currently
// delegated to the operator:
//
//	slash_in_strat = floor(staker_strategy_share * total_slash_share / sum_of_shares)
//
// sum_of_shares is the operator's aggregate shares across all its stakers
// and all their strategies, so the ratio is a single global fraction applied
// uniformly to every pair. Each pair is debited directly from the staker's
// StrategyManager deposit (RemoveShares) and the operator's delegated total
// (DecreaseDelegatedShares); there is no vault-level dilution. Truncating
// division means a remainder may go unslashed (dust forfeited).
func (k Keeper) ExecuteSlashRequest(ctx sdk.Context, slashHash []byte, pubkeysHex []string, signatures [][]byte) (err error) {
	defer func() { k.metrics.ObserveOutcome(types.ModuleName, "execute_slash_request", err) }()

	if len(pubkeysHex) != len(signatures) {
		return restaking.ErrInvalidArgument.Wrap("pubkeys and signatures must be equal-length")
	}
	hashKey := hex.EncodeToString(slashHash)
	req, err := k.SlashRequests.Get(ctx.Context(), hashKey)
	if err != nil {
		return restaking.ErrNotFound.Wrap("no such pending slash request")
	}
	if req.Status != types.SlashStatusPending {
		return restaking.ErrInvalidArgument.Wrap("slash request is not pending")
	}
	if ctx.BlockTime().Unix() > req.WindowEnd {
		return restaking.ErrInvalidArgument.Wrap("slash request window has expired")
	}

	seen := make(map[string]bool, len(pubkeysHex))
	var validSigners uint64
	for i, pkHex := range pubkeysHex {
		if seen[pkHex] {
			continue
		}
		registered, err := k.Validators.Has(ctx.Context(), pkHex)
		if err != nil {
			return err
		}
		if !registered {
			continue
		}
		pubkey, err := hex.DecodeString(pkHex)
		if err != nil {
			continue
		}
		if k.verifier.Verify(tmed25519.PubKey(pubkey), slashHash, signatures[i]) {
			seen[pkHex] = true
			validSigners++
		}
	}
	threshold, err := k.MinimalSlashSignature.Get(ctx.Context())
	if err != nil {
		return err
	}
	if validSigners < threshold {
		return restaking.ErrProofInvalid.Wrapf("only %d of required %d validator signatures verified", validSigners, threshold)
	}

	stakers, err := k.delegation.GetOperatorStakers(ctx, req.Operator)
	if err != nil {
		return err
	}

	type stakerStrategyShare struct {
		staker restaking.Address
		strategy restaking.Address
		shares sdkmath.Uint
	}
	var pairs []stakerStrategyShare
	sumShares := sdkmath.ZeroUint()
	for _, staker := range stakers {
		strategies, shares, err := k.strategy.GetDeposits(ctx, staker)
		if err != nil {
			return err
		}
		for i, strategy := range strategies {
			if shares[i].IsZero() {
				continue
			}
			pairs = append(pairs, stakerStrategyShare{staker: staker, strategy: strategy, shares: shares[i]})
			sumShares = sumShares.Add(shares[i])
		}
	}
	if sumShares.IsZero() {
		req.Status = types.SlashStatusExecuted
		return k.SlashRequests.Set(ctx.Context(), hashKey, req)
	}

	for _, pair := range pairs {
		slashInStrat := pair.shares.Mul(req.TotalSlashShare).Quo(sumShares)
		if slashInStrat.IsZero() {
			continue
		}
		if err := k.strategy.RemoveShares(ctx, pair.staker, pair.strategy, slashInStrat); err != nil {
			return err
		}
		if err := k.delegation.DecreaseDelegatedShares(ctx, req.Operator, pair.strategy, slashInStrat); err != nil {
			return err
		}
		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventSlashExecuted,
			sdk.NewAttribute(types.AttrOperator, string(req.Operator)),
			sdk.NewAttribute(types.AttrStaker, string(pair.staker)),
			sdk.NewAttribute(types.AttrStrategy, string(pair.strategy)),
			sdk.NewAttribute(types.AttrShares, slashInStrat.String())))
	}

	req.Status = types.SlashStatusExecuted
	return k.SlashRequests.Set(ctx.Context(), hashKey, req)
}

// CancelSlashRequest withdraws a pending request before it is executed.
// Only the slasher who submitted it may cancel it.
func (k Keeper) CancelSlashRequest(ctx sdk.Context, caller restaking.Address, slashHash []byte) error {
	hashKey := hex.EncodeToString(slashHash)
	req, err := k.SlashRequests.Get(ctx.Context(), hashKey)
	if err != nil {
		return restaking.ErrNotFound.Wrap("no such pending slash request")
	}
	if req.Status != types.SlashStatusPending {
		return restaking.ErrInvalidArgument.Wrap("slash request is not pending")
	}
	if caller != req.Slasher {
		return restaking.ErrUnauthorized.Wrapf("%s did not submit this slash request", caller)
	}
	req.Status = types.SlashStatusCancelled
	if err := k.SlashRequests.Set(ctx.Context(), hashKey, req); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventSlashCancelled,
		sdk.NewAttribute(types.AttrOperator, string(req.Operator)),
		sdk.NewAttribute(types.AttrSlashHash, hashKey)))
	return nil
}
