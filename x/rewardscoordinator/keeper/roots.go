package keeper

import (
	"cosmossdk.io/collections"
	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	bvscrypto "github.com/bvs-restaking/engine/crypto"
	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/rewardscoordinator/types"
)

// SubmitRoot posts a new earner-tree root, claimable ActivationDelay
// seconds after the current block time.
func (k Keeper) SubmitRoot(ctx sdk.Context, caller restaking.Address, root []byte) (index uint64, err error) {
	defer func() { k.metrics.ObserveOutcome(types.ModuleName, "submit_root", err) }()

	if err = k.requireRewardsUpdater(ctx, caller); err != nil {
		return 0, err
	}
	if len(root) != 32 {
		return 0, restaking.ErrInvalidArgument.Wrap("root must be a 32-byte digest")
	}
	delay, err := k.ActivationDelay.Get(ctx.Context())
	if err != nil {
		return 0, err
	}
	index, err = k.RootSequence.Next(ctx.Context())
	if err != nil {
		return 0, err
	}
	record := types.DistributionRoot{
		Root: root,
		ActivatedAt: ctx.BlockTime().Unix() + delay,
	}
	if err := k.DistributionRoots.Set(ctx.Context(), index, record); err != nil {
		return 0, err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventDistributionRootSubmitted,
		sdk.NewAttribute(types.AttrRootIndex, uintToString(index))))
	return index, nil
}

// DisableRoot withdraws a root before its activation window elapses,
// e.g. in response to a detected computation error.
func (k Keeper) DisableRoot(ctx sdk.Context, caller restaking.Address, rootIndex uint64) (err error) {
	defer func() { k.metrics.ObserveOutcome(types.ModuleName, "disable_root", err) }()

	if err = k.requireRewardsUpdater(ctx, caller); err != nil {
		return err
	}
	record, err := k.DistributionRoots.Get(ctx.Context(), rootIndex)
	if err != nil {
		return restaking.ErrNotFound.Wrap("no such distribution root")
	}
	if ctx.BlockTime().Unix() >= record.ActivatedAt {
		return restaking.ErrInvalidArgument.Wrap("root is already active")
	}
	record.Disabled = true
	if err := k.DistributionRoots.Set(ctx.Context(), rootIndex, record); err != nil {
		return err
	}
	ctx.EventManager().EmitEvent(sdk.NewEvent(
		types.EventDistributionRootDisabled,
		sdk.NewAttribute(types.AttrRootIndex, uintToString(rootIndex))))
	return nil
}

// ProcessClaim verifies, for each named token, a path through the
// per-earner token tree up to an earner-token root, then a path through
// the top-level earner tree from H(earner‖earner_token_root) up to the
// posted distribution root, and pays out cumulative_earnings minus
// whatever has already been claimed for that (earner, token) pair into
// recipient. Claims are cumulative, not incremental: replaying an
// already-fully-claimed proof pays out zero rather than erroring.
//
// caller must be earner's current claimer, set via SetClaimerFor; defaults
// to earner itself. recipient is independent of that authorization check:
// a claimer may direct payout anywhere, including somewhere other than
// itself.
func (k Keeper) ProcessClaim(ctx sdk.Context, caller, earner restaking.Address, recipient restaking.Address, rootIndex uint64, proofs []types.TokenEarnerProof) (err error) {
	defer func() { k.metrics.ObserveOutcome(types.ModuleName, "process_claim", err) }()

	if k.claimerFor(ctx, earner) != caller {
		return restaking.ErrUnauthorized.Wrapf("%s is not the claimer for %s", caller, earner)
	}
	record, err := k.DistributionRoots.Get(ctx.Context(), rootIndex)
	if err != nil {
		return restaking.ErrNotFound.Wrap("no such distribution root")
	}
	if record.Disabled {
		return restaking.ErrInvalidArgument.Wrap("root is disabled")
	}
	if ctx.BlockTime().Unix() < record.ActivatedAt {
		return restaking.ErrDelayNotPassed.Wrap("root is not yet active")
	}

	for _, proof := range proofs {
		tokenLeaf := bvscrypto.TokenLeafHash(proof.Token, bvscrypto.BigEndianUint128(proof.CumulativeEarnings.BigInt().Bytes()))
		tokenTreeRoot, err := bvscrypto.ReconstructRoot(tokenLeaf, proof.TokenTreeProof, proof.TokenLeafIndex)
		if err != nil {
			return err
		}
		earnerLeaf := bvscrypto.EarnerLeafHash(earner, tokenTreeRoot)
		ok, err := bvscrypto.VerifyProof(earnerLeaf, proof.EarnerTreeProof, proof.EarnerLeafIndex, record.Root)
		if err != nil {
			return err
		}
		if !ok {
			return restaking.ErrProofInvalid.Wrapf("proof for token %s does not reconstruct distribution root", proof.Token)
		}

		claimKey := collections.Join(string(earner), string(proof.Token))
		alreadyClaimed, err := k.CumulativeClaimed.Get(ctx.Context(), claimKey)
		if err != nil {
			alreadyClaimed = sdkmath.ZeroUint()
		}
		if proof.CumulativeEarnings.LTE(alreadyClaimed) {
			continue
		}
		owed := proof.CumulativeEarnings.Sub(alreadyClaimed)

		token, ok := k.tokens.Token(proof.Token)
		if !ok {
			return restaking.ErrNotFound.Wrapf("token %s has no registered contract", proof.Token)
		}
		if err := token.Transfer(ctx, recipient, owed); err != nil {
			return err
		}
		if err := k.CumulativeClaimed.Set(ctx.Context(), claimKey, proof.CumulativeEarnings); err != nil {
			return err
		}

		ctx.EventManager().EmitEvent(sdk.NewEvent(
			types.EventRewardsClaimed,
			sdk.NewAttribute(types.AttrEarner, string(earner)),
			sdk.NewAttribute(types.AttrToken, string(proof.Token)),
			sdk.NewAttribute(types.AttrAmount, owed.String())))
	}
	return nil
}
