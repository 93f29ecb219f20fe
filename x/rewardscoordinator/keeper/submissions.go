package keeper

import (
	"math/big"

	"cosmossdk.io/collections"
	sdk "github.com/cosmos/cosmos-sdk/types"

	bvscrypto "github.com/bvs-restaking/engine/crypto"
	restaking "github.com/bvs-restaking/engine/types"
	"github.com/bvs-restaking/engine/x/rewardscoordinator/types"
)

// CreateBVSRewardsSubmission escrows amount of token from a registered BVS
// into the coordinator, to be distributed per strategy weight in a future
// submitted root. Gated by the consumed Directory interface
// (Non-goal: this engine does not implement BVS registration itself, only
// the read-only is-registered check).
func (k Keeper) CreateBVSRewardsSubmission(ctx sdk.Context, bvs restaking.Address, submission types.RewardsSubmission) error {
	registered, err := k.directory.IsBVS(ctx, bvs)
	if err != nil {
		return err
	}
	if !registered {
		return restaking.ErrUnauthorized.Wrapf("%s is not a registered BVS", bvs)
	}
	return k.escrowSubmission(ctx, bvs, submission, types.EventBVSRewardsSubmissionCreated)
}

// CreateRewardsForAllSubmission is the protocol-funded counterpart: not
// tied to a specific BVS, gated instead by the owner-managed
// RewardsForAllSubmitter whitelist.
func (k Keeper) CreateRewardsForAllSubmission(ctx sdk.Context, submitter restaking.Address, submission types.RewardsSubmission) error {
	authorized, err := k.RewardsForAllSubmitter.Has(ctx.Context(), string(submitter))
	if err != nil {
		return err
	}
	if !authorized {
		return restaking.ErrUnauthorized.Wrapf("%s is not an authorized rewards-for-all submitter", submitter)
	}
	return k.escrowSubmission(ctx, submitter, submission, types.EventRewardsForAllSubmissionCreated)
}

// escrowSubmission validates submission against every owner-tunable bound
// (amount, duration, timestamp alignment and bounds, strategy eligibility),
// fingerprints it together with the submitter's nonce (which advances on
// every accepted submission, so an identical resubmission gets a new hash
// and is accepted as a separate submission), then transfers amount into
// the coordinator's escrow.
func (k Keeper) escrowSubmission(ctx sdk.Context, submitter restaking.Address, submission types.RewardsSubmission, event string) error {
	if submission.Amount.IsZero() {
		return restaking.ErrInvalidArgument.Wrap("submission amount must be non-zero")
	}
	if submission.Amount.GT(k.params.MaxRewardsAmount) {
		return restaking.ErrInvalidArgument.Wrapf("submission amount exceeds max rewards amount %s", k.params.MaxRewardsAmount)
	}
	if len(submission.StrategiesAndMultipliers) == 0 {
		return restaking.ErrInvalidArgument.Wrap("submission must name at least one strategy")
	}
	if submission.Duration <= 0 {
		return restaking.ErrInvalidArgument.Wrap("duration must be positive")
	}

	maxDuration, err := k.MaxRewardsDuration.Get(ctx.Context())
	if err != nil {
		return err
	}
	if submission.Duration > maxDuration {
		return restaking.ErrInvalidArgument.Wrap("duration exceeds max rewards duration")
	}

	calcInterval, err := k.CalculationIntervalSeconds.Get(ctx.Context())
	if err != nil {
		return err
	}
	if submission.Duration%calcInterval != 0 {
		return restaking.ErrInvalidArgument.Wrap("duration must be a multiple of the calculation interval")
	}
	if submission.StartTimestamp%calcInterval != 0 {
		return restaking.ErrInvalidArgument.Wrap("start_timestamp must be a multiple of the calculation interval")
	}

	maxRetroactive, err := k.MaxRetroactiveLength.Get(ctx.Context())
	if err != nil {
		return err
	}
	genesisTimestamp, err := k.GenesisRewardsTimestamp.Get(ctx.Context())
	if err != nil {
		return err
	}
	if ctx.BlockTime().Unix()-maxRetroactive > submission.StartTimestamp || submission.StartTimestamp < genesisTimestamp {
		return restaking.ErrInvalidArgument.Wrap("start_timestamp too far in the past")
	}

	maxFuture, err := k.MaxFutureLength.Get(ctx.Context())
	if err != nil {
		return err
	}
	if submission.StartTimestamp > ctx.BlockTime().Unix()+maxFuture {
		return restaking.ErrInvalidArgument.Wrap("start_timestamp too far in the future")
	}

	var prevStrategy restaking.Address
	for _, sm := range submission.StrategiesAndMultipliers {
		whitelisted, err := k.strategy.IsWhitelistedForDeposit(ctx, sm.Strategy)
		if err != nil {
			return err
		}
		if !whitelisted {
			return restaking.ErrInvalidArgument.Wrapf("strategy %s is not whitelisted", sm.Strategy)
		}
		if prevStrategy != "" && string(sm.Strategy) <= string(prevStrategy) {
			return restaking.ErrInvalidArgument.Wrap("strategies must be strictly ascending with no duplicates")
		}
		prevStrategy = sm.Strategy
	}

	nonce, err := k.SubmissionNonce.Get(ctx.Context(), string(submitter))
	if err != nil {
		nonce = 0
	}
	strategies := make([]restaking.Address, len(submission.StrategiesAndMultipliers))
	multipliers := make([]*big.Int, len(submission.StrategiesAndMultipliers))
	for i, sm := range submission.StrategiesAndMultipliers {
		strategies[i] = sm.Strategy
		multipliers[i] = sm.Multiplier.BigInt()
	}
	hash := bvscrypto.RewardsSubmissionHash(submitter, nonce, submission.Token, submission.Amount.BigInt(),
		strategies, multipliers, submission.StartTimestamp, submission.Duration)
	hashKey := collections.Join(string(submitter), string(hash))

	alreadySubmitted, err := k.SubmittedHashes.Has(ctx.Context(), hashKey)
	if err != nil {
		return err
	}
	if alreadySubmitted {
		return restaking.ErrAlreadyExists.Wrap("rewards submission already recorded")
	}

	token, ok := k.tokens.Token(submission.Token)
	if !ok {
		return restaking.ErrNotFound.Wrapf("token %s has no registered contract", submission.Token)
	}
	rewardsPool := restaking.Address(types.ModuleName)
	if err := token.TransferFrom(ctx, submitter, rewardsPool, submission.Amount); err != nil {
		return err
	}

	if err := k.SubmittedHashes.Set(ctx.Context(), hashKey); err != nil {
		return err
	}
	if err := k.SubmissionNonce.Set(ctx.Context(), string(submitter), nonce+1); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		event,
		sdk.NewAttribute(types.AttrToken, string(submission.Token)),
		sdk.NewAttribute(types.AttrAmount, submission.Amount.String())))
	return nil
}
