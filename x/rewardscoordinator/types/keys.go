package types

// ModuleName identifies the component for logging, metrics and collection
// prefixing.
const ModuleName = "rewardscoordinator"

var (
	PrefixRewardsUpdater = []byte{0x01}
	PrefixActivationDelay = []byte{0x02}
	PrefixGlobalCommissionBips = []byte{0x03}
	PrefixRewardsForAllSubmitter = []byte{0x04}
	PrefixDistributionRoots = []byte{0x05}
	PrefixRootSequence = []byte{0x06}
	PrefixCumulativeClaimed = []byte{0x07}
	PrefixClaimerFor = []byte{0x08}
	PrefixOwner = []byte{0x09}
	PrefixMaxRewardsDuration = []byte{0x0a}
	PrefixCalculationIntervalSeconds = []byte{0x0b}
	PrefixGenesisRewardsTimestamp = []byte{0x0c}
	PrefixMaxRetroactiveLength = []byte{0x0d}
	PrefixMaxFutureLength = []byte{0x0e}
	PrefixSubmissionNonce = []byte{0x0f}
	PrefixSubmittedHashes = []byte{0x10}
)
