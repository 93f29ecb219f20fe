package types

// ModuleName identifies the component for logging, metrics and collection
// prefixing.
const ModuleName = "delegationmanager"

var (
	PrefixOperatorDetails = []byte{0x01}
	PrefixDelegatedTo = []byte{0x02}
	PrefixOperatorShares = []byte{0x03}
	PrefixCumulativeWithdrawalsQueued = []byte{0x04}
	PrefixPendingWithdrawals = []byte{0x05}
	PrefixMinWithdrawalDelayBlocks = []byte{0x06}
	PrefixStrategyWithdrawalDelayBlocks = []byte{0x07}
	PrefixOwner = []byte{0x08}
)
