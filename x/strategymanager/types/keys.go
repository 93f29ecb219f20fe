package types

// ModuleName identifies the component for logging, metrics and collection
// prefixing.
const ModuleName = "strategymanager"

// Collection prefixes. Each byte must be unique within this keeper's
// schema; values are arbitrary but stable once deployed (collections uses
// them as raw store-key prefixes).
var (
	PrefixStrategies = []byte{0x01}
	PrefixStrategyByToken = []byte{0x02}
	PrefixDepositWhitelist = []byte{0x03}
	PrefixBlacklistedTokens = []byte{0x04}
	PrefixStakerStrategyShares = []byte{0x05}
	PrefixStakerStrategyList = []byte{0x06}
	PrefixOwner = []byte{0x07}
	PrefixWhitelister = []byte{0x08}
)
