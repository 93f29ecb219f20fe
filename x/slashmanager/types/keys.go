package types

// ModuleName identifies the component for logging, metrics and collection
// prefixing.
const ModuleName = "slashmanager"

var (
	PrefixSlashers = []byte{0x01}
	PrefixValidators = []byte{0x02}
	PrefixMinimalSlashSignature = []byte{0x03}
	PrefixMaxTimeInFuture = []byte{0x04}
	PrefixSlashRequests = []byte{0x05}
	PrefixOwner = []byte{0x06}
)
