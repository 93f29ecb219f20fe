package keeper

import "strconv"

func uintToString(n uint64) string {
	return strconv.FormatUint(n, 10)
}
