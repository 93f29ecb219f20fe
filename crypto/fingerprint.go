package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	restaking "github.com/bvs-restaking/engine/types"
)

// WithdrawalRoot computes the deterministic SHA-256 fingerprint of a
// pending withdrawal:
//
//	SHA-256 over staker, delegated_to, withdrawer, nonce (16-byte BE),
//	start_block (8-byte BE), then length-prefixed arrays of strategies and
//	shares, in that declared field order.
//
// The same encoding is used on replay (completion), so any accidental
// reordering here breaks every in-flight withdrawal.
func WithdrawalRoot(staker, delegatedTo, withdrawer restaking.Address, nonce uint64, startBlock uint64, strategies []restaking.Address, shares []*big.Int) []byte {
	h := sha256.New()
	writeLenPrefixed(h, []byte(staker))
	writeLenPrefixed(h, []byte(delegatedTo))
	writeLenPrefixed(h, []byte(withdrawer))

	var nonceBuf [16]byte
	binary.BigEndian.PutUint64(nonceBuf[8:], nonce)
	h.Write(nonceBuf[:])

	var blockBuf [8]byte
	binary.BigEndian.PutUint64(blockBuf[:], startBlock)
	h.Write(blockBuf[:])

	writeUint64(h, uint64(len(strategies)))
	for _, s := range strategies {
		writeLenPrefixed(h, []byte(s))
	}

	writeUint64(h, uint64(len(shares)))
	for _, s := range shares {
		writeLenPrefixed(h, s.Bytes())
	}

	return h.Sum(nil)
}

// SlashHash computes SHA-256 over sender‖canonical(slash_details)‖
// contract_addr‖concat(pubkeys). canonicalSlashDetails must already be a
// deterministic byte encoding of the slash request's fields (operator,
// share, validator set, window).
func SlashHash(sender restaking.Address, canonicalSlashDetails []byte, contractAddr restaking.Address, pubkeys [][]byte) []byte {
	h := sha256.New()
	writeLenPrefixed(h, []byte(sender))
	h.Write(canonicalSlashDetails)
	writeLenPrefixed(h, []byte(contractAddr))
	for _, pk := range pubkeys {
		h.Write(pk)
	}
	return h.Sum(nil)
}

// CanonicalSlashDetails produces a deterministic byte encoding of the
// fields that make up a slash request, in declared field order, for use as
// the "canonical(slash_details)" segment of SlashHash.
func CanonicalSlashDetails(operator restaking.Address, share *big.Int, validators []restaking.Address, start, end int64) []byte {
	h := sha256.New()
	writeLenPrefixed(h, []byte(operator))
	writeLenPrefixed(h, share.Bytes())
	writeUint64(h, uint64(len(validators)))
	for _, v := range validators {
		writeLenPrefixed(h, []byte(v))
	}
	var tbuf [16]byte
	binary.BigEndian.PutUint64(tbuf[:8], uint64(start))
	binary.BigEndian.PutUint64(tbuf[8:], uint64(end))
	h.Write(tbuf[:])
	return h.Sum(nil)
}

// RewardsSubmissionHash computes the deterministic SHA-256 fingerprint of a
// rewards submission:
//
//	SHA-256 over sender, nonce (16-byte BE), token, amount, then
//	length-prefixed parallel arrays of strategies and multipliers, then
//	start_timestamp/duration (8-byte BE each), in that declared field order.
func RewardsSubmissionHash(sender restaking.Address, nonce uint64, token restaking.Address, amount *big.Int, strategies []restaking.Address, multipliers []*big.Int, startTimestamp, duration int64) []byte {
	h := sha256.New()
	writeLenPrefixed(h, []byte(sender))

	var nonceBuf [16]byte
	binary.BigEndian.PutUint64(nonceBuf[8:], nonce)
	h.Write(nonceBuf[:])

	writeLenPrefixed(h, []byte(token))
	writeLenPrefixed(h, amount.Bytes())

	writeUint64(h, uint64(len(strategies)))
	for _, s := range strategies {
		writeLenPrefixed(h, []byte(s))
	}
	writeUint64(h, uint64(len(multipliers)))
	for _, m := range multipliers {
		writeLenPrefixed(h, m.Bytes())
	}

	var tbuf [16]byte
	binary.BigEndian.PutUint64(tbuf[:8], uint64(startTimestamp))
	binary.BigEndian.PutUint64(tbuf[8:], uint64(duration))
	h.Write(tbuf[:])

	return h.Sum(nil)
}

type byteWriter interface {
	Write(p []byte) (int, error)
}

func writeUint64(w byteWriter, n uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], n)
	w.Write(buf[:])
}

func writeLenPrefixed(w byteWriter, b []byte) {
	writeUint64(w, uint64(len(b)))
	w.Write(b)
}
