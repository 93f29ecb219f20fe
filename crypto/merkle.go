// Package crypto implements the engine's bit-exact, consensus-critical
// encodings: the earner/token Merkle scheme, the withdrawal_root and
// slash_hash fingerprints, and validator signature verification. These are
// fixed cross-implementation wire formats, hand-rolled over crypto/sha256
// rather than routed through a general-purpose Merkle library, since
// getting the byte layout wrong breaks cross-implementation compatibility
// silently.
package crypto

import (
	"crypto/sha256"
	"encoding/binary"

	restaking "github.com/bvs-restaking/engine/types"
)

// Merkleize builds a SHA-256 tree over leaves with pairwise concatenation
// H(left‖right), left to right. The leaf count must be a power of two;
// callers pad explicitly.
func Merkleize(leaves [][]byte) ([]byte, error) {
	if len(leaves) == 0 || !isPowerOfTwo(len(leaves)) {
		return nil, restaking.ErrInvalidArgument.Wrap("merkleize requires a non-zero power-of-two leaf count")
	}
	level := make([][]byte, len(leaves))
	copy(level, leaves)
	for len(level) > 1 {
		next := make([][]byte, len(level)/2)
		for i := range next {
			next[i] = hashPair(level[2*i], level[2*i+1])
		}
		level = next
	}
	return level[0], nil
}

func hashPair(left, right []byte) []byte {
	h := sha256.New()
	h.Write(left)
	h.Write(right)
	return h.Sum(nil)
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// VerifyProof reconstructs a root from a leaf, its sibling proof (a byte
// string whose length must be a multiple of 32, one 32-byte digest per
// sibling), and a leaf index, then compares it against expectedRoot.
//
// The index uses a bitwise-LSB walk: bit k of index selects whether the
// sibling at depth k is concatenated on the left or the right.
func VerifyProof(leaf, proof []byte, index uint64, expectedRoot []byte) (bool, error) {
	computed, err := ReconstructRoot(leaf, proof, index)
	if err != nil {
		return false, err
	}
	return bytesEqual(computed, expectedRoot), nil
}

// ReconstructRoot walks a leaf up through its sibling proof using the same
// bitwise-LSB rule as VerifyProof, returning the resulting root without
// comparing it against anything. Used when the reconstructed root is
// itself a leaf's preimage one level up, as in the two-level earner/token
// tree.
func ReconstructRoot(leaf, proof []byte, index uint64) ([]byte, error) {
	if len(proof)%32 != 0 {
		return nil, restaking.ErrProofInvalid.Wrap("proof length is not a multiple of 32")
	}
	depth := len(proof) / 32
	if depth < 64 && index >= uint64(1)<<uint(depth) {
		return nil, restaking.ErrProofInvalid.Wrap("leaf index out of range for proof depth")
	}
	computed := leaf
	for d := 0; d < depth; d++ {
		sibling := proof[d*32 : d*32+32]
		if index&(1<<uint(d)) == 0 {
			computed = hashPair(computed, sibling)
		} else {
			computed = hashPair(sibling, computed)
		}
	}
	return computed, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EarnerLeafHash computes H(earner‖earner_token_root), the leaf hash for
// the top-level earner tree.
func EarnerLeafHash(earner restaking.Address, earnerTokenRoot []byte) []byte {
	h := sha256.New()
	h.Write([]byte(earner))
	h.Write(earnerTokenRoot)
	return h.Sum(nil)
}

// TokenLeafHash computes H(token‖cumulative_earnings), the leaf hash for a
// per-earner token tree.
func TokenLeafHash(token restaking.Address, cumulativeEarnings uint64AsBytes) []byte {
	h := sha256.New()
	h.Write([]byte(token))
	h.Write(cumulativeEarnings)
	return h.Sum(nil)
}

// uint64AsBytes is a documentation alias: callers pass the big-endian
// encoding of a cumulative-earnings amount produced by BigEndianUint128.
type uint64AsBytes = []byte

// BigEndianUint128 left-pads the big-endian magnitude bytes of an amount
// (such as math.Uint.BigInt().Bytes()) to a fixed 16-byte buffer for
// inclusion in a canonical hash preimage. Inputs longer than 16 bytes keep
// only their low 16 bytes; rewards submission amounts are bounded well
// under 2^128.
func BigEndianUint128(v []byte) []byte {
	out := make([]byte, 16)
	if len(v) > 16 {
		v = v[len(v)-16:]
	}
	copy(out[16-len(v):], v)
	return out
}

// BigEndianUint64 encodes n as an 8-byte big-endian buffer.
func BigEndianUint64(n uint64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, n)
	return out
}

