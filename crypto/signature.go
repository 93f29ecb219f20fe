package crypto

import (
	"encoding/hex"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"
	"github.com/hdevalence/ed25519consensus"
	tmed25519 "github.com/tendermint/tendermint/crypto/ed25519"
)

// SignatureVerifier checks validator signatures over a slash_hash using
// ed25519consensus (a batch-verifiable, malleability-hardened verifier),
// caching recent (hash, pubkey, signature) outcomes so the same triple
// presented again by a repeated ExecuteSlashRequest call for the same
// slash hash isn't re-verified from scratch.
type SignatureVerifier struct {
	mu sync.Mutex
	cache *simplelru.LRU
}

// NewSignatureVerifier builds a verifier with an LRU cache of the given
// size. A size of 0 disables caching.
func NewSignatureVerifier(cacheSize int) *SignatureVerifier {
	v := &SignatureVerifier{}
	if cacheSize > 0 {
		lru, _ := simplelru.NewLRU(cacheSize, nil)
		v.cache = lru
	}
	return v
}

// Verify checks that signature is a valid ed25519 signature by pubkey over
// message.
func (v *SignatureVerifier) Verify(pubkey tmed25519.PubKey, message, signature []byte) bool {
	key := v.cacheKey(pubkey, message, signature)
	if v.cache != nil {
		v.mu.Lock()
		if cached, ok := v.cache.Get(key); ok {
			v.mu.Unlock()
			return cached.(bool)
		}
		v.mu.Unlock()
	}

	ok := len(pubkey) == ed25519PubKeySize && ed25519consensus.Verify(pubkey, message, signature)

	if v.cache != nil {
		v.mu.Lock()
		v.cache.Add(key, ok)
		v.mu.Unlock()
	}
	return ok
}

const ed25519PubKeySize = 32

func (v *SignatureVerifier) cacheKey(pubkey, message, signature []byte) string {
	return hex.EncodeToString(pubkey) + "|" + hex.EncodeToString(message) + "|" + hex.EncodeToString(signature)
}

