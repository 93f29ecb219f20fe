// Package store supplies the KVStoreService that backs every keeper's
// cosmossdk.io/collections schema. The engine has no consensus layer of its
// own, so the service wraps a single in-memory tm-db database rather than
// a versioned multi-store.
package store

import (
	"context"

	corestore "cosmossdk.io/core/store"
	dbm "github.com/tendermint/tm-db"
)

// KVStoreService adapts a tm-db database to cosmossdk.io/core/store's
// KVStoreService, the way a chain's runtime adapts its IAVL multi-store.
type KVStoreService struct {
	db dbm.DB
	prefix []byte
}

var _ corestore.KVStoreService = (*KVStoreService)(nil)

// NewMemoryStoreService opens a fresh in-memory database for one component.
// Each keeper gets its own prefix so four keepers can share a process
// without key collisions even though they don't share a schema.
func NewMemoryStoreService(prefix string) *KVStoreService {
	return &KVStoreService{db: dbm.NewMemDB(), prefix: []byte(prefix + "/")}
}

// OpenKVStore implements corestore.KVStoreService.
func (s *KVStoreService) OpenKVStore(_ context.Context) corestore.KVStore {
	return prefixStore{db: s.db, prefix: s.prefix}
}

type prefixStore struct {
	db dbm.DB
	prefix []byte
}

var _ corestore.KVStore = prefixStore{}

func (p prefixStore) key(k []byte) []byte {
	out := make([]byte, 0, len(p.prefix)+len(k))
	out = append(out, p.prefix...)
	out = append(out, k...)
	return out
}

func (p prefixStore) Get(key []byte) ([]byte, error) { return p.db.Get(p.key(key)) }
func (p prefixStore) Has(key []byte) (bool, error) { return p.db.Has(p.key(key)) }
func (p prefixStore) Set(key, value []byte) error { return p.db.Set(p.key(key), value) }
func (p prefixStore) Delete(key []byte) error { return p.db.Delete(p.key(key)) }

func (p prefixStore) Iterator(start, end []byte) (corestore.Iterator, error) {
	it, err := p.db.Iterator(p.bound(start), p.boundEnd(end))
	if err != nil {
		return nil, err
	}
	return prefixIterator{Iterator: it, prefix: p.prefix}, nil
}

func (p prefixStore) ReverseIterator(start, end []byte) (corestore.Iterator, error) {
	it, err := p.db.ReverseIterator(p.bound(start), p.boundEnd(end))
	if err != nil {
		return nil, err
	}
	return prefixIterator{Iterator: it, prefix: p.prefix}, nil
}

func (p prefixStore) bound(start []byte) []byte {
	if start == nil {
		return p.prefix
	}
	return p.key(start)
}

func (p prefixStore) boundEnd(end []byte) []byte {
	if end == nil {
		return prefixUpperBound(p.prefix)
	}
	return p.key(end)
}

// prefixUpperBound returns the smallest byte slice larger than every slice
// beginning with prefix, giving a half-open range [prefix, upperBound) that
// covers exactly the keys under prefix.
func prefixUpperBound(prefix []byte) []byte {
	bz := make([]byte, len(prefix))
	copy(bz, prefix)
	for i := len(bz) - 1; i >= 0; i-- {
		if bz[i] < 0xff {
			bz[i]++
			return bz[:i+1]
		}
	}
	return nil
}

type prefixIterator struct {
	dbm.Iterator
	prefix []byte
}

func (it prefixIterator) Key() []byte {
	return it.Iterator.Key()[len(it.prefix):]
}

