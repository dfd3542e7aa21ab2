package apikey

/**
 * API Key Cache
 * =============
 * Stores the credentials of the active affiliates in memory for easy access
 * to ensure faster response rate for key verification and a lower db load.
 */

import (
	"sync"

	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

// Cache godoc
type Cache struct {
	// the local cache of api keys by prefix
	keys    map[string]*model.APIKey
	decoded map[string]string
	lock    *sync.RWMutex
}

// cache instance that keeps the list of api keys in the system
var cache *Cache

func init() {
	cache = &Cache{
		keys:    make(map[string]*model.APIKey),
		decoded: make(map[string]string),
		lock:    &sync.RWMutex{},
	}
}

// Get a key by prefix from the cache
func Get(prefix string) (key *model.APIKey, decoded string, found, isDecoded bool) {
	cache.lock.RLock()
	key, found = cache.keys[prefix]
	decoded, isDecoded = cache.decoded[prefix]
	cache.lock.RUnlock()
	return
}

// Set godoc
// Update a single key in the cache
func Set(prefix string, key *model.APIKey) {
	cache.lock.Lock()
	cache.keys[prefix] = key
	delete(cache.decoded, prefix)
	cache.lock.Unlock()
}

// Remove a key from the cache, used when a key is rotated or its owner suspended
func Remove(prefix string) {
	cache.lock.Lock()
	delete(cache.keys, prefix)
	delete(cache.decoded, prefix)
	cache.lock.Unlock()
}

// SetDecoded godoc
// Mark the api key with the given prefix as verified with the given decoded api key
// This allows the system to not need to rehash every api key received against the one received in the system
func SetDecoded(prefix string, decoded string) (ok bool) {
	cache.lock.Lock()
	if _, ok = cache.keys[prefix]; ok {
		cache.decoded[prefix] = decoded
	}
	cache.lock.Unlock()
	return
}

// SetAll godoc
// Update the internal memory api key cache with the new list of keys
func SetAll(keys map[string]*model.APIKey) {
	decoded := make(map[string]string)
	cache.lock.Lock()
	cache.keys = keys
	cache.decoded = decoded
	cache.lock.Unlock()
}

// Len returns the number of cached keys
func Len() int {
	cache.lock.RLock()
	defer cache.lock.RUnlock()
	return len(cache.keys)
}
