package dbus

import (
	"errors"
	"sync"
)

// errNotFound reports a cache miss.
var errNotFound = errors.New("not found")

// A cache is a concurrency-safe memo of the outcome of an expensive
// computation, such as a signature parse. Both successful results and
// errors are retained, so repeated lookups of a bad key stay cheap.
type cache[K comparable, V any] struct {
	m sync.Map
}

type cacheEntry[V any] struct {
	val V
	err error
}

// Get returns the cached outcome for k, or errNotFound if k has no
// recorded outcome.
func (c *cache[K, V]) Get(k K) (V, error) {
	ent, ok := c.m.Load(k)
	if !ok {
		var zero V
		return zero, errNotFound
	}
	e := ent.(cacheEntry[V])
	return e.val, e.err
}

// Set records val as the outcome for k.
func (c *cache[K, V]) Set(k K, val V) {
	c.m.Store(k, cacheEntry[V]{val: val})
}

// SetErr records err as the outcome for k.
func (c *cache[K, V]) SetErr(k K, err error) {
	c.m.Store(k, cacheEntry[V]{err: err})
}
