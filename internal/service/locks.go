package service

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// keyedMutex serializes operations that share a key. StartRide uses the
// group id as key, SendRequest the unordered user pair, so two racing
// transitions on the same entity see each other's writes.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// pairKey builds an order-independent lock key for a pair of users.
func pairKey(a, b uuid.UUID) string {
	as, bs := a.String(), b.String()
	if strings.Compare(as, bs) > 0 {
		as, bs = bs, as
	}
	return as + ":" + bs
}
