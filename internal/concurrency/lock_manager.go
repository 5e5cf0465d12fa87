package concurrency

import (
	"sync"

	"github.com/google/uuid"
)

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// LockManager serializes work per key. Entries are dropped once no caller
// holds or waits on them, so long-lived processes do not accumulate locks.
type LockManager struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedLock
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[uuid.UUID]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock function
func (lm *LockManager) Lock(key uuid.UUID) func() {
	lm.mu.Lock()
	l, ok := lm.locks[key]
	if !ok {
		l = &keyedLock{}
		lm.locks[key] = l
	}
	l.refs++
	lm.mu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()

			lm.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(lm.locks, key)
			}
			lm.mu.Unlock()
		})
	}
}

// Len returns the number of keys currently held or awaited
func (lm *LockManager) Len() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.locks)
}
