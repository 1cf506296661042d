package services

import (
	"sync"

	"campus-match-backend/internal/models"
)

// PairLocker hands out mutexes keyed by an unordered pair of user ids.
// Entries are dropped once no goroutine holds or waits for them.
type PairLocker struct {
	mu    sync.Mutex
	locks map[[2]string]*pairLock
}

type pairLock struct {
	mu   sync.Mutex
	refs int
}

// NewPairLocker creates an empty pair locker
func NewPairLocker() *PairLocker {
	return &PairLocker{locks: make(map[[2]string]*pairLock)}
}

// Lock blocks until the pair {a, b} is held and returns the release func
func (l *PairLocker) Lock(a, b string) func() {
	userA, userB := models.OrderPair(a, b)
	key := [2]string{userA, userB}

	l.mu.Lock()
	pl, ok := l.locks[key]
	if !ok {
		pl = &pairLock{}
		l.locks[key] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()

	return func() {
		pl.mu.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}

func (l *PairLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
