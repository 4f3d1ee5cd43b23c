package app

import (
	"sort"
	"sync"
)

// RoomLocks serializes stay and payment writes per (tenant, room) so that an
// overlap or payment check and the write that follows it are atomic.
type RoomLocks struct {
	mu   sync.Mutex
	held map[string]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

// NewRoomLocks creates an empty lock table.
func NewRoomLocks() *RoomLocks {
	return &RoomLocks{held: make(map[string]*roomLock)}
}

// Lock acquires the locks for every given room of the tenant, in a fixed
// order, and returns the function that releases them.
func (l *RoomLocks) Lock(tenantID string, roomIDs ...string) (unlock func()) {
	keys := make([]string, 0, len(roomIDs))
	seen := make(map[string]bool, len(roomIDs))
	for _, id := range roomIDs {
		k := tenantID + "/" + id
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	locks := make([]*roomLock, len(keys))
	l.mu.Lock()
	for i, k := range keys {
		rl, ok := l.held[k]
		if !ok {
			rl = &roomLock{}
			l.held[k] = rl
		}
		rl.refs++
		locks[i] = rl
	}
	l.mu.Unlock()

	for _, rl := range locks {
		rl.mu.Lock()
	}

	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].mu.Unlock()
		}
		l.mu.Lock()
		for i, k := range keys {
			locks[i].refs--
			if locks[i].refs == 0 {
				delete(l.held, k)
			}
		}
		l.mu.Unlock()
	}
}
