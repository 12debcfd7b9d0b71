package service

import "sync"

// collectionLocks serialises read-modify-write sequences on the snapshot of
// one collection. The sync cycle and local edits share one instance so a
// merge never overwrites an edit made between its Get and Put.
type collectionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newCollectionLocks() *collectionLocks {
	return &collectionLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the lock of collection and returns its release function.
func (c *collectionLocks) lock(collection string) (unlock func()) {
	c.mu.Lock()
	l, ok := c.locks[collection]
	if !ok {
		l = &sync.Mutex{}
		c.locks[collection] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
