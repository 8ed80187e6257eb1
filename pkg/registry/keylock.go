package registry

import "sync"

// keyLocker hands out per-key mutexes. Entries are reference counted and
// dropped once no goroutine holds or waits on them.
type keyLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyLocker() *keyLocker {
	return &keyLocker{locks: make(map[string]*keyLock)}
}

// Lock acquires every key in order and returns the matching unlock. Callers
// must pass keys sorted so overlapping sets cannot deadlock.
func (k *keyLocker) Lock(keys []string) func() {
	held := make([]string, 0, len(keys))

	for i, key := range keys {
		if i > 0 && key == keys[i-1] {
			continue
		}

		k.mu.Lock()
		l, ok := k.locks[key]
		if !ok {
			l = &keyLock{}
			k.locks[key] = l
		}
		l.refs++
		k.mu.Unlock()

		l.mu.Lock()

		held = append(held, key)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			k.unlock(held[i])
		}
	}
}

func (k *keyLocker) unlock(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	l := k.locks[key]
	l.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}

func (k *keyLocker) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	return len(k.locks)
}
