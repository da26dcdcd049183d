// Package lock serializes work on a shared key, such as one account's pending order.
package lock

import (
	"context"
	"fmt"
	"sync"
)

// Locker hands out exclusive ownership of a key until the returned unlock is called.
// Unlock is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

func PendingOrderKey(accountID uint) string {
	return fmt.Sprintf("pending-order:%d", accountID)
}

type memoryEntry struct {
	sem  chan struct{}
	refs int
}

type memoryLocker struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemoryLocker returns a Locker scoped to this process.
func NewMemoryLocker() Locker {
	return &memoryLocker{
		entries: make(map[string]*memoryEntry),
	}
}

func (l *memoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &memoryEntry{sem: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.release(key, e)
		})
	}, nil
}

func (l *memoryLocker) release(key string, e *memoryEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
