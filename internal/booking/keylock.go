package booking

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Locker guards the critical section around slot admission. The booking
// service serializes competing submissions for the same slot through it.
type Locker interface {
	WithSlotLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// SlotKey is the lock key for a (date, time) slot.
func SlotKey(date time.Time, slotTime string) string {
	return fmt.Sprintf("%s|%s", DateOnly(date).Format("2006-01-02"), slotTime)
}

// KeyMutex is an in-process Locker: one mutex per slot key. It is the
// single-node counterpart of the Redis slot lock and the default in tests.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyMutex() *KeyMutex {
	return &KeyMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *KeyMutex) WithSlotLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	defer m.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
