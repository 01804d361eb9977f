package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyMutexSerializesSameKey(t *testing.T) {
	km := NewKeyMutex()
	key := SlotKey(date(2025, time.June, 10), "17:00")

	var inSection, maxInSection int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := km.WithSlotLock(context.Background(), key, func(ctx context.Context) error {
				mu.Lock()
				inSection++
				if inSection > maxInSection {
					maxInSection = inSection
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inSection--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInSection, "critical sections for one key must not overlap")
}

func TestKeyMutexCancelledContext(t *testing.T) {
	km := NewKeyMutex()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := km.WithSlotLock(ctx, "k", func(ctx context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestSlotKey(t *testing.T) {
	k := SlotKey(time.Date(2025, time.June, 10, 15, 30, 0, 0, time.UTC), "17:00")
	assert.Equal(t, "2025-06-10|17:00", k)
}
