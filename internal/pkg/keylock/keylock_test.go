package keylock_test

import (
	"sync"
	"testing"
	"time"

	"ordering/internal/pkg/keylock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_SerializesSameKey(t *testing.T) {
	l := keylock.New()

	var (
		wg      sync.WaitGroup
		counter int
	)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("order-1")
			defer unlock()

			// non-atomic read-modify-write is safe only under the key lock
			v := counter
			time.Sleep(time.Microsecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, l.Len())
}

func TestLocker_DifferentKeysDoNotBlock(t *testing.T) {
	l := keylock.New()

	unlockA := l.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := l.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "lock on another key blocked")
	}
}

func TestLocker_ReleasesKeys(t *testing.T) {
	l := keylock.New()

	unlock := l.Lock("a")
	assert.Equal(t, 1, l.Len())

	unlock()
	assert.Equal(t, 0, l.Len())
}
