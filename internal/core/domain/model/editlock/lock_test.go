package editlock_test

import (
	"testing"
	"time"

	"ordering/internal/core/domain/model/editlock"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	holder := kernel.NewUUID()

	lock, err := editlock.New(kernel.NewUUID(), kernel.NewUUID(), holder, "Alice", now)
	require.NoError(t, err)

	t.Run("starts with a fresh heartbeat", func(t *testing.T) {
		assert.Equal(t, now, lock.AcquiredAt())
		assert.Equal(t, now, lock.LastHeartbeatAt())
		assert.True(t, lock.IsHeldBy(holder))
		assert.False(t, lock.IsHeldBy(kernel.NewUUID()))
	})

	t.Run("expires after ttl without heartbeat", func(t *testing.T) {
		ttl := 90 * time.Second

		assert.False(t, lock.IsExpired(now.Add(ttl), ttl))
		assert.True(t, lock.IsExpired(now.Add(ttl+time.Millisecond), ttl))
	})

	t.Run("heartbeat extends and never goes back", func(t *testing.T) {
		ttl := 90 * time.Second
		later := lock.Heartbeat(now.Add(60 * time.Second))

		assert.False(t, later.IsExpired(now.Add(120*time.Second), ttl))
		assert.Equal(t, now, lock.LastHeartbeatAt(), "original is unchanged")

		assert.Equal(t, later.LastHeartbeatAt(), later.Heartbeat(now).LastHeartbeatAt())
		assert.Equal(t, now, later.AcquiredAt())
	})

	t.Run("rejects missing identifiers", func(t *testing.T) {
		_, err := editlock.New(kernel.UUID{}, kernel.NewUUID(), holder, "", now)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)

		_, err = editlock.New(kernel.NewUUID(), kernel.NewUUID(), holder, "", time.Time{})
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}
