package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCounter(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	counter := NewMemoryCounter(func() time.Time { return now })
	endOfDay := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 3; i++ {
		value, err := counter.Incr("quota:1", endOfDay)
		require.NoError(t, err)
		assert.Equal(t, i, value)
	}

	other, _ := counter.Incr("quota:2", endOfDay)
	assert.Equal(t, int64(1), other)

	// the counter restarts once the key expired
	now = endOfDay.Add(time.Minute)
	value, _ := counter.Incr("quota:1", endOfDay.Add(24*time.Hour))
	assert.Equal(t, int64(1), value)
}

func TestNewCounterWithoutHost(t *testing.T) {
	counter, err := NewCounter(Config{})
	require.NoError(t, err)
	_, ok := counter.(*MemoryCounter)
	assert.True(t, ok)
	assert.Equal(t, "localhost:6379", address(Config{Host: "localhost"}))
	assert.Equal(t, "redis:7000", address(Config{Host: "redis", Port: 7000}))
}
