// Package redis keeps short lived counters shared between api instances.
package redis

import (
	"strconv"
	"sync"
	"time"

	"github.com/mediocregopher/radix/v3"
)

type Config struct {
	Host     string
	Port     int
	Password string
	PoolSize int `mapstructure:"pool_size"`
}

// Counter increments a key that expires at the given time and returns the new value
type Counter interface {
	Incr(key string, expireAt time.Time) (int64, error)
	Close() error
}

type radixCounter struct {
	pool *radix.Pool
}

// NewCounter connects to redis, or keeps the counters in memory when no host is configured
func NewCounter(cfg Config) (Counter, error) {
	if cfg.Host == "" {
		return NewMemoryCounter(nil), nil
	}
	size := cfg.PoolSize
	if size <= 0 {
		size = 10
	}
	opts := []radix.DialOpt{radix.DialTimeout(5 * time.Second)}
	if cfg.Password != "" {
		opts = append(opts, radix.DialAuthPass(cfg.Password))
	}
	connFunc := func(network, addr string) (radix.Conn, error) {
		return radix.Dial(network, addr, opts...)
	}
	pool, err := radix.NewPool("tcp", address(cfg), size, radix.PoolConnFunc(connFunc))
	if err != nil {
		return nil, err
	}
	return &radixCounter{pool: pool}, nil
}

func address(cfg Config) string {
	port := cfg.Port
	if port == 0 {
		port = 6379
	}
	return cfg.Host + ":" + strconv.Itoa(port)
}

// Incr uses a pipeline so the expiration is always set with the first increment
func (c *radixCounter) Incr(key string, expireAt time.Time) (int64, error) {
	var value int64
	err := c.pool.Do(radix.Pipeline(
		radix.Cmd(&value, "INCR", key),
		radix.FlatCmd(nil, "EXPIREAT", key, expireAt.Unix()),
	))
	return value, err
}

func (c *radixCounter) Close() error {
	return c.pool.Close()
}

type memoryEntry struct {
	value    int64
	expireAt time.Time
}

// MemoryCounter is the in process Counter used without redis and in tests
type MemoryCounter struct {
	lock    sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

// NewMemoryCounter creates a counter that checks the expiry of its keys with the given clock,
// the same clock the callers use to compute expireAt. A nil clock means time.Now.
func NewMemoryCounter(now func() time.Time) *MemoryCounter {
	if now == nil {
		now = time.Now
	}
	return &MemoryCounter{entries: make(map[string]*memoryEntry), now: now}
}

// Incr godoc
func (c *MemoryCounter) Incr(key string, expireAt time.Time) (int64, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expireAt) {
		entry = &memoryEntry{}
		c.entries[key] = entry
	}
	entry.value++
	entry.expireAt = expireAt
	return entry.value, nil
}

func (c *MemoryCounter) Close() error {
	return nil
}
