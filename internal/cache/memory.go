package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// defaultCapacity LRU 容量
const defaultCapacity = 500

type entry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache 进程内缓存 - LRU with per-entry expiry. Concurrent misses on
// the same key share one computation.
type MemoryCache struct {
	mu         sync.Mutex
	lru        *lru.Cache[string, entry]
	ttl        time.Duration
	now        func() time.Time
	generation uint64
	group      singleflight.Group
	observe    Observer
}

type Option func(*MemoryCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *MemoryCache) { c.now = now }
}

func WithObserver(o Observer) Option {
	return func(c *MemoryCache) { c.observe = o }
}

func WithCapacity(n int) Option {
	return func(c *MemoryCache) {
		if n > 0 {
			l, err := lru.New[string, entry](n)
			if err == nil {
				c.lru = l
			}
		}
	}
}

func NewMemoryCache(ttl time.Duration, opts ...Option) (*MemoryCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	l, err := lru.New[string, entry](defaultCapacity)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	c := &MemoryCache{lru: l, ttl: ttl, now: time.Now, observe: noopObserver}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *MemoryCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.data, true
}

func (c *MemoryCache) GetOrCompute(ctx context.Context, key string, fn ComputeFunc) ([]byte, error) {
	if data, ok := c.get(key); ok {
		c.observe(true)
		return data, nil
	}
	c.observe(false)

	// 渲染结果是共享的，不能被第一个请求的取消打断
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		if data, ok := c.get(key); ok {
			return data, nil
		}

		c.mu.Lock()
		gen := c.generation
		c.mu.Unlock()

		data, err := fn(shared)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// a Clear ran while rendering, the result may predate it
		if c.generation == gen {
			c.lru.Add(key, entry{data: data, expiresAt: c.now().Add(c.ttl)})
		}
		c.mu.Unlock()
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Clear drops every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.lru.Purge()
	return nil
}

// Len is the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
