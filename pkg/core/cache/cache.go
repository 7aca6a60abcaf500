// Package cache provides the optional key-value cache providers and refiners
// use to skip repeated lookups. A miss always means "go to the network".
package cache

import (
	"container/list"
	"encoding/json"
	"sync"
	"time"
)

// Store is a byte-oriented cache. Implementations are safe for concurrent
// use.
type Store interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
	Clear() error
}

// GetJSON decodes the cached value for key into v. It reports false on a miss,
// a nil store or an undecodable entry.
func GetJSON(s Store, key string, v any) bool {
	if s == nil {
		return false
	}
	data, ok := s.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON stores v encoded as JSON. It is a no-op on a nil store.
func SetJSON(s Store, key string, v any) {
	if s == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.Set(key, data)
}

type item struct {
	key        string
	value      []byte
	expiration time.Time
}

// Memory is an LRU cache with a fixed time to live per entry.
type Memory struct {
	capacity  int
	ttl       time.Duration
	items     map[string]*list.Element
	evictList *list.List
	mu        sync.Mutex
	now       func() time.Time
}

// NewMemory returns a cache holding at most capacity entries, each for ttl.
func NewMemory(capacity int, ttl time.Duration) *Memory {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Memory{
		capacity:  capacity,
		ttl:       ttl,
		items:     make(map[string]*list.Element),
		evictList: list.New(),
		now:       time.Now,
	}
}

func (c *Memory) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	it := elem.Value.(*item)
	if c.now().After(it.expiration) {
		c.removeElement(elem)
		return nil, false
	}
	c.evictList.MoveToFront(elem)
	return it.value, true
}

func (c *Memory) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiration := c.now().Add(c.ttl)
	if elem, ok := c.items[key]; ok {
		it := elem.Value.(*item)
		it.value = value
		it.expiration = expiration
		c.evictList.MoveToFront(elem)
		return
	}

	c.items[key] = c.evictList.PushFront(&item{key: key, value: value, expiration: expiration})
	if c.evictList.Len() > c.capacity {
		if oldest := c.evictList.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *Memory) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
}

func (c *Memory) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.evictList.Init()
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

func (c *Memory) removeElement(elem *list.Element) {
	c.evictList.Remove(elem)
	delete(c.items, elem.Value.(*item).key)
}
