package memtable

import (
	"github.com/coocood/freecache"
)

// MemTable is the in-process hot layer in front of memcached, backed by
// freecache to stay off the GC heap
type MemTable struct {
	cache *freecache.Cache
}

// New creates freecache with size in bytes
func New(size int) *MemTable {
	return &MemTable{
		cache: freecache.NewCache(size),
	}
}

// Get ...
func (m *MemTable) Get(key string) (data []byte, ok bool) {
	data, err := m.cache.Get([]byte(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set ...
func (m *MemTable) Set(key string, data []byte, ttlSeconds int) {
	_ = m.cache.Set([]byte(key), data, ttlSeconds)
}

// Delete ...
func (m *MemTable) Delete(key string) {
	m.cache.Del([]byte(key))
}
