package orgcache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rifapix/settlement/model"
	"github.com/rifapix/settlement/pkg/memtable"
	"github.com/rifapix/settlement/pkg/otellib"

	"go.uber.org/zap"
)

// Loader fetches an organizer integration config from the store
type Loader func(ctx context.Context, organizerID string, provider string) (model.OrganizerIntegration, error)

// SharedCache is the memcached layer, see pkg/cacheclient
type SharedCache interface {
	Get(key string) (data []byte, found bool, err error)
	Set(key string, value []byte, ttl uint32) error
}

// Cache is a read-through cache for organizer integration configs,
// sitting on the webhook auth path. Hot layer in process (freecache),
// shared layer in memcached, store behind both. Entries age out by TTL
// only, no explicit invalidation.
type Cache struct {
	loader Loader
	shared SharedCache
	hot    *memtable.MemTable
	ttl    uint32
}

const hotCacheSize = 4 << 20

// New creates a Cache. shared may be nil when memcached is disabled.
func New(loader Loader, shared SharedCache, ttlSeconds uint32) *Cache {
	return &Cache{
		loader: loader,
		shared: shared,
		hot:    memtable.New(hotCacheSize),
		ttl:    ttlSeconds,
	}
}

func cacheKey(organizerID string, provider string) string {
	return fmt.Sprintf("orgintg:%s:%s", organizerID, provider)
}

// Get ...
func (c *Cache) Get(
	ctx context.Context, organizerID string, provider string,
) (model.OrganizerIntegration, error) {
	key := cacheKey(organizerID, provider)

	if data, ok := c.hot.Get(key); ok {
		return decode(data)
	}

	if c.shared != nil {
		data, found, err := c.shared.Get(key)
		if err != nil {
			// memcached being down must not block settlement
			otellib.Extract(ctx).Warn("org config shared cache get failed", zap.Error(err))
		} else if found {
			c.hot.Set(key, data, int(c.ttl))
			return decode(data)
		}
	}

	intg, err := c.loader(ctx, organizerID, provider)
	if err != nil {
		return model.OrganizerIntegration{}, err
	}

	data, err := json.Marshal(intg)
	if err != nil {
		return model.OrganizerIntegration{}, err
	}

	c.hot.Set(key, data, int(c.ttl))
	if c.shared != nil {
		err := c.shared.Set(key, data, c.ttl)
		if err != nil {
			otellib.Extract(ctx).Warn("org config shared cache set failed", zap.Error(err))
		}
	}
	return intg, nil
}

func decode(data []byte) (model.OrganizerIntegration, error) {
	var intg model.OrganizerIntegration
	err := json.Unmarshal(data, &intg)
	return intg, err
}
