package cacheclient

import (
	"time"

	"github.com/QuangTung97/go-memcache/memcache"
)

// Client wraps the memcached client used as the shared cache layer for
// organizer integration configs
type Client struct {
	client *memcache.Client
}

// New ...
func New(addr string, numConns int) *Client {
	client, err := memcache.New(addr, numConns, memcache.WithRetryDuration(10*time.Second))
	if err != nil {
		panic(err)
	}
	return &Client{
		client: client,
	}
}

// Get returns found = false on miss
func (c *Client) Get(key string) (data []byte, found bool, err error) {
	pipe := c.client.Pipeline()
	defer pipe.Finish()

	fn := pipe.MGet(key, memcache.MGetOptions{})
	resp, err := fn()
	if err != nil {
		return nil, false, err
	}
	if resp.Type == memcache.MGetResponseTypeVA {
		return resp.Data, true, nil
	}
	return nil, false, nil
}

// Set ...
func (c *Client) Set(key string, value []byte, ttl uint32) error {
	pipe := c.client.Pipeline()
	defer pipe.Finish()

	fn := pipe.MSet(key, value, memcache.MSetOptions{
		TTL: ttl,
	})
	_, err := fn()
	return err
}

// Delete ...
func (c *Client) Delete(key string) error {
	pipe := c.client.Pipeline()
	defer pipe.Finish()

	fn := pipe.MDel(key, memcache.MDelOptions{})
	_, err := fn()
	return err
}

// UnsafeFlushAll ...
func (c *Client) UnsafeFlushAll() error {
	return c.client.Pipeline().FlushAll()()
}

// Close ...
func (c *Client) Close() error {
	return c.client.Close()
}
