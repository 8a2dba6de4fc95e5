package cache

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"
)

// ErrNotAdmitted is returned when ristretto drops a write, e.g. because its
// set buffer is full or the cache is closed.
var ErrNotAdmitted = errors.New("cache: ristretto did not admit entry")

// RistrettoConfig sizes the in-process cache. Cost is the entry size in bytes.
type RistrettoConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// DefaultRistrettoConfig holds roughly 64MiB of entries.
func DefaultRistrettoConfig() RistrettoConfig {
	return RistrettoConfig{
		NumCounters: 1e5,
		MaxCost:     64 << 20,
		BufferItems: 64,
	}
}

// RistrettoProvider is an in-process provider backed by dgraph-io/ristretto.
type RistrettoProvider struct {
	c *rc.Cache
}

var _ Provider = (*RistrettoProvider)(nil)

func NewRistrettoProvider(cfg RistrettoConfig) (*RistrettoProvider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("cache: invalid ristretto config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	return &RistrettoProvider{c: c}, nil
}

func (p *RistrettoProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		p.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (p *RistrettoProvider) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	// Writes go through ristretto's buffers; Wait makes them visible to the next Get.
	if !p.c.SetWithTTL(key, value, int64(len(value)), ttl) {
		return ErrNotAdmitted
	}
	p.c.Wait()
	return nil
}

func (p *RistrettoProvider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	return nil
}

func (p *RistrettoProvider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}
