package cache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"
)

// BigCacheProvider is an in-process provider backed by allegro/bigcache. BigCache
// has no per-entry TTL: every entry lives for the configured life window.
type BigCacheProvider struct {
	c *bc.BigCache
}

var _ Provider = (*BigCacheProvider)(nil)

func NewBigCacheProvider(ctx context.Context, lifeWindow time.Duration, hardMaxCacheSizeMB int) (*BigCacheProvider, error) {
	conf := bc.DefaultConfig(lifeWindow)
	conf.CleanWindow = lifeWindow / 2
	if hardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = hardMaxCacheSizeMB
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &BigCacheProvider{c: c}, nil
}

func (p *BigCacheProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *BigCacheProvider) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	return p.c.Set(key, value)
}

func (p *BigCacheProvider) Del(_ context.Context, key string) error {
	if err := p.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

func (p *BigCacheProvider) Close(_ context.Context) error {
	return p.c.Close()
}
