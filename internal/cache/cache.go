package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTTL          = 10 * time.Minute
	defaultGenCleanup   = time.Hour
	defaultGenRetention = 24 * time.Hour
)

// Options configure a Cache. Namespace, Provider and Codec are required.
type Options[V any] struct {
	Namespace string
	Provider  Provider
	Codec     Codec[V]
	// GenStore defaults to an in-process LocalGenStore.
	GenStore GenStore
	// TTL defaults to 10 minutes.
	TTL      time.Duration
	Disabled bool
	Logger   *zap.Logger
}

// Cache is a read-through cache of values V keyed by id.
//
// Every key carries a generation. Readers take SnapshotGen before loading
// from the store and write back with SetWithGen, which skips the write when
// the generation has moved. Get rejects entries framed with a stale
// generation. Writers call Invalidate, which bumps the generation and deletes
// the entry, so a value computed from data older than the last invalidation
// is never served.
type Cache[V any] struct {
	ns       string
	provider Provider
	codec    Codec[V]
	gens     GenStore
	ttl      time.Duration
	enabled  bool
	log      *zap.Logger
}

func New[V any](opts Options[V]) (*Cache[V], error) {
	if opts.Namespace == "" {
		return nil, errors.New("cache: namespace is required")
	}
	if opts.Provider == nil && !opts.Disabled {
		return nil, errors.New("cache: provider is required")
	}
	if opts.Codec == nil {
		opts.Codec = JSONCodec[V]{}
	}
	if opts.GenStore == nil {
		opts.GenStore = NewLocalGenStore(defaultGenCleanup, defaultGenRetention)
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Cache[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		gens:     opts.GenStore,
		ttl:      opts.TTL,
		enabled:  !opts.Disabled,
		log:      opts.Logger.Named("cache").With(zap.String("namespace", opts.Namespace)),
	}, nil
}

// Key is the provider key for id, e.g. "recipe:<id>".
func (c *Cache[V]) Key(id string) string { return c.ns + ":" + id }

func (c *Cache[V]) Enabled() bool { return c.enabled }

// Get returns the cached value for id. Corrupt, undecodable and stale entries
// are deleted and reported as a miss.
func (c *Cache[V]) Get(ctx context.Context, id string) (V, bool, error) {
	var zero V
	if !c.enabled {
		return zero, false, nil
	}
	k := c.Key(id)

	raw, ok, err := c.provider.Get(ctx, k)
	if err != nil {
		return zero, false, fmt.Errorf("cache get %s: %w", k, err)
	}
	if !ok {
		return zero, false, nil
	}

	gen, payload, err := decodeEntry(raw)
	if err != nil {
		c.drop(ctx, k, "corrupt entry")
		return zero, false, nil
	}
	current, err := c.gens.Snapshot(ctx, k)
	if err != nil {
		return zero, false, fmt.Errorf("cache generation %s: %w", k, err)
	}
	if gen != current {
		c.drop(ctx, k, "stale generation")
		return zero, false, nil
	}
	v, err := c.codec.Decode(payload)
	if err != nil {
		c.drop(ctx, k, "undecodable entry")
		return zero, false, nil
	}
	return v, true, nil
}

// SnapshotGen returns the generation to pass to SetWithGen. Take it before
// reading the backing store.
func (c *Cache[V]) SnapshotGen(ctx context.Context, id string) (uint64, error) {
	if !c.enabled {
		return 0, nil
	}
	return c.gens.Snapshot(ctx, c.Key(id))
}

// SetWithGen stores v unless the generation of id moved past observedGen.
func (c *Cache[V]) SetWithGen(ctx context.Context, id string, v V, observedGen uint64) error {
	if !c.enabled {
		return nil
	}
	k := c.Key(id)

	current, err := c.gens.Snapshot(ctx, k)
	if err != nil {
		return fmt.Errorf("cache generation %s: %w", k, err)
	}
	if current != observedGen {
		c.log.Debug("skipped stale cache write", zap.String("key", k), zap.Uint64("observed", observedGen), zap.Uint64("current", current))
		return nil
	}

	payload, err := c.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", k, err)
	}
	if err := c.provider.Set(ctx, k, encodeEntry(observedGen, payload), c.ttl); err != nil {
		return fmt.Errorf("cache set %s: %w", k, err)
	}
	return nil
}

// Invalidate bumps the generation of id and deletes its entry.
func (c *Cache[V]) Invalidate(ctx context.Context, id string) error {
	if !c.enabled {
		return nil
	}
	k := c.Key(id)

	gen, err := c.gens.Bump(ctx, k)
	if err != nil {
		return fmt.Errorf("cache bump %s: %w", k, err)
	}
	if err := c.provider.Del(ctx, k); err != nil {
		return fmt.Errorf("cache delete %s: %w", k, err)
	}
	c.log.Debug("invalidated cache entry", zap.String("key", k), zap.Uint64("generation", gen))
	return nil
}

func (c *Cache[V]) Close(ctx context.Context) error {
	var errs []error
	if c.provider != nil {
		errs = append(errs, c.provider.Close(ctx))
	}
	errs = append(errs, c.gens.Close(ctx))
	return errors.Join(errs...)
}

func (c *Cache[V]) drop(ctx context.Context, key, reason string) {
	if err := c.provider.Del(ctx, key); err != nil {
		c.log.Warn("failed to drop cache entry", zap.String("key", key), zap.String("reason", reason), zap.Error(err))
		return
	}
	c.log.Debug("dropped cache entry", zap.String("key", key), zap.String("reason", reason))
}
