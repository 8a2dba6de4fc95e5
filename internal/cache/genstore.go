package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// GenStore keeps a generation counter per storage key. A missing counter
// reads as 0.
type GenStore interface {
	Snapshot(ctx context.Context, key string) (uint64, error)
	// Bump atomically increments and returns the new generation.
	Bump(ctx context.Context, key string) (uint64, error)
	Close(ctx context.Context) error
}

type localGen struct {
	gen       uint64
	updatedAt time.Time
}

// LocalGenStore keeps generations in-process. With a positive retention,
// counters untouched for longer than retention are pruned periodically.
type LocalGenStore struct {
	mu   sync.RWMutex
	gens map[string]localGen

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

var _ GenStore = (*LocalGenStore)(nil)

func NewLocalGenStore(cleanupInterval, retention time.Duration) *LocalGenStore {
	s := &LocalGenStore{gens: make(map[string]localGen)}
	if cleanupInterval > 0 && retention > 0 {
		s.stop = make(chan struct{})
		ticker := time.NewTicker(cleanupInterval)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s.cleanup(retention)
				case <-s.stop:
					return
				}
			}
		}()
	}
	return s
}

func (s *LocalGenStore) Snapshot(_ context.Context, key string) (uint64, error) {
	s.mu.RLock()
	e := s.gens[key]
	s.mu.RUnlock()
	return e.gen, nil
}

func (s *LocalGenStore) Bump(_ context.Context, key string) (uint64, error) {
	s.mu.Lock()
	e := s.gens[key]
	e.gen++
	e.updatedAt = time.Now()
	s.gens[key] = e
	s.mu.Unlock()
	return e.gen, nil
}

func (s *LocalGenStore) cleanup(retention time.Duration) {
	cutoff := time.Now().Add(-retention)
	s.mu.Lock()
	for k, e := range s.gens {
		if e.updatedAt.Before(cutoff) {
			delete(s.gens, k)
		}
	}
	s.mu.Unlock()
}

func (s *LocalGenStore) Close(context.Context) error {
	s.once.Do(func() {
		if s.stop != nil {
			close(s.stop)
			s.wg.Wait()
		}
	})
	return nil
}

// RedisGenStore shares generations across processes. With a positive ttl the
// counter expires after the last bump; an expired counter reads as 0 and any
// entry framed with an older generation is rejected.
type RedisGenStore struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

var _ GenStore = (*RedisGenStore)(nil)

func NewRedisGenStore(client redis.UniversalClient, ttl time.Duration) *RedisGenStore {
	return &RedisGenStore{rdb: client, ttl: ttl}
}

func genKey(key string) string { return "gen:" + key }

func (s *RedisGenStore) Snapshot(ctx context.Context, key string) (uint64, error) {
	res, err := s.rdb.Get(ctx, genKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	g, err := strconv.ParseUint(res, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis gen parse: %w", err)
	}
	return g, nil
}

func (s *RedisGenStore) Bump(ctx context.Context, key string) (uint64, error) {
	k := genKey(key)
	if s.ttl <= 0 {
		v, err := s.rdb.Incr(ctx, k).Result()
		if err != nil {
			return 0, err
		}
		return uint64(v), nil
	}

	var incr *redis.IntCmd
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, s.ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return uint64(incr.Val()), nil
}

// Close is a no-op; the client is owned by the caller.
func (s *RedisGenStore) Close(context.Context) error { return nil }
