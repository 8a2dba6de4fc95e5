// Package mocks holds test doubles for the cache, object store and services.
package mocks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pageza/recipebox/backend/internal/cache"
)

// ErrProvider is returned by MemoryProvider operations switched to fail.
var ErrProvider = errors.New("mock cache provider failure")

// MemoryProvider is an in-memory cache.Provider with failure injection and
// call counters.
type MemoryProvider struct {
	mu   sync.Mutex
	data map[string][]byte

	FailGet bool
	FailSet bool
	FailDel bool
	// FailDelAfter, when positive, lets that many Del calls succeed and fails
	// the rest. Del calls are counted since the last Reset.
	FailDelAfter int

	Gets int
	Sets int
	Dels int
}

var _ cache.Provider = (*MemoryProvider)(nil)

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{data: make(map[string][]byte)}
}

func (p *MemoryProvider) Get(_ context.Context, key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Gets++
	if p.FailGet {
		return nil, false, ErrProvider
	}
	b, ok := p.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (p *MemoryProvider) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Sets++
	if p.FailSet {
		return ErrProvider
	}
	p.data[key] = append([]byte(nil), value...)
	return nil
}

func (p *MemoryProvider) Del(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Dels++
	if p.FailDel || (p.FailDelAfter > 0 && p.Dels > p.FailDelAfter) {
		return ErrProvider
	}
	delete(p.data, key)
	return nil
}

func (p *MemoryProvider) Close(context.Context) error { return nil }

// Has reports whether key currently holds an entry.
func (p *MemoryProvider) Has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.data[key]
	return ok
}

// Len is the number of stored entries.
func (p *MemoryProvider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.data)
}

// Reset clears counters and failure switches, keeping the data.
func (p *MemoryProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.FailGet, p.FailSet, p.FailDel = false, false, false
	p.FailDelAfter = 0
	p.Gets, p.Sets, p.Dels = 0, 0, 0
}
