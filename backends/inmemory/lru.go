package inmemory

import (
	"context"
	"errors"
	"sync"

	"github.com/botirk38/embedscore/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUBackend implements VectorStore on a capacity-bounded LRU cache.
// Reads use Peek, so recency only changes on Set and Keys reports write
// order. When full, the least recently written record is evicted.
type LRUBackend struct {
	mu    sync.RWMutex
	cache *lru.Cache[string, types.Record]
}

// NewLRUBackend creates a new LRU backend
func NewLRUBackend(config types.BackendConfig) (*LRUBackend, error) {
	if config.Capacity <= 0 {
		return nil, errors.New("capacity must be positive")
	}
	cache, err := lru.New[string, types.Record](config.Capacity)
	if err != nil {
		return nil, err
	}
	return &LRUBackend{cache: cache}, nil
}

// Set stores a copy of rec.
func (b *LRUBackend) Set(_ context.Context, rec types.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec.Vector = append([]float64(nil), rec.Vector...)
	b.cache.Add(rec.ID, rec)
	return nil
}

func (b *LRUBackend) Get(_ context.Context, id string) (types.Record, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.cache.Peek(id)
	if !ok {
		return types.Record{}, false, nil
	}
	rec.Vector = append([]float64(nil), rec.Vector...)
	return rec, true, nil
}

func (b *LRUBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cache.Remove(id)
	return nil
}

func (b *LRUBackend) Contains(_ context.Context, id string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.cache.Contains(id), nil
}

func (b *LRUBackend) Flush(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cache.Purge()
	return nil
}

func (b *LRUBackend) Len(_ context.Context) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.cache.Len(), nil
}

// Keys returns ids from the least to the most recently written.
func (b *LRUBackend) Keys(_ context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.cache.Keys(), nil
}

// Close is a no-op for in-memory storage
func (b *LRUBackend) Close() error {
	return nil
}
