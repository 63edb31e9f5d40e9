// Package memory provides an in-memory implementation of the storage interface
// using github.com/hashicorp/golang-lru/v2 for bounded caching with TTL support.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ggoodman/mcp-stdio-server/storage"
	lru "github.com/hashicorp/golang-lru/v2"
)

const cleanupInterval = 5 * time.Minute

// Storage implements storage.Storage on top of an LRU cache. The least
// recently used entry is evicted once maxItems is reached.
type Storage struct {
	mu    sync.RWMutex
	cache *lru.Cache[string, *storage.StorageItem]

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates an in-memory store holding at most maxItems entries.
func New(maxItems int) (*Storage, error) {
	cache, err := lru.New[string, *storage.StorageItem](maxItems)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}

	s := &Storage{
		cache: cache,
		stop:  make(chan struct{}),
	}

	go s.cleanupExpired(cleanupInterval)

	return s, nil
}

func (s *Storage) Get(ctx context.Context, key string, opts ...storage.Option) (*storage.StorageItem, error) {
	options, err := storage.Apply(opts...)
	if err != nil {
		return nil, err
	}
	storageKey := storage.NamespacePrefix(options.Namespace) + key

	s.mu.RLock()
	item, exists := s.cache.Get(storageKey)
	s.mu.RUnlock()

	if !exists {
		return nil, nil
	}

	if item.IsExpired() {
		s.mu.Lock()
		s.cache.Remove(storageKey)
		s.mu.Unlock()
		return nil, nil
	}

	return item, nil
}

func (s *Storage) Set(ctx context.Context, key string, data []byte, opts ...storage.Option) error {
	options, err := storage.Apply(opts...)
	if err != nil {
		return err
	}
	storageKey := storage.NamespacePrefix(options.Namespace) + key

	now := time.Now()
	item := &storage.StorageItem{
		Data:      slices.Clone(data),
		CreatedAt: now,
	}
	if options.TTL != nil {
		expiresAt := now.Add(*options.TTL)
		item.ExpiresAt = &expiresAt
	}

	s.mu.Lock()
	s.cache.Add(storageKey, item)
	s.mu.Unlock()

	return nil
}

func (s *Storage) Delete(ctx context.Context, opts ...storage.Option) error {
	options, err := storage.Apply(opts...)
	if err != nil {
		return err
	}
	prefix := storage.NamespacePrefix(options.Namespace)

	s.mu.Lock()
	defer s.mu.Unlock()

	if options.Key != nil {
		s.cache.Remove(prefix + *options.Key)
		return nil
	}
	for _, key := range s.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Remove(key)
		}
	}
	return nil
}

func (s *Storage) Keys(ctx context.Context, opts ...storage.Option) ([]string, error) {
	options, err := storage.Apply(opts...)
	if err != nil {
		return nil, err
	}
	prefix := storage.NamespacePrefix(options.Namespace)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for _, key := range s.cache.Keys() {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok {
			continue
		}
		if item, ok := s.cache.Peek(key); ok && !item.IsExpired() {
			keys = append(keys, rest)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// Close stops the cleanup loop and drops every entry.
func (s *Storage) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	s.mu.Lock()
	s.cache.Purge()
	s.mu.Unlock()
	return nil
}

func (s *Storage) cleanupExpired(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		now := time.Now()
		for _, key := range s.cache.Keys() {
			if item, exists := s.cache.Peek(key); exists {
				if item.ExpiresAt != nil && now.After(*item.ExpiresAt) {
					s.cache.Remove(key)
				}
			}
		}
		s.mu.Unlock()
	}
}

var _ storage.Storage = (*Storage)(nil)
