package store

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryKVStore keeps values in process memory, each expiring ttl after its
// last write.
type MemoryKVStore struct {
	cache *cache.Cache
}

func NewMemoryKVStore(ttl time.Duration) *MemoryKVStore {
	return &MemoryKVStore{
		cache: cache.New(ttl, time.Minute),
	}
}

func (s *MemoryKVStore) Read(key string) ([]byte, error) {
	if val, found := s.cache.Get(key); found {
		return val.([]byte), nil
	}
	return nil, nil
}

func (s *MemoryKVStore) Write(key string, data []byte) error {
	s.cache.Set(key, data, cache.DefaultExpiration)
	return nil
}

func (s *MemoryKVStore) Delete(key string) error {
	s.cache.Delete(key)
	return nil
}

// CachedKVStore serves reads from a memory layer and falls through to the
// backing store on a miss.
type CachedKVStore struct {
	front *MemoryKVStore
	back  KVStore
}

func NewCachedKVStore(back KVStore, ttl time.Duration) *CachedKVStore {
	return &CachedKVStore{
		front: NewMemoryKVStore(ttl),
		back:  back,
	}
}

func (s *CachedKVStore) Read(key string) ([]byte, error) {
	if data, _ := s.front.Read(key); data != nil {
		return data, nil
	}
	data, err := s.back.Read(key)
	if err != nil || data == nil {
		return data, err
	}
	_ = s.front.Write(key, data)
	return data, nil
}

func (s *CachedKVStore) Write(key string, data []byte) error {
	if err := s.back.Write(key, data); err != nil {
		return err
	}
	return s.front.Write(key, data)
}

func (s *CachedKVStore) Delete(key string) error {
	_ = s.front.Delete(key)
	return s.back.Delete(key)
}
