// Package storage wraps the local key-value backend with JSON
// (de)serialization, a short-lived read cache, and change broadcasting.
// Nothing here returns errors to callers: every failure is reported through
// the error bus and collapsed into a nil/false sentinel, so the services on
// top can stay on the original's sentinel-based contract.
package storage

import (
	"encoding/json"
	"errors"

	"github.com/tiendita/caja/internal/apperror"
	"github.com/tiendita/caja/internal/notify"
)

// Metrics is the slice of instrumentation the store feeds. Implemented by
// observability.Metrics; a nil Metrics disables instrumentation.
type Metrics interface {
	CacheHit(key string)
	CacheMiss(key string)
	StorageWrite(key string)
}

// Store is the adapter every service persists through.
type Store struct {
	backend Backend
	cache   *Cache
	bus     apperror.Reporter
	changes *notify.Broadcaster
	metrics Metrics
}

// New builds a Store. bus must be non-nil; metrics may be nil.
func New(backend Backend, cache *Cache, bus apperror.Reporter, changes *notify.Broadcaster, metrics Metrics) *Store {
	return &Store{
		backend: backend,
		cache:   cache,
		bus:     bus,
		changes: changes,
		metrics: metrics,
	}
}

// Changes exposes the broadcaster so services can offer subscriptions.
func (s *Store) Changes() *notify.Broadcaster { return s.changes }

// GetItem reads a raw string value. Missing keys and storage failures both
// come back as ok=false; failures are additionally reported on the bus.
func (s *Store) GetItem(key string) (string, bool) {
	value, err := s.backend.Get(key)
	if err != nil {
		s.bus.Report(apperror.TypeStorage, apperror.MsgStorageError, err.Error())
		return "", false
	}
	if value == "" {
		return "", false
	}

	return value, true
}

// SetItem writes a raw string value. Returns false (after reporting) on
// failure, with quota exhaustion given its own message.
func (s *Store) SetItem(key, value string) bool {
	if err := s.backend.Set(key, value); err != nil {
		s.reportWriteError(err)
		return false
	}

	s.cache.Invalidate(key)
	if s.metrics != nil {
		s.metrics.StorageWrite(key)
	}

	return true
}

// RemoveItem deletes a key. Missing keys are not an error.
func (s *Store) RemoveItem(key string) bool {
	if err := s.backend.Remove(key); err != nil {
		s.bus.Report(apperror.TypeStorage, apperror.MsgStorageError, err.Error())
		return false
	}

	s.cache.Invalidate(key)

	return true
}

// Clear wipes the whole store and the read cache.
func (s *Store) Clear() bool {
	if err := s.backend.Clear(); err != nil {
		s.bus.Report(apperror.TypeStorage, apperror.MsgStorageError, err.Error())
		return false
	}

	s.cache.InvalidateAll()

	return true
}

func (s *Store) reportWriteError(err error) {
	if errors.Is(err, ErrQuotaExceeded) {
		s.bus.Report(apperror.TypeStorage, apperror.MsgStorageFull, err.Error())
		return
	}

	s.bus.Report(apperror.TypeStorage, apperror.MsgStorageError, err.Error())
}

// LoadCollection reads and parses the JSON array under key, going through
// the read cache. Any failure reads as the empty collection.
func LoadCollection[T any](s *Store, key string) []T {
	if cached, ok := s.cache.Get(key); ok {
		if items, ok := cached.([]T); ok {
			if s.metrics != nil {
				s.metrics.CacheHit(key)
			}
			return items
		}
	}
	if s.metrics != nil {
		s.metrics.CacheMiss(key)
	}

	raw, err := s.backend.Get(key)
	if err != nil {
		s.bus.Report(apperror.TypeStorage, apperror.MsgStorageError, err.Error())
		return []T{}
	}
	if raw == "" {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.bus.Report(apperror.TypeStorage, apperror.MsgParseError, key+": "+err.Error())
		return []T{}
	}
	if items == nil {
		items = []T{}
	}

	s.cache.Set(key, items)

	return items
}

// SaveCollection serializes items under key, invalidates the cache entry,
// and broadcasts a change notification for the key. Returns false (after
// reporting) if the write did not land.
func SaveCollection[T any](s *Store, key string, items []T) bool {
	data, err := json.Marshal(items)
	if err != nil {
		s.bus.Report(apperror.TypeStorage, apperror.MsgParseError, key+": "+err.Error())
		return false
	}

	if err := s.backend.Set(key, string(data)); err != nil {
		s.reportWriteError(err)
		return false
	}

	s.cache.Invalidate(key)
	if s.metrics != nil {
		s.metrics.StorageWrite(key)
	}
	s.changes.Publish(key)

	return true
}

// LoadValue reads a single JSON document (not an array) under key.
func LoadValue[T any](s *Store, key string) (T, bool) {
	var value T

	raw, ok := s.GetItem(key)
	if !ok {
		return value, false
	}

	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		s.bus.Report(apperror.TypeStorage, apperror.MsgParseError, key+": "+err.Error())
		return value, false
	}

	return value, true
}

// SaveValue serializes a single JSON document under key.
func SaveValue[T any](s *Store, key string, value T) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.bus.Report(apperror.TypeStorage, apperror.MsgParseError, key+": "+err.Error())
		return false
	}

	return s.SetItem(key, string(data))
}
