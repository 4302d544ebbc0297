package storage

import "errors"

// ErrQuotaExceeded marks a write rejected because the underlying store is
// out of space. It gets a distinct, more actionable user message than a
// generic storage failure.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

//go:generate mockgen -source=backend.go -destination=backend_mock.go -package=storage

// Backend is the raw key-value storage underneath the Store. A missing key
// reads as the empty string, not an error; values are never empty.
type Backend interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	Clear() error
	Close() error
}
