// Package storage defines the key/value store behind the workspace state
// tools. Values are opaque bytes grouped into flat namespaces.
package storage

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Storage is a namespaced key/value store with optional expiry.
type Storage interface {
	// Get returns the item stored under key, or nil when the key is absent
	// or expired. An error means the backend itself failed.
	Get(ctx context.Context, key string, opts ...Option) (*StorageItem, error)

	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte, opts ...Option) error

	// Delete removes the key given via WithKey, or every key in the
	// namespace when no key is given.
	Delete(ctx context.Context, opts ...Option) error

	// Keys lists the live keys of a namespace in lexical order.
	Keys(ctx context.Context, opts ...Option) ([]string, error)

	// Close releases backend resources.
	Close() error
}

// StorageItem is a stored value with metadata.
type StorageItem struct {
	Data      []byte
	CreatedAt time.Time
	ExpiresAt *time.Time // nil = no expiration
}

// IsExpired reports whether the item's expiry has passed.
func (si *StorageItem) IsExpired() bool {
	return si.ExpiresAt != nil && time.Now().After(*si.ExpiresAt)
}

// Option configures a storage operation.
type Option func(*Options)

// Options is the resolved form of a list of Option.
type Options struct {
	Namespace string         // empty = global
	Key       *string        // Delete only
	TTL       *time.Duration // Set only
}

// Apply resolves opts and validates the combination.
func Apply(opts ...Option) (*Options, error) {
	o := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if strings.Contains(o.Namespace, ":") {
		return nil, ErrInvalidOptions
	}
	if o.TTL != nil && *o.TTL <= 0 {
		return nil, ErrInvalidOptions
	}
	return o, nil
}

// WithNamespace scopes the operation to ns. Namespaces may not contain ':'.
func WithNamespace(ns string) Option {
	return func(opts *Options) {
		opts.Namespace = ns
	}
}

// WithKey names the key for Delete. Without it Delete clears the namespace.
func WithKey(key string) Option {
	return func(opts *Options) {
		opts.Key = &key
	}
}

// WithTTL sets a time-to-live for the stored data.
func WithTTL(ttl time.Duration) Option {
	return func(opts *Options) {
		opts.TTL = &ttl
	}
}

// NamespacePrefix is the key prefix backends use for ns.
func NamespacePrefix(ns string) string {
	if ns == "" {
		return "global:"
	}
	return "ns:" + ns + ":"
}

var (
	// ErrInvalidOptions is returned when incompatible options are provided.
	ErrInvalidOptions = errors.New("storage: invalid option combination")
)
