package mcpservice

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ggoodman/mcp-stdio-server/mcp"
	"github.com/gofrs/flock"
)

const (
	defaultLockTimeout = 2 * time.Second
	lockPollInterval   = 10 * time.Millisecond
)

// ErrLockTimeout is returned when a file resource cannot take its shared
// lock in time.
var ErrLockTimeout = errors.New("timeout acquiring file lock")

// FileResourceOption configures FileResource.
type FileResourceOption func(*fileResourceConfig)

type fileResourceConfig struct {
	name        string
	description string
	mimeType    string
	lockTimeout time.Duration
}

// WithFileName sets the listed resource name. Defaults to the file's base name.
func WithFileName(name string) FileResourceOption {
	return func(c *fileResourceConfig) { c.name = name }
}

// WithFileDescription sets the listed description.
func WithFileDescription(desc string) FileResourceOption {
	return func(c *fileResourceConfig) { c.description = desc }
}

// WithFileMimeType overrides the mime type guessed from the file extension.
func WithFileMimeType(mt string) FileResourceOption {
	return func(c *fileResourceConfig) { c.mimeType = mt }
}

// WithFileLockTimeout bounds how long a read waits for the shared lock.
func WithFileLockTimeout(d time.Duration) FileResourceOption {
	return func(c *fileResourceConfig) {
		if d > 0 {
			c.lockTimeout = d
		}
	}
}

// FileResource exposes a file on disk as a resource. Each read takes a
// shared flock on the file so cooperating writers holding an exclusive lock
// are never observed mid-write. UTF-8 content is returned as text, anything
// else as a blob.
func FileResource(uri, path string, opts ...FileResourceOption) Resource {
	cfg := fileResourceConfig{
		name:        filepath.Base(path),
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.mimeType == "" {
		cfg.mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	}
	if cfg.mimeType == "" {
		cfg.mimeType = "application/octet-stream"
	}
	mt := cfg.mimeType

	provider := func(ctx context.Context, uri string) (any, error) {
		data, err := readLocked(ctx, path, cfg.lockTimeout)
		if err != nil {
			return nil, err
		}
		if utf8.Valid(data) {
			return &mcp.TextResourceContents{URI: uri, MimeType: mt, Text: string(data)}, nil
		}
		return &mcp.BlobResourceContents{URI: uri, MimeType: mt, Blob: data}, nil
	}

	return Resource{
		URI:         uri,
		Name:        cfg.name,
		Description: cfg.description,
		MimeType:    mt,
		Provider:    provider,
		path:        path,
	}
}

func readLocked(ctx context.Context, path string, timeout time.Duration) ([]byte, error) {
	// flock opens with O_CREATE by default; a missing file must stay missing.
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	lock := flock.New(path, flock.SetFlag(os.O_RDONLY))
	defer lock.Close()

	lctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := lock.TryRLockContext(lctx, lockPollInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("error acquiring read lock for %s: %w", path, err)
	}
	if !locked {
		return nil, ErrLockTimeout
	}
	defer func() { _ = lock.Unlock() }()

	return os.ReadFile(path)
}
