package mcpservice

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher turns filesystem changes to file-backed resources into
// NotifyResourceUpdated calls on a Server.
//
// Parent directories are watched rather than the files themselves so that
// editors replacing a file through rename keep being observed.
type FileWatcher struct {
	srv *Server
	log *slog.Logger
	w   *fsnotify.Watcher

	mu    sync.Mutex
	byAbs map[string][]string // absolute path -> resource URIs
	dirs  map[string]struct{}
}

// NewFileWatcher creates a watcher bound to srv.
func NewFileWatcher(srv *Server) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	return &FileWatcher{
		srv:   srv,
		log:   srv.Logger(),
		w:     w,
		byAbs: make(map[string][]string),
		dirs:  make(map[string]struct{}),
	}, nil
}

// WatchResources watches every file-backed resource currently registered on
// the server and returns how many were added.
func (fw *FileWatcher) WatchResources() (int, error) {
	n := 0
	for _, r := range fw.srv.Resources() {
		if r.Path() == "" {
			continue
		}
		if err := fw.Watch(r.Path(), r.URI); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Watch maps changes to path onto uri.
func (fw *FileWatcher) Watch(path, uri string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, ok := fw.dirs[dir]; !ok {
		if err := fw.w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		fw.dirs[dir] = struct{}{}
	}
	fw.byAbs[abs] = append(fw.byAbs[abs], uri)
	return nil
}

// Run dispatches events until ctx is done or the watcher is closed.
func (fw *FileWatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			fw.dispatch(ctx, ev)
		case err, ok := <-fw.w.Errors:
			if !ok {
				return nil
			}
			fw.log.WarnContext(ctx, "mcpservice.watcher.error", slog.String("err", err.Error()))
		}
	}
}

func (fw *FileWatcher) dispatch(ctx context.Context, ev fsnotify.Event) {
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}
	fw.mu.Lock()
	uris := append([]string(nil), fw.byAbs[abs]...)
	fw.mu.Unlock()

	for _, uri := range uris {
		n := fw.srv.NotifyResourceUpdated(ctx, uri)
		fw.log.DebugContext(ctx, "mcpservice.watcher.changed",
			slog.String("uri", uri),
			slog.String("op", ev.Op.String()),
			slog.Int("subscribers", n))
	}
}

// Close stops the underlying watcher; Run returns once its channels drain.
func (fw *FileWatcher) Close() error {
	return fw.w.Close()
}
