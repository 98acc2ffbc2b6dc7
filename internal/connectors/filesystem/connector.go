// Package filesystem serves files from a local directory tree and watches it
// for changes with fsnotify.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Verify interface implementation.
var _ driven.FileSource = (*Connector)(nil)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("filesystem: connector closed")

// changeBuffer is the capacity of the change channel.
const changeBuffer = 64

// Connector lists and watches regular files under a root directory.
// Hidden files and directories (leading dot) are ignored.
type Connector struct {
	rootPath string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a connector for rootPath.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// Root returns the directory being served.
func (c *Connector) Root() string {
	return c.rootPath
}

// Validate checks that the root exists and is a directory.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root path error: %s is not a directory", c.rootPath)
	}
	return nil
}

// Scan walks the root and returns visible regular files in lexical order.
func (c *Connector) Scan(ctx context.Context) ([]string, error) {
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	var paths []string
	err := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("scan %s: %v", path, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path == c.rootPath {
			return nil
		}
		if c.hidden(path) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", c.rootPath, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// ChangedSince returns visible regular files modified after since.
func (c *Connector) ChangedSince(ctx context.Context, since time.Time) ([]string, error) {
	paths, err := c.Scan(ctx)
	if err != nil {
		return nil, err
	}

	changed := paths[:0]
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.ModTime().After(since) {
			changed = append(changed, p)
		}
	}
	return changed, nil
}

// Read returns a file's bytes.
func (c *Connector) Read(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return content, nil
}

// Watch streams file changes until ctx is cancelled or Close is called.
// New subdirectories are watched as they appear.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.FileChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := c.addTree(watcher, c.rootPath); err != nil {
		watcher.Close() //nolint:errcheck
		return nil, err
	}
	c.watcher = watcher

	out := make(chan domain.FileChange, changeBuffer)
	go c.watchLoop(ctx, watcher, out)

	logger.Debug("watching %s", c.rootPath)
	return out, nil
}

func (c *Connector) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- domain.FileChange) {
	defer close(out)
	defer watcher.Close() //nolint:errcheck

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) && !c.hidden(event.Name) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := c.addTree(watcher, event.Name); err != nil {
						logger.Warn("watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			change := c.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case out <- *change:
			case <-ctx.Done():
				return
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher: %v", err)
		}
	}
}

// handleFsEvent converts an fsnotify event into a change, or nil when the
// event is irrelevant (directories, hidden paths, chmod).
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.FileChange {
	if c.hidden(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.FileChange{Type: domain.ChangeDeleted, Path: event.Name}

	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		changeType := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = domain.ChangeCreated
		}
		return &domain.FileChange{Type: changeType, Path: event.Name, ModTime: info.ModTime()}

	default:
		return nil
	}
}

// addTree watches dir and every visible directory below it.
func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable subtrees are skipped
		}
		if !d.IsDir() {
			return nil
		}
		if path != c.rootPath && c.hidden(path) {
			return fs.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// Close stops any active watch. It is idempotent.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

// hidden reports whether path is hidden relative to the root.
func (c *Connector) hidden(path string) bool {
	rel, err := filepath.Rel(c.rootPath, path)
	if err != nil {
		return isHidden(path)
	}
	return isHidden(rel)
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
