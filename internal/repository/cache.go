package repository

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"airwatch/internal/models"
	"airwatch/pkg/logging"
	"airwatch/pkg/metrics"
)

type cacheKey struct {
	path string
	flow Flow
}

type cacheEntry struct {
	series  *models.Series
	modTime time.Time
	size    int64
}

// CachedRepository memoises loads per path and flow.
// Entries are dropped when fsnotify reports a change to the file and are
// revalidated against modification time and size on every lookup.
// Cached series are shared between callers and must not be mutated.
type CachedRepository struct {
	next    SeriesRepository
	logger  *logging.ContextLogger
	metrics *metrics.Collector

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	entries map[cacheKey]cacheEntry
	watched map[string]bool
	done    chan struct{}
}

// NewCachedRepository wraps next with a change-aware cache
func NewCachedRepository(next SeriesRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) (*CachedRepository, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	c := &CachedRepository{
		next:    next,
		logger:  logger.WithFields(logging.Fields{"component": "cache"}),
		metrics: metricsCollector,
		watcher: watcher,
		entries: make(map[cacheKey]cacheEntry),
		watched: make(map[string]bool),
		done:    make(chan struct{}),
	}
	go c.watch()
	return c, nil
}

// Load returns the cached series when the file is unchanged, otherwise reloads it
func (c *CachedRepository) Load(ctx context.Context, path string, flow Flow) (*models.Series, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	key := cacheKey{path: abs, flow: flow}

	info, statErr := os.Stat(abs)
	if statErr == nil {
		c.mu.Lock()
		entry, ok := c.entries[key]
		c.mu.Unlock()
		if ok && entry.modTime.Equal(info.ModTime()) && entry.size == info.Size() {
			c.metrics.RecordCacheLookup("hit")
			c.logger.Debug(ctx, "[CACHE_HIT] Serving cached dataset", logging.Fields{
				"path": abs,
				"flow": flow.String(),
			})
			return entry.series, nil
		}
	}

	c.metrics.RecordCacheLookup("miss")
	s, err := c.next.Load(ctx, path, flow)
	if err != nil {
		c.forget(abs)
		return nil, err
	}
	if statErr != nil {
		return s, nil
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{series: s, modTime: info.ModTime(), size: info.Size()}
	dir := filepath.Dir(abs)
	watch := !c.watched[dir]
	if watch {
		c.watched[dir] = true
	}
	c.mu.Unlock()

	if watch {
		if err := c.watcher.Add(dir); err != nil {
			c.logger.Warn(ctx, "[CACHE_WATCH_ERROR] Falling back to modification time checks", logging.Fields{
				"dir":   dir,
				"error": err.Error(),
			})
		}
	}
	return s, nil
}

// Export is passed straight through
func (c *CachedRepository) Export(ctx context.Context, adjusted *models.AdjustedSeries, dir string, format Format) (string, error) {
	return c.next.Export(ctx, adjusted, dir, format)
}

// Len returns the number of cached entries
func (c *CachedRepository) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the watcher
func (c *CachedRepository) Close() error {
	err := c.watcher.Close()
	<-c.done
	return err
}

func (c *CachedRepository) watch() {
	defer close(c.done)
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				abs = filepath.Clean(event.Name)
			}
			if c.forget(abs) > 0 {
				c.metrics.RecordCacheLookup("invalidated")
				c.logger.Info(context.Background(), "[CACHE_INVALIDATED] Dataset changed on disk", logging.Fields{
					"path": abs,
					"op":   event.Op.String(),
				})
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Error(context.Background(), "[CACHE_WATCH_ERROR] File watcher failed", logging.Fields{}, err)
		}
	}
}

// forget drops every entry for path and returns how many were removed
func (c *CachedRepository) forget(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for key := range c.entries {
		if key.path == path {
			delete(c.entries, key)
			n++
		}
	}
	return n
}
