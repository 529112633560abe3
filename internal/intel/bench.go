package intel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"fintel/internal/finance"
	"fintel/internal/logging"
)

// benchDebounce is how long a changed benchmark file must settle before it
// is reloaded. Editors that save through a rename emit several events in a
// burst; only the last one triggers a parse.
const benchDebounce = 500 * time.Millisecond

// Benchmarks serves the industry benchmark tables used by
// Service.BenchmarkIndustry. The built-in tables are always available; an
// optional YAML override file replaces them wholesale, and Start watches
// that file so operators can tune percentiles without a restart.
type Benchmarks struct {
	path string

	mu     sync.RWMutex
	tables finance.BenchmarkSet
	stats  WatchStats

	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// WatchStats counts override (re)load outcomes.
type WatchStats struct {
	Reloads  int
	Failures int
}

// NewBenchmarks builds a source seeded with the built-in tables. When path
// is non-empty the override file is loaded immediately; a file that cannot
// be read or parsed is logged and the built-ins stay live.
func NewBenchmarks(path string) *Benchmarks {
	b := &Benchmarks{
		path:   path,
		tables: finance.DefaultBenchmarks(),
	}
	if path != "" {
		b.reload()
	}
	return b
}

// Current returns the live tables. The returned set is shared and must be
// treated as read-only; reloads swap in a fresh set instead of mutating it.
func (b *Benchmarks) Current() finance.BenchmarkSet {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tables
}

// Stats reports how many override loads succeeded and failed.
func (b *Benchmarks) Stats() WatchStats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stats
}

// reload parses the override file and swaps the tables. Any failure keeps
// the previous tables live.
func (b *Benchmarks) reload() {
	data, err := os.ReadFile(b.path)
	if err != nil {
		b.recordFailure(err)
		return
	}
	set, err := finance.ParseBenchmarks(data)
	if err != nil {
		b.recordFailure(err)
		return
	}

	b.mu.Lock()
	b.tables = set
	b.stats.Reloads++
	b.mu.Unlock()
	logging.Bench("Loaded benchmark tables from %s: %d industries", b.path, len(set))
}

func (b *Benchmarks) recordFailure(err error) {
	b.mu.Lock()
	b.stats.Failures++
	b.mu.Unlock()
	logging.BenchWarn("Keeping previous benchmark tables: %v", err)
}

// Start begins watching the override file for changes. It is a no-op when
// no override path is configured or the watcher is already running. The
// watch covers the file's directory so editors that replace the file on
// save are still observed.
func (b *Benchmarks) Start(ctx context.Context) error {
	if b.path == "" {
		return nil
	}

	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		b.mu.Unlock()
		return fmt.Errorf("failed to create benchmark watcher: %w", err)
	}
	dir := filepath.Dir(b.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		b.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	b.watcher = watcher
	b.stopCh = make(chan struct{})
	b.doneCh = make(chan struct{})
	b.running = true
	b.mu.Unlock()

	logging.Bench("Watching benchmark file: %s", b.path)
	go b.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit. Calling it
// when Start never ran is safe.
func (b *Benchmarks) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	b.mu.Unlock()

	close(b.stopCh)
	<-b.doneCh

	if err := b.watcher.Close(); err != nil {
		logging.BenchError("Failed to close benchmark watcher: %v", err)
	}
	logging.Bench("Benchmark watcher stopped")
}

// run is the watcher event loop. Events touching the override file arm a
// debounce window; the reload runs once the file settles.
func (b *Benchmarks) run(ctx context.Context) {
	defer close(b.doneCh)

	target := filepath.Clean(b.path)
	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case <-b.stopCh:
			return

		case event, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			logging.BenchDebug("Benchmark file event: %s", event.Op)
			settle = time.After(benchDebounce)

		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			logging.BenchWarn("Benchmark watcher error: %v", err)

		case <-settle:
			settle = nil
			b.reload()
		}
	}
}
