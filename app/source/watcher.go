package source

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/robfig/cron/v3"
)

//go:generate moq -out mocks/invalidator.go -pkg mocks -skip-ensure -fmt goimports . Invalidator

// Invalidator drops cached data for a path
type Invalidator interface {
	Invalidate(path string)
}

// Watcher checks the source file on a cron schedule and invalidates the cached table
// each time the file's modification time changes
type Watcher struct {
	path     string
	schedule cron.Schedule
	cache    Invalidator

	mu        sync.Mutex
	lastMtime time.Time
}

// NewWatcher makes a watcher for path with cron spec like "@every 10s" or "*/5 * * * *"
func NewWatcher(c Invalidator, path, spec string) (*Watcher, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid watch schedule %q: %w", spec, err)
	}
	w := &Watcher{path: path, schedule: schedule, cache: c}
	if st, err := os.Stat(path); err == nil {
		w.lastMtime = st.ModTime()
	}
	log.Printf("[INFO] watching %s for changes, schedule %q", path, spec)
	return w, nil
}

// Run starts scheduled checks and blocks until ctx canceled
func (w *Watcher) Run(ctx context.Context) {
	c := cron.New()
	c.Schedule(w.schedule, cron.FuncJob(func() { w.Check() }))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	log.Printf("[DEBUG] watcher for %s stopped", w.path)
}

// Check compares the file modification time with the last one seen and invalidates the cache on change.
// Returns true if the cache was invalidated.
func (w *Watcher) Check() bool {
	st, err := os.Stat(w.path)
	if err != nil {
		log.Printf("[WARN] can't get info about %s, %v", w.path, err)
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if st.ModTime().Equal(w.lastMtime) {
		return false
	}
	w.lastMtime = st.ModTime()
	log.Printf("[INFO] %s changed, reload on next request", w.path)
	w.cache.Invalidate(w.path)
	return true
}
