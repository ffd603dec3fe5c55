package config

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/logger"
)

// ChangeCallback receives the names of the jobs whose sources changed, in
// config order.
type ChangeCallback func(ctx context.Context, jobs []string)

// SourceWatcher watches every job's source and reports which jobs need to
// be regenerated. Bursts of events are debounced, and regeneration is
// throttled so a misbehaving editor cannot spin the generator.
type SourceWatcher struct {
	watcher  *fsnotify.Watcher
	onChange ChangeCallback
	logger   *zap.SugaredLogger

	order   []string            // job names in config order
	files   map[string][]string // source file -> jobs
	dirs    map[string][]string // source directory -> jobs
	ignored map[string]bool     // destinations, never trigger

	debouncePeriod time.Duration
	limiter        *rate.Limiter

	mu            sync.Mutex
	pending       map[string]bool
	debounceTimer *time.Timer

	// runMu keeps callbacks from overlapping.
	runMu sync.Mutex
}

// NewSourceWatcher creates a watcher for the sources of the given jobs.
// Single-file sources are watched through their directory so editors that
// replace files on save are still seen.
func NewSourceWatcher(cfg *Config, jobs []Job, onChange ChangeCallback) (*SourceWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	sw := &SourceWatcher{
		watcher:        watcher,
		onChange:       onChange,
		logger:         logger.ComponentLogger("config.watch"),
		files:          make(map[string][]string),
		dirs:           make(map[string][]string),
		ignored:        make(map[string]bool),
		debouncePeriod: 500 * time.Millisecond,
		limiter:        rate.NewLimiter(rate.Every(time.Second), 2),
		pending:        make(map[string]bool),
	}

	watched := make(map[string]bool)
	for _, j := range jobs {
		sw.order = append(sw.order, j.Name)
		source := absClean(cfg.ResolvePath(j.Source))
		sw.ignored[absClean(cfg.ResolvePath(j.Dest))] = true

		dir := filepath.Dir(source)
		if j.Kind.ReadsDirectory() {
			dir = source
			sw.dirs[source] = append(sw.dirs[source], j.Name)
		} else {
			sw.files[source] = append(sw.files[source], j.Name)
		}

		if watched[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, errors.Wrapf(err, "failed to watch %s for job %q", dir, j.Name)
		}
		watched[dir] = true
	}
	return sw, nil
}

func absClean(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Run processes file system events until ctx is cancelled.
func (sw *SourceWatcher) Run(ctx context.Context) error {
	defer sw.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			jobs := sw.affected(event.Name)
			if len(jobs) == 0 {
				continue
			}
			sw.logger.Debugw("Source changed",
				logger.FieldPath, event.Name,
				"op", event.Op.String(),
				logger.FieldJob, strings.Join(jobs, ","))
			sw.schedule(ctx, jobs)

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return nil
			}
			sw.logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// affected returns the jobs whose output depends on path.
func (sw *SourceWatcher) affected(path string) []string {
	path = absClean(path)
	if sw.ignored[path] || strings.HasPrefix(filepath.Base(path), ".") {
		return nil
	}
	jobs := append([]string(nil), sw.files[path]...)
	jobs = append(jobs, sw.dirs[filepath.Dir(path)]...)
	return jobs
}

// schedule adds jobs to the pending set and restarts the debounce timer.
func (sw *SourceWatcher) schedule(ctx context.Context, jobs []string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	for _, j := range jobs {
		sw.pending[j] = true
	}
	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
	sw.debounceTimer = time.AfterFunc(sw.debouncePeriod, func() {
		sw.flush(ctx)
	})
}

// flush hands the pending jobs to the callback once the limiter allows.
func (sw *SourceWatcher) flush(ctx context.Context) {
	if err := sw.limiter.Wait(ctx); err != nil {
		return
	}

	sw.runMu.Lock()
	defer sw.runMu.Unlock()

	sw.mu.Lock()
	jobs := sw.takePending()
	sw.mu.Unlock()

	if len(jobs) == 0 {
		return
	}
	sw.onChange(ctx, jobs)
}

// takePending drains the pending set in config order. Callers hold mu.
func (sw *SourceWatcher) takePending() []string {
	var jobs []string
	for _, name := range sw.order {
		if sw.pending[name] {
			jobs = append(jobs, name)
			delete(sw.pending, name)
		}
	}
	return jobs
}

func (sw *SourceWatcher) stopTimer() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
}

// Close stops watching.
func (sw *SourceWatcher) Close() error {
	return sw.watcher.Close()
}
