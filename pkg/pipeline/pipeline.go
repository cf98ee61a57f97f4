package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pkg/errors"

	"github.com/nfd2nfc/nfd2nfc/pkg/logging"
	"github.com/nfd2nfc/nfd2nfc/pkg/normalization"
	"github.com/nfd2nfc/nfd2nfc/pkg/rules"
)

const (
	// rebuildAttempts is the number of attempts made to reopen the
	// notification channel before the pipeline faults.
	rebuildAttempts = 5
	// rebuildBackoffInitial is the delay before the first rebuild retry. It
	// doubles on each subsequent attempt.
	rebuildBackoffInitial = 100 * time.Millisecond
)

// newWatcher creates the underlying notification source. It is a variable
// so that tests can substitute a failing constructor.
var newWatcher = fsnotify.NewWatcher

// Pipeline converts decomposed entry names to their composed forms as they
// appear beneath the directories of an effective watch set. A pipeline is
// single-use: once Run returns, a fresh pipeline is needed. All filesystem
// state (subscriptions, conversion markers) is owned by the run loop, with
// notifications serialized through a single handler.
type Pipeline struct {
	// logger is the pipeline's logger.
	logger *logging.Logger
	// stateChanged, if non-nil, is invoked after each state transition.
	stateChanged func()
	// reloads delivers replacement watch sets to the run loop.
	reloads chan *rules.EffectiveWatchSet
	// done is closed when the run loop exits.
	done chan struct{}

	// stateLock guards state.
	stateLock sync.RWMutex
	// state is the pipeline's current state.
	state State

	// watchSet is the watch set currently in effect. It is owned by the run
	// loop and replaced wholesale on reload.
	watchSet *rules.EffectiveWatchSet
	// watcher is the live notification source, nil when torn down.
	watcher *fsnotify.Watcher
	// watched tracks the directories currently subscribed on watcher.
	watched map[string]bool
	// recent tracks renames performed by the pipeline itself.
	recent *recentlyConverted
}

// New creates a pipeline. The stateChanged callback, if non-nil, is invoked
// (from the run loop) whenever the pipeline transitions between states.
func New(logger *logging.Logger, stateChanged func()) *Pipeline {
	return &Pipeline{
		logger:       logger,
		stateChanged: stateChanged,
		reloads:      make(chan *rules.EffectiveWatchSet),
		done:         make(chan struct{}),
	}
}

// State returns the pipeline's current state.
func (p *Pipeline) State() State {
	p.stateLock.RLock()
	defer p.stateLock.RUnlock()
	return p.state
}

// Done returns a channel closed once the run loop has exited.
func (p *Pipeline) Done() <-chan struct{} {
	return p.done
}

// Reload hands a replacement watch set to the run loop, which tears down and
// rebuilds its subscriptions. It is a no-op if the pipeline has terminated.
func (p *Pipeline) Reload(watchSet *rules.EffectiveWatchSet) {
	select {
	case p.reloads <- watchSet:
	case <-p.done:
	}
}

// setState records a state transition.
func (p *Pipeline) setState(state State) {
	p.stateLock.Lock()
	if p.state == state {
		p.stateLock.Unlock()
		return
	}
	p.state = state
	p.stateLock.Unlock()
	p.logger.Debugf("state is now %v", state)
	if p.stateChanged != nil {
		p.stateChanged()
	}
}

// Run executes the pipeline until the context is cancelled or the
// notification channel faults. Cancellation discards any queued
// notifications, which is safe because entries are re-classified whenever
// they're next observed. A non-nil error indicates a fault.
func (p *Pipeline) Run(ctx context.Context, watchSet *rules.EffectiveWatchSet) error {
	defer close(p.done)
	defer p.teardown()

	p.applyReload(watchSet)

	for {
		// With nothing to subscribe, park until cancellation or reload.
		if p.watchSet.Empty() {
			p.teardown()
			p.setState(StateIdle)
			select {
			case <-ctx.Done():
				return nil
			case watchSet := <-p.reloads:
				p.applyReload(watchSet)
			}
			continue
		}

		// Establish subscriptions if none are live.
		if p.watcher == nil {
			if err := p.rebuildWithBackoff(ctx); err != nil {
				if ctx.Err() != nil {
					p.setState(StateIdle)
					return nil
				}
				p.setState(StateFaulted)
				return err
			}
		}
		p.setState(StateActive)

		// Wait for the next notification, reload, or cancellation.
		select {
		case <-ctx.Done():
			p.teardown()
			p.setState(StateIdle)
			return nil
		case watchSet := <-p.reloads:
			p.setState(StateReloading)
			p.teardown()
			p.applyReload(watchSet)
		case event, ok := <-p.watcher.Events:
			if !ok {
				p.logger.Warnf("notification channel closed unexpectedly")
				p.teardown()
			} else {
				p.handleEvent(event)
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				p.logger.Warnf("notification channel closed unexpectedly")
				p.teardown()
			} else {
				// Per-channel errors (e.g. event queue overflow) are
				// transient and don't invalidate subscriptions.
				p.logger.Warnf("notification error: %v", err)
			}
		}
	}
}

// applyReload installs a replacement watch set. Conversion markers are
// rebuilt alongside: they describe renames made under the outgoing
// subscriptions, and a marker that outlived its subscription could swallow
// an unrelated event after the rebuild.
func (p *Pipeline) applyReload(watchSet *rules.EffectiveWatchSet) {
	p.watchSet = watchSet
	p.recent = newRecentlyConverted(recentDefaultTTL, recentDefaultCapacity)
}

// rebuildWithBackoff attempts to establish subscriptions, retrying with
// doubling delays.
func (p *Pipeline) rebuildWithBackoff(ctx context.Context) error {
	delay := rebuildBackoffInitial
	var err error
	for attempt := 0; attempt < rebuildAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if err = p.rebuild(); err == nil {
			return nil
		}
		p.logger.Warnf("unable to establish subscriptions (attempt %d): %v", attempt+1, err)
	}
	return errors.Wrap(err, "unable to establish subscriptions")
}

// rebuild creates a fresh watcher subscribed to the watch set's directories.
// Individual subscription failures are logged and skipped; only failure to
// create the watcher itself is an error.
func (p *Pipeline) rebuild() error {
	watcher, err := newWatcher()
	if err != nil {
		return errors.Wrap(err, "unable to create watcher")
	}
	watched := make(map[string]bool)
	for _, directory := range p.watchSet.Subscriptions() {
		if err := watcher.Add(directory); err != nil {
			p.logger.Warnf("unable to subscribe to %s: %v", directory, err)
			continue
		}
		watched[directory] = true
	}
	p.watcher = watcher
	p.watched = watched
	return nil
}

// teardown closes the watcher, if any, releasing all subscriptions.
func (p *Pipeline) teardown() {
	if p.watcher != nil {
		p.watcher.Close()
		p.watcher = nil
		p.watched = nil
	}
}

// handleEvent processes a single raw notification.
func (p *Pipeline) handleEvent(event fsnotify.Event) {
	// Deletions require no conversion, and rename notifications arrive on
	// the old path (the new location produces its own creation event). In
	// both cases any subscriptions at or beneath the path are stale.
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		p.forgetSubtree(event.Name)
		return
	}

	// Only entry appearances warrant classification. Writes and permission
	// changes can't change a name.
	if event.Op&fsnotify.Create == 0 {
		return
	}
	p.handleCreated(event.Name)
}

// forgetSubtree drops subscriptions registered at or beneath a path.
func (p *Pipeline) forgetSubtree(path string) {
	for directory := range p.watched {
		if directory == path || strings.HasPrefix(directory, path+string(os.PathSeparator)) {
			p.watcher.Remove(directory)
			delete(p.watched, directory)
		}
	}
}

// handleCreated processes the appearance of an entry.
func (p *Pipeline) handleCreated(path string) {
	parent := filepath.Dir(path)
	name := filepath.Base(path)

	// Discard events from directories that are no longer subscribed, which
	// can occur transiently around reloads.
	if !p.watched[parent] {
		return
	}

	// Recognize and discard self-generated events.
	if p.recent.consume(parent, name) {
		p.logger.Debugf("discarding self-generated event for %s", path)
		return
	}

	// Convert the name if it's decomposed. Conversion failures (including
	// conflicts) leave the entry in place under its original name.
	if composed, needed := normalization.ComposedForm(name); needed {
		if converted, ok := p.convert(parent, name, composed); ok {
			path = converted
		}
	}

	// If a covered directory appeared, extend subscriptions to it.
	p.maybeSubscribe(path)
}

// convert renames a decomposed entry to its composed form within the same
// parent, returning the entry's resulting path and whether the rename
// occurred.
func (p *Pipeline) convert(parent, name, composed string) (string, bool) {
	source := filepath.Join(parent, name)
	target := filepath.Join(parent, composed)

	// Never overwrite an existing entry.
	if _, err := os.Lstat(target); err == nil {
		p.logger.Warnf("conflict: composed form of %s already exists, leaving entry untouched", source)
		return "", false
	} else if !os.IsNotExist(err) {
		p.logger.Warnf("unable to probe %s: %v", target, err)
		return "", false
	}

	// Mark the rename before issuing it so that the resulting notification
	// is guaranteed to find the marker.
	p.recent.add(parent, composed)
	if err := os.Rename(source, target); err != nil {
		p.recent.remove(parent, composed)
		p.logger.Warnf("unable to rename %s: %v", source, err)
		return "", false
	}
	p.logger.Infof("converted %s", target)
	return target, true
}

// maybeSubscribe subscribes to a newly appeared directory if the watch set
// covers it, then scans its current contents, since entries may have been
// created inside before the subscription landed. Non-directories and
// uncovered directories are ignored.
func (p *Pipeline) maybeSubscribe(path string) {
	if p.watched[path] {
		return
	}
	info, err := os.Lstat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if !p.watchSet.Covers(path).Watched {
		return
	}
	if err := p.watcher.Add(path); err != nil {
		p.logger.Warnf("unable to subscribe to %s: %v", path, err)
		return
	}
	p.watched[path] = true
	p.scan(path)
}

// scan makes a single pass over a directory's entries, converting decomposed
// names and descending into covered subdirectories.
func (p *Pipeline) scan(directory string) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		p.logger.Warnf("unable to enumerate %s: %v", directory, err)
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(directory, name)
		if composed, needed := normalization.ComposedForm(name); needed {
			if converted, ok := p.convert(directory, name, composed); ok {
				path = converted
			}
		}
		if entry.IsDir() {
			p.maybeSubscribe(path)
		}
	}
}
