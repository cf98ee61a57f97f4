// Package supervisor owns the daemon's single event pipeline, exposing
// lifecycle operations to the control channel and reacting to rule file
// changes.
package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pkg/errors"

	"github.com/nfd2nfc/nfd2nfc/pkg/logging"
	"github.com/nfd2nfc/nfd2nfc/pkg/pipeline"
	"github.com/nfd2nfc/nfd2nfc/pkg/rules"
	"github.com/nfd2nfc/nfd2nfc/pkg/state"
)

// ruleChangeCoalescing is the window over which rule file notifications are
// coalesced before a reload, absorbing the temp-write-rename sequence of an
// atomic save.
const ruleChangeCoalescing = 250 * time.Millisecond

// Supervisor owns exactly one event pipeline. Lifecycle operations are
// idempotent from the caller's view: starting a running supervisor and
// stopping a stopped one are no-ops, and Stop is safe while crashed.
type Supervisor struct {
	// logger is the supervisor's logger.
	logger *logging.Logger
	// rulePath is the path to the rule file.
	rulePath string
	// tracker broadcasts state changes to status monitors.
	tracker *state.Tracker

	// operationLock serializes Start, Stop, and Reload.
	operationLock sync.Mutex
	// cancel terminates the current pipeline. It is managed by Start/Stop
	// under operationLock.
	cancel context.CancelFunc

	// stateLock guards phase and current.
	stateLock sync.Mutex
	// phase is the supervisor's lifecycle phase.
	phase Status
	// current is the current pipeline, nil when stopped.
	current *pipeline.Pipeline
}

// New creates a supervisor managing watches described by the specified rule
// file. No pipeline is started until Run applies the persisted enabled flag
// or Start is invoked.
func New(rulePath string, logger *logging.Logger) *Supervisor {
	return &Supervisor{
		logger:   logger,
		rulePath: rulePath,
		tracker:  state.NewTracker(),
	}
}

// setPhase records a lifecycle phase change and notifies monitors.
func (s *Supervisor) setPhase(phase Status, current *pipeline.Pipeline) {
	s.stateLock.Lock()
	s.phase = phase
	s.current = current
	s.stateLock.Unlock()
	s.tracker.NotifyOfChange()
}

// Status derives the externally visible status. During transitions it
// reports the transitional phase; otherwise it inspects the pipeline itself,
// so an exited or faulted pipeline reports as crashed regardless of what was
// last requested.
func (s *Supervisor) Status() Status {
	s.stateLock.Lock()
	phase, current := s.phase, s.current
	s.stateLock.Unlock()

	if phase != StatusRunning || current == nil {
		return phase
	}
	select {
	case <-current.Done():
		return StatusCrashed
	default:
	}
	if current.State() == pipeline.StateFaulted {
		return StatusCrashed
	}
	return StatusRunning
}

// Poll blocks until the supervisor's state index advances beyond
// previousIndex, then returns the current status, the new index, and whether
// tracking has terminated. An index of 0 returns immediately.
func (s *Supervisor) Poll(previousIndex uint64) (Status, uint64, bool) {
	index, poisoned := s.tracker.WaitForChange(previousIndex)
	return s.Status(), index, poisoned
}

// Start brings up a pipeline using the rules currently on disk. It is a
// no-op if a pipeline is already running. A rule file that fails to load is
// logged and treated as empty rather than blocking startup.
func (s *Supervisor) Start() error {
	s.operationLock.Lock()
	defer s.operationLock.Unlock()

	if s.Status() == StatusRunning {
		return nil
	}
	s.setPhase(StatusStarting, nil)

	ruleSet, err := rules.Load(s.rulePath)
	if err != nil {
		s.logger.Warnf("unable to load rules, starting with none: %v", err)
		ruleSet = &rules.RuleSet{}
	}
	watchSet := rules.Resolve(ruleSet.Rules, s.logger)

	p := pipeline.New(s.logger.Sublogger("pipeline"), s.tracker.NotifyOfChange)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go func() {
		if err := p.Run(ctx, watchSet); err != nil {
			s.logger.Errorf("pipeline terminated: %v", err)
		}
		s.tracker.NotifyOfChange()
	}()

	s.setPhase(StatusRunning, p)
	s.logger.Info("watching started")
	return nil
}

// Stop tears down the current pipeline, if any, and waits for its
// termination. It is a no-op when already stopped and safe to call while
// crashed.
func (s *Supervisor) Stop() error {
	s.operationLock.Lock()
	defer s.operationLock.Unlock()

	s.stateLock.Lock()
	current := s.current
	s.stateLock.Unlock()
	if current == nil {
		s.setPhase(StatusStopped, nil)
		return nil
	}

	s.setPhase(StatusStopping, current)
	s.cancel()
	<-current.Done()
	s.cancel = nil
	s.setPhase(StatusStopped, nil)
	s.logger.Info("watching stopped")
	return nil
}

// Restart stops any current pipeline and brings up a fresh one, reloading
// rules from disk. It is the only way back from a crashed state short of a
// daemon restart.
func (s *Supervisor) Restart() error {
	if err := s.Stop(); err != nil {
		return err
	}
	return s.Start()
}

// Reload re-resolves rules from disk and hands the result to the running
// pipeline. It is a no-op when stopped or crashed. A rule file that fails to
// load leaves the pipeline on its last-good watch set.
func (s *Supervisor) Reload() error {
	s.operationLock.Lock()
	defer s.operationLock.Unlock()

	s.stateLock.Lock()
	current := s.current
	s.stateLock.Unlock()
	if current == nil {
		return nil
	}
	select {
	case <-current.Done():
		return nil
	default:
	}

	ruleSet, err := rules.Load(s.rulePath)
	if err != nil {
		s.logger.Warnf("keeping current rules: %v", err)
		return err
	}
	current.Reload(rules.Resolve(ruleSet.Rules, s.logger))
	s.logger.Info("rules reloaded")
	return nil
}

// applyRuleChange reconciles the run state with the rule file's enabled
// flag: disabled stops watching, enabled reloads or starts it.
func (s *Supervisor) applyRuleChange() {
	ruleSet, err := rules.Load(s.rulePath)
	if err != nil {
		s.logger.Warnf("ignoring rule change: %v", err)
		return
	}
	if !ruleSet.Enabled {
		s.Stop()
		return
	}
	if s.Status() == StatusRunning {
		s.Reload()
	} else {
		s.Start()
	}
}

// Run applies the persisted enabled flag, then watches the rule file for
// changes until the context is cancelled, stopping any pipeline on the way
// out. Change notifications are coalesced before triggering a reload.
func (s *Supervisor) Run(ctx context.Context) error {
	s.applyRuleChange()

	// Watch the rule file's directory. Atomic saves replace the file, so
	// watching the file itself would detach on the first save.
	directory := filepath.Dir(s.rulePath)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return errors.Wrap(err, "unable to create rule directory")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "unable to create rule watcher")
	}
	defer watcher.Close()
	if err := watcher.Add(directory); err != nil {
		return errors.Wrap(err, "unable to watch rule directory")
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			s.Stop()
			s.tracker.Poison()
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("rule watcher terminated")
			}
			if event.Name == s.rulePath {
				pending = time.After(ruleChangeCoalescing)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("rule watcher terminated")
			}
			s.logger.Warnf("rule watcher error: %v", err)
		case <-pending:
			pending = nil
			s.applyRuleChange()
		}
	}
}
