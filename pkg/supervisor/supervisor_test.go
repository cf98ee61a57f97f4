package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/nfd2nfc/nfd2nfc/pkg/pipeline"
	"github.com/nfd2nfc/nfd2nfc/pkg/rules"
)

const statusTimeout = 5 * time.Second

func waitForStatus(t *testing.T, supervisor *Supervisor, expected Status) {
	t.Helper()
	deadline := time.Now().Add(statusTimeout)
	for time.Now().Before(deadline) {
		if supervisor.Status() == expected {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("status never became %v (currently %v)", expected, supervisor.Status())
}

func TestSupervisorLifecycle(t *testing.T) {
	rulePath := filepath.Join(t.TempDir(), "rules.toml")
	supervisor := New(rulePath, nil)

	if supervisor.Status() != StatusStopped {
		t.Fatal("initial status incorrect:", supervisor.Status())
	}
	if err := supervisor.Start(); err != nil {
		t.Fatal("unable to start:", err)
	}
	waitForStatus(t, supervisor, StatusRunning)
	if err := supervisor.Start(); err != nil {
		t.Fatal("redundant start errored:", err)
	}
	if err := supervisor.Stop(); err != nil {
		t.Fatal("unable to stop:", err)
	}
	if supervisor.Status() != StatusStopped {
		t.Error("status after stop incorrect:", supervisor.Status())
	}
	if err := supervisor.Stop(); err != nil {
		t.Fatal("redundant stop errored:", err)
	}
	if err := supervisor.Restart(); err != nil {
		t.Fatal("unable to restart:", err)
	}
	waitForStatus(t, supervisor, StatusRunning)
	if err := supervisor.Stop(); err != nil {
		t.Fatal("unable to stop:", err)
	}
}

func TestSupervisorPoll(t *testing.T) {
	rulePath := filepath.Join(t.TempDir(), "rules.toml")
	supervisor := New(rulePath, nil)

	// An index of 0 always represents a change.
	status, index, poisoned := supervisor.Poll(0)
	if poisoned {
		t.Fatal("tracking terminated prematurely")
	}
	if status != StatusStopped {
		t.Error("initial polled status incorrect:", status)
	}

	// Start in the background and verify the poll wakes with a new index.
	go supervisor.Start()
	status, next, poisoned := supervisor.Poll(index)
	if poisoned {
		t.Fatal("tracking terminated prematurely")
	}
	if next == index {
		t.Error("state index did not advance")
	}
	supervisor.Stop()
}

func TestSupervisorFollowsRuleFile(t *testing.T) {
	watched := t.TempDir()
	rulePath := filepath.Join(t.TempDir(), "rules.toml")
	supervisor := New(rulePath, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- supervisor.Run(ctx) }()
	defer func() {
		cancel()
		if err := <-done; err != nil {
			t.Error("supervisor run errored:", err)
		}
	}()

	// No rule file means no watching.
	time.Sleep(100 * time.Millisecond)
	if supervisor.Status() != StatusStopped {
		t.Fatal("supervisor running without rules:", supervisor.Status())
	}

	// Save an enabled rule set and verify watching starts.
	if err := rules.Save(rulePath, &rules.RuleSet{
		Enabled: true,
		Rules: []rules.Rule{
			{Path: watched, Action: rules.ActionWatch, Mode: rules.ModeRecursive},
		},
	}); err != nil {
		t.Fatal("unable to save rules:", err)
	}
	waitForStatus(t, supervisor, StatusRunning)

	// Verify that conversion is live.
	decomposed := filepath.Join(watched, norm.NFD.String("café.txt"))
	composed := filepath.Join(watched, "café.txt")
	if err := os.WriteFile(decomposed, []byte{0}, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	deadline := time.Now().Add(statusTimeout)
	for time.Now().Before(deadline) {
		if _, err := os.Lstat(composed); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := os.Lstat(composed); err != nil {
		t.Error("entry not converted while supervised")
	}

	// Disable watching through the rule file and verify shutdown.
	if err := rules.Save(rulePath, &rules.RuleSet{Enabled: false}); err != nil {
		t.Fatal("unable to save rules:", err)
	}
	waitForStatus(t, supervisor, StatusStopped)
}

func TestSupervisorObservesCrash(t *testing.T) {
	watched := t.TempDir()
	rulePath := filepath.Join(t.TempDir(), "rules.toml")
	if err := rules.Save(rulePath, &rules.RuleSet{
		Enabled: true,
		Rules: []rules.Rule{
			{Path: watched, Action: rules.ActionWatch, Mode: rules.ModeRecursive},
		},
	}); err != nil {
		t.Fatal("unable to save rules:", err)
	}
	supervisor := New(rulePath, nil)

	// Install a pipeline that has already terminated while the phase still
	// says running, which is what an unrecovered notification fault leaves
	// behind.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	terminated := pipeline.New(nil, nil)
	if err := terminated.Run(ctx, rules.Resolve(nil, nil)); err != nil {
		t.Fatal("pipeline run errored:", err)
	}
	supervisor.cancel = func() {}
	supervisor.setPhase(StatusRunning, terminated)

	// Status must reflect the pipeline's actual fate, not the requested
	// phase.
	if supervisor.Status() != StatusCrashed {
		t.Fatal("terminated pipeline not reported as crashed:", supervisor.Status())
	}

	// Restart recovers: stop is safe while crashed and a fresh pipeline
	// resumes conversion.
	if err := supervisor.Restart(); err != nil {
		t.Fatal("unable to restart:", err)
	}
	waitForStatus(t, supervisor, StatusRunning)
	defer supervisor.Stop()

	decomposed := filepath.Join(watched, norm.NFD.String("grüße.txt"))
	composed := filepath.Join(watched, "grüße.txt")
	if err := os.WriteFile(decomposed, []byte{0}, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	deadline := time.Now().Add(statusTimeout)
	for time.Now().Before(deadline) {
		if _, err := os.Lstat(composed); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := os.Lstat(composed); err != nil {
		t.Error("entry not converted after restart")
	}
}
