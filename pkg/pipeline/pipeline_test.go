package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pkg/errors"

	"golang.org/x/text/unicode/norm"

	"github.com/nfd2nfc/nfd2nfc/pkg/rules"
)

const (
	// conversionTimeout bounds how long tests wait for notification-driven
	// conversion to occur.
	conversionTimeout = 5 * time.Second
	// settleDelay is how long tests wait when verifying that nothing further
	// happens.
	settleDelay = 250 * time.Millisecond
)

func decompose(s string) string {
	return norm.NFD.String(s)
}

// startPipeline resolves rules, starts a pipeline with them, and registers
// cleanup that terminates it.
func startPipeline(t *testing.T, ruleList []rules.Rule) *Pipeline {
	t.Helper()
	pipeline := New(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go pipeline.Run(ctx, rules.Resolve(ruleList, nil))
	t.Cleanup(func() {
		cancel()
		<-pipeline.Done()
	})
	return pipeline
}

// waitFor polls a condition until it holds or the timeout elapses.
func waitFor(t *testing.T, condition func() bool, failure string) {
	t.Helper()
	deadline := time.Now().Add(conversionTimeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(failure)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func TestPipelineConvertsCreatedEntry(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0700); err != nil {
		t.Fatal("unable to create directory:", err)
	}
	pipeline := startPipeline(t, []rules.Rule{
		{Path: root, Action: rules.ActionWatch, Mode: rules.ModeRecursive},
	})
	waitFor(t, func() bool { return pipeline.State() == StateActive },
		"pipeline did not become active")

	// Create a file with a decomposed name and wait for its conversion.
	decomposed := filepath.Join(sub, decompose("écrit.txt"))
	composed := filepath.Join(sub, "écrit.txt")
	if err := os.WriteFile(decomposed, []byte{0}, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	waitFor(t, func() bool { return exists(composed) && !exists(decomposed) },
		"entry not converted")

	// Verify that the self-generated event doesn't trigger further renames.
	time.Sleep(settleDelay)
	if !exists(composed) {
		t.Error("converted entry disturbed by self-generated event")
	}
}

func TestPipelineCollision(t *testing.T) {
	root := t.TempDir()
	pipeline := startPipeline(t, []rules.Rule{
		{Path: root, Action: rules.ActionWatch, Mode: rules.ModeRecursive},
	})
	waitFor(t, func() bool { return pipeline.State() == StateActive },
		"pipeline did not become active")

	// Create a composed-form entry, then a decomposed sibling that would
	// rename onto it. Both must survive under their original names.
	composed := filepath.Join(root, "café")
	decomposed := filepath.Join(root, decompose("café"))
	if err := os.WriteFile(composed, []byte("original"), 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	if err := os.WriteFile(decomposed, []byte("colliding"), 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	time.Sleep(settleDelay)
	if !exists(decomposed) {
		t.Error("colliding entry renamed or removed")
	}
	if contents, err := os.ReadFile(composed); err != nil {
		t.Error("unable to read original entry:", err)
	} else if string(contents) != "original" {
		t.Error("original entry overwritten")
	}
}

func TestPipelineDynamicDescent(t *testing.T) {
	root := t.TempDir()
	pipeline := startPipeline(t, []rules.Rule{
		{Path: root, Action: rules.ActionWatch, Mode: rules.ModeRecursive},
	})
	waitFor(t, func() bool { return pipeline.State() == StateActive },
		"pipeline did not become active")

	// Create a directory after startup, then a decomposed entry inside it.
	// The directory must become subscribed automatically and the entry
	// converted.
	sub := filepath.Join(root, "c")
	if err := os.Mkdir(sub, 0700); err != nil {
		t.Fatal("unable to create directory:", err)
	}
	decomposed := filepath.Join(sub, decompose("übung.txt"))
	composed := filepath.Join(sub, "übung.txt")
	if err := os.WriteFile(decomposed, []byte{0}, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	waitFor(t, func() bool { return exists(composed) && !exists(decomposed) },
		"entry in dynamically created directory not converted")
}

func TestPipelineChildrenOnly(t *testing.T) {
	root := t.TempDir()
	pipeline := startPipeline(t, []rules.Rule{
		{Path: root, Action: rules.ActionWatch, Mode: rules.ModeChildrenOnly},
	})
	waitFor(t, func() bool { return pipeline.State() == StateActive },
		"pipeline did not become active")

	// A direct entry is converted.
	decomposed := filepath.Join(root, decompose("한글.txt"))
	composed := filepath.Join(root, "한글.txt")
	if err := os.WriteFile(decomposed, []byte{0}, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	waitFor(t, func() bool { return exists(composed) },
		"direct entry not converted")

	// A new subdirectory is not subscribed, so entries inside it stay
	// untouched.
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0700); err != nil {
		t.Fatal("unable to create directory:", err)
	}
	nested := filepath.Join(sub, decompose("región.txt"))
	if err := os.WriteFile(nested, []byte{0}, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	time.Sleep(settleDelay)
	if !exists(nested) {
		t.Error("entry beneath children-only root converted")
	}
}

func TestPipelineIdleWithEmptySet(t *testing.T) {
	pipeline := startPipeline(t, nil)
	waitFor(t, func() bool { return pipeline.State() == StateIdle },
		"pipeline did not become idle")
}

func TestPipelineReload(t *testing.T) {
	root := t.TempDir()
	pipeline := startPipeline(t, nil)
	waitFor(t, func() bool { return pipeline.State() == StateIdle },
		"pipeline did not become idle")

	// Reload with a non-empty watch set and verify activation.
	pipeline.Reload(rules.Resolve([]rules.Rule{
		{Path: root, Action: rules.ActionWatch, Mode: rules.ModeRecursive},
	}, nil))
	waitFor(t, func() bool { return pipeline.State() == StateActive },
		"pipeline did not activate after reload")

	decomposed := filepath.Join(root, decompose("später.txt"))
	composed := filepath.Join(root, "später.txt")
	if err := os.WriteFile(decomposed, []byte{0}, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	waitFor(t, func() bool { return exists(composed) },
		"entry not converted after reload")
}

func TestPipelineStop(t *testing.T) {
	root := t.TempDir()
	pipeline := New(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	runErrors := make(chan error, 1)
	go func() {
		runErrors <- pipeline.Run(ctx, rules.Resolve([]rules.Rule{
			{Path: root, Action: rules.ActionWatch, Mode: rules.ModeRecursive},
		}, nil))
	}()
	waitFor(t, func() bool { return pipeline.State() == StateActive },
		"pipeline did not become active")

	cancel()
	select {
	case err := <-runErrors:
		if err != nil {
			t.Error("run returned error on cancellation:", err)
		}
	case <-time.After(conversionTimeout):
		t.Fatal("pipeline did not stop")
	}
	if pipeline.State() != StateIdle {
		t.Error("stopped pipeline not idle:", pipeline.State())
	}
}

func TestReloadResetsConversionMarkers(t *testing.T) {
	pipeline := New(nil, nil)
	pipeline.applyReload(rules.Resolve(nil, nil))
	pipeline.recent.add("/somewhere", "café")

	// A reload rebuilds the marker set, so markers from before the reload
	// must not swallow later events.
	pipeline.applyReload(rules.Resolve(nil, nil))
	if pipeline.recent.consume("/somewhere", "café") {
		t.Error("conversion marker survived reload")
	}
}

func TestPipelineFaultAndRecovery(t *testing.T) {
	root := t.TempDir()
	ruleList := []rules.Rule{
		{Path: root, Action: rules.ActionWatch, Mode: rules.ModeRecursive},
	}

	// Substitute a notification source that can't be created so that
	// subscription rebuilding exhausts its retries.
	newWatcher = func() (*fsnotify.Watcher, error) {
		return nil, errors.New("notification source unavailable")
	}
	restored := false
	restore := func() {
		if !restored {
			newWatcher = fsnotify.NewWatcher
			restored = true
		}
	}
	defer restore()

	faulted := New(nil, nil)
	runErrors := make(chan error, 1)
	go func() {
		runErrors <- faulted.Run(context.Background(), rules.Resolve(ruleList, nil))
	}()
	select {
	case err := <-runErrors:
		if err == nil {
			t.Fatal("pipeline terminated without error")
		}
	case <-time.After(conversionTimeout):
		t.Fatal("pipeline never faulted")
	}
	if faulted.State() != StateFaulted {
		t.Fatal("state after fault incorrect:", faulted.State())
	}

	// Leave a composed entry in place from before the fault.
	surviving := filepath.Join(root, "café.txt")
	if err := os.WriteFile(surviving, []byte("original"), 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}

	// A fresh pipeline with a working notification source resumes
	// conversion without reprocessing existing composed entries.
	restore()
	pipeline := startPipeline(t, ruleList)
	waitFor(t, func() bool { return pipeline.State() == StateActive },
		"pipeline did not become active after restart")
	decomposed := filepath.Join(root, decompose("über.txt"))
	composed := filepath.Join(root, "über.txt")
	if err := os.WriteFile(decomposed, []byte{0}, 0600); err != nil {
		t.Fatal("unable to create file:", err)
	}
	waitFor(t, func() bool { return exists(composed) && !exists(decomposed) },
		"entry not converted after restart")
	if contents, err := os.ReadFile(surviving); err != nil {
		t.Error("unable to read surviving entry:", err)
	} else if string(contents) != "original" {
		t.Error("surviving entry disturbed by restart")
	}
}
