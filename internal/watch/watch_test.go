package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_ProcessesNewFile(t *testing.T) {
	dirs := testDirs(t)
	runner := &fakeRunner{result: cannedResult()}
	p := NewProcessor(dirs, runner, ProcessorOptions{})
	w := NewWatcher(p, 50*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Let the startup scan finish before dropping the file.
	time.Sleep(100 * time.Millisecond)
	dropFile(t, dirs.Incoming, "issue.json", validIssueJSON)

	ok := waitFor(t, 3*time.Second, func() bool {
		matches, _ := filepath.Glob(filepath.Join(dirs.Outgoing, "result_*.json"))
		return len(matches) == 1
	})
	if !ok {
		t.Fatal("file was not processed")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v", err)
	}
}

func TestWatcher_SkipsExistingFiles(t *testing.T) {
	dirs := testDirs(t)
	dropFile(t, dirs.Incoming, "preexisting.json", validIssueJSON)

	runner := &fakeRunner{result: cannedResult()}
	p := NewProcessor(dirs, runner, ProcessorOptions{})
	w := NewWatcher(p, 50*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	w.Run(ctx)

	if len(runner.issues) != 0 {
		t.Error("pre-existing file should not be processed")
	}
	if _, err := os.Stat(filepath.Join(dirs.Incoming, "preexisting.json")); err != nil {
		t.Error("pre-existing file should stay in incoming/")
	}
}

func TestWatcher_ProcessesEachFileOnce(t *testing.T) {
	dirs := testDirs(t)
	runner := &fakeRunner{result: cannedResult()}
	p := NewProcessor(dirs, runner, ProcessorOptions{})
	w := NewWatcher(p, 30*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	dropFile(t, dirs.Incoming, "a.json", validIssueJSON)
	dropFile(t, dirs.Incoming, "b.json", validIssueJSON)

	waitFor(t, 3*time.Second, func() bool {
		matches, _ := filepath.Glob(filepath.Join(dirs.Outgoing, "result_*.json"))
		return len(matches) >= 2
	})
	cancel()
	<-done

	if len(runner.issues) != 2 {
		t.Errorf("pipeline ran %d times, want 2", len(runner.issues))
	}
}

func TestWatcher_InvalidFileGoesToInvalid(t *testing.T) {
	dirs := testDirs(t)
	runner := &fakeRunner{result: cannedResult()}
	p := NewProcessor(dirs, runner, ProcessorOptions{})
	w := NewWatcher(p, 30*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	dropFile(t, dirs.Incoming, "bad.json", `{"title": "nope"}`)

	ok := waitFor(t, 3*time.Second, func() bool {
		matches, _ := filepath.Glob(filepath.Join(dirs.Processed, "invalid", "*.json"))
		return len(matches) == 1
	})
	cancel()
	<-done

	if !ok {
		t.Fatal("invalid file was not quarantined")
	}
	if len(runner.issues) != 0 {
		t.Error("pipeline ran on invalid file")
	}
}
