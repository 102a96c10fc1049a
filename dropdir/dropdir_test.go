package dropdir

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"SpectraFM/registry"
	"SpectraFM/storage"
)

type fakeProber struct{}

func (fakeProber) Probe(filename string, data []byte) (registry.Meta, error) {
	return registry.Meta{Title: filename, Duration: 60}, nil
}

type noticeLog struct {
	mu   sync.Mutex
	msgs []string
}

func (n *noticeLog) notify(level, msg string) {
	n.mu.Lock()
	n.msgs = append(n.msgs, msg)
	n.mu.Unlock()
}

func (n *noticeLog) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting: %s", msg)
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestDroppedMP3IsRegistered(t *testing.T) {
	dir := t.TempDir()
	reg := registry.New(storage.NewMemoryStore(), fakeProber{})

	w, err := New(dir, reg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	var added sync.WaitGroup
	added.Add(1)
	w.OnAdded(func() { added.Done() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(dir, "drop.mp3"), []byte("mp3bytes"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	waitFor(t, func() bool { return reg.Count() == 1 }, "dropped file registered")
	added.Wait()

	list := reg.List()
	if list[0].Name != "drop.mp3" {
		t.Errorf("registered name = %q, want drop.mp3", list[0].Name)
	}
}

func TestDroppedNonMP3IsIgnoredWithNotice(t *testing.T) {
	dir := t.TempDir()
	reg := registry.New(storage.NewMemoryStore(), fakeProber{})
	var notices noticeLog

	w, err := New(dir, reg, notices.notify)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	waitFor(t, func() bool { return notices.count() == 1 }, "ignore notice")
	if reg.Count() != 0 {
		t.Errorf("non-MP3 drop registered %d tracks", reg.Count())
	}
}

func TestNewCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "drop")
	reg := registry.New(storage.NewMemoryStore(), fakeProber{})

	w, err := New(dir, reg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("drop directory was not created: %v", err)
	}
}

func TestCloseStopsRun(t *testing.T) {
	dir := t.TempDir()
	reg := registry.New(storage.NewMemoryStore(), fakeProber{})

	w, err := New(dir, reg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan struct{})
	go func() {
		w.Run(context.Background())
		close(done)
	}()

	w.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after Close")
	}
}
