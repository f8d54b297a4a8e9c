package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recordingInjector struct {
	mu   sync.Mutex
	libs map[string]string
	ch   chan string
	err  error
}

func newRecordingInjector() *recordingInjector {
	return &recordingInjector{
		libs: make(map[string]string),
		ch:   make(chan string, 16),
	}
}

func (r *recordingInjector) InjectLibrary(_ context.Context, name, source string) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	r.libs[name] = source
	r.mu.Unlock()
	r.ch <- name
	return nil
}

func (r *recordingInjector) get(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.libs[name]
	return s, ok
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, ch <-chan string, name string) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == name {
				return
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %s", name)
		}
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "stdlib.d.ts"), "declare const a: number;")
	writeFile(t, filepath.Join(dir, "ton", "cells.d.ts"), "declare class Cell {}")
	writeFile(t, filepath.Join(dir, "index.ts"), "export {}")

	inj := newRecordingInjector()
	w := New(dir, inj)

	n, err := w.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 2 {
		t.Errorf("Scan injected %d files, want 2", n)
	}

	if src, ok := inj.get("stdlib.d.ts"); !ok || src != "declare const a: number;" {
		t.Errorf("stdlib.d.ts = %q, %v", src, ok)
	}
	if _, ok := inj.get("ton/cells.d.ts"); !ok {
		t.Error("nested library not injected")
	}
	if _, ok := inj.get("index.ts"); ok {
		t.Error("non-declaration file injected")
	}
	if w.Injected() != 2 {
		t.Errorf("Injected() = %d, want 2", w.Injected())
	}
}

func TestScanInjectFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.d.ts"), "")

	inj := newRecordingInjector()
	inj.err = errors.New("engine unavailable")
	w := New(dir, inj)

	n, err := w.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if n != 0 {
		t.Errorf("Scan = %d, want 0", n)
	}
	if w.Failures() != 1 {
		t.Errorf("Failures() = %d, want 1", w.Failures())
	}
}

func TestScanBadDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.d.ts")
	writeFile(t, file, "")

	if _, err := New(filepath.Join(dir, "missing"), newRecordingInjector()).Scan(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing dir err = %v, want os.ErrNotExist", err)
	}
	if _, err := New(file, newRecordingInjector()).Scan(context.Background()); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("file err = %v, want ErrNotDirectory", err)
	}
}

func TestStartInjectsChanges(t *testing.T) {
	dir := t.TempDir()
	inj := newRecordingInjector()
	w := New(dir, inj, WithDelay(10*time.Millisecond))
	defer w.Close()

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	writeFile(t, filepath.Join(dir, "new.d.ts"), "declare const v: 1;")
	waitFor(t, inj.ch, "new.d.ts")

	writeFile(t, filepath.Join(dir, "new.d.ts"), "declare const v: 2;")

	// A late event from the first write may inject the old content first.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if src, _ := inj.get("new.d.ts"); src == "declare const v: 2;" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("rewritten file was not injected")
		}
		waitFor(t, inj.ch, "new.d.ts")
	}
}

func TestCloseIdempotent(t *testing.T) {
	w := New(t.TempDir(), newRecordingInjector())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if err := w.Start(context.Background()); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Start after Close err = %v, want ErrWatcherClosed", err)
	}
}

type blockingInjector struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingInjector) InjectLibrary(_ context.Context, _, _ string) error {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return nil
}

func TestCloseWaitsForRunningInjection(t *testing.T) {
	dir := t.TempDir()
	inj := &blockingInjector{started: make(chan struct{}), release: make(chan struct{})}
	w := New(dir, inj, WithDelay(10*time.Millisecond))

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	writeFile(t, filepath.Join(dir, "slow.d.ts"), "declare const s: 1;")

	select {
	case <-inj.started:
	case <-time.After(5 * time.Second):
		t.Fatal("injection never started")
	}

	closed := make(chan error, 1)
	go func() { closed <- w.Close() }()

	select {
	case <-closed:
		t.Fatal("Close returned while an injection was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(inj.release)
	select {
	case err := <-closed:
		if err != nil {
			t.Errorf("Close: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the injection finished")
	}

	if got := w.Injected(); got < 1 {
		t.Errorf("Injected() = %d after Close, want the running injection counted", got)
	}
}
