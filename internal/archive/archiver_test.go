package archive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type memoryStorage struct {
	mu    sync.Mutex
	saved map[string]string
	err   error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{saved: make(map[string]string)}
}

func (s *memoryStorage) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.saved[name] = string(data)
	s.mu.Unlock()
	return "https://cdn.example.com/" + name, nil
}

type recordingUpdater struct {
	mu       sync.Mutex
	ready    map[string]string
	readyLen map[string]int64
	failed   map[string]int
	done     chan struct{}
}

func newRecordingUpdater() *recordingUpdater {
	return &recordingUpdater{
		ready:    make(map[string]string),
		readyLen: make(map[string]int64),
		failed:   make(map[string]int),
		done:     make(chan struct{}, 8),
	}
}

func (u *recordingUpdater) MarkArchiveReady(_ context.Context, id, location string, size int64) error {
	u.mu.Lock()
	u.ready[id] = location
	u.readyLen[id] = size
	u.mu.Unlock()
	u.done <- struct{}{}
	return nil
}

func (u *recordingUpdater) MarkArchiveFailed(_ context.Context, id string) error {
	u.mu.Lock()
	u.failed[id]++
	u.mu.Unlock()
	u.done <- struct{}{}
	return nil
}

func waitDone(t *testing.T, u *recordingUpdater) {
	t.Helper()
	select {
	case <-u.done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for archive outcome")
	}
}

func TestArchiverStoresRender(t *testing.T) {
	const payload = "fake-mp4-bytes"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, payload)
	}))
	defer server.Close()

	storage := newMemoryStorage()
	updater := newRecordingUpdater()
	archiver := NewArchiver(storage, updater, Config{Workers: 1}, nil)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = archiver.Shutdown(ctx)
	}()

	if err := archiver.Enqueue(context.Background(), "vid-1", server.URL+"/final.mp4"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitDone(t, updater)

	updater.mu.Lock()
	defer updater.mu.Unlock()
	location, ok := updater.ready["vid-1"]
	if !ok {
		t.Fatalf("expected ready mark, got failures %v", updater.failed)
	}
	if !strings.Contains(location, "vid-1/final.mp4") {
		t.Fatalf("unexpected location %q", location)
	}
	if updater.readyLen["vid-1"] != int64(len(payload)) {
		t.Fatalf("expected size %d, got %d", len(payload), updater.readyLen["vid-1"])
	}

	storage.mu.Lock()
	defer storage.mu.Unlock()
	if storage.saved["vid-1/final.mp4"] != payload {
		t.Fatalf("unexpected stored payload %q", storage.saved["vid-1/final.mp4"])
	}
}

func TestArchiverMarksFailureOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	updater := newRecordingUpdater()
	archiver := NewArchiver(newMemoryStorage(), updater, Config{Workers: 1}, nil)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = archiver.Shutdown(ctx)
	}()

	if err := archiver.Enqueue(context.Background(), "vid-2", server.URL+"/missing.mp4"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitDone(t, updater)

	updater.mu.Lock()
	defer updater.mu.Unlock()
	if updater.failed["vid-2"] == 0 {
		t.Fatal("expected failure mark")
	}
}

func TestArchiverMarksFailureOnStorageError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "bytes")
	}))
	defer server.Close()

	storage := newMemoryStorage()
	storage.err = errors.New("bucket unavailable")
	updater := newRecordingUpdater()
	archiver := NewArchiver(storage, updater, Config{Workers: 1}, nil)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = archiver.Shutdown(ctx)
	}()

	if err := archiver.Enqueue(context.Background(), "vid-3", server.URL+"/x.mp4"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	waitDone(t, updater)

	updater.mu.Lock()
	defer updater.mu.Unlock()
	if updater.failed["vid-3"] == 0 {
		t.Fatal("expected failure mark")
	}
}

func TestArchiverEnqueueAfterShutdown(t *testing.T) {
	archiver := NewArchiver(newMemoryStorage(), newRecordingUpdater(), Config{Workers: 1}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := archiver.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if err := archiver.Enqueue(context.Background(), "vid-4", "https://example.com/x.mp4"); err == nil {
		t.Fatal("expected error enqueueing after shutdown")
	}
}

func TestArchiverShutdownDrainsQueuedJobs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "bytes")
	}))
	defer server.Close()

	storage := newMemoryStorage()
	updater := newRecordingUpdater()
	archiver := NewArchiver(storage, updater, Config{Workers: 1, QueueSize: 8}, nil)

	for i := 0; i < 4; i++ {
		id := "vid-" + string(rune('a'+i))
		if err := archiver.Enqueue(context.Background(), id, server.URL+"/"+id+".mp4"); err != nil {
			t.Fatalf("enqueue %s: %v", id, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archiver.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	updater.mu.Lock()
	defer updater.mu.Unlock()
	if len(updater.ready) != 4 {
		t.Fatalf("expected all queued jobs archived before exit, got %d", len(updater.ready))
	}
}

func TestArchiverEnqueueRacesShutdownSafely(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	archiver := NewArchiver(newMemoryStorage(), newRecordingUpdater(), Config{Workers: 1, QueueSize: 1}, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = archiver.Enqueue(context.Background(), "vid-race", server.URL+"/x.mp4")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := archiver.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	wg.Wait()

	if err := archiver.Enqueue(context.Background(), "vid-race", server.URL+"/x.mp4"); !errors.Is(err, errArchiverClosed) {
		t.Fatalf("expected errArchiverClosed, got %v", err)
	}
}

func TestFileNameForURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://cdn.example.com/renders/final.mp4", "final.mp4"},
		{"https://cdn.example.com/renders/final.mp4?token=abc", "final.mp4"},
		{"https://cdn.example.com/", "render.mp4"},
	}
	for _, tc := range cases {
		if got := fileNameForURL(tc.in); got != tc.want {
			t.Fatalf("fileNameForURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
