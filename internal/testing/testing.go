// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/plcopy/internal/services"
)

// MockService is a test double for [services.PlaylistService].
//
// Items is the source sequence returned by ListPlaylistItems. InsertErrs maps a video ID to the error its insertion returns.
type MockService struct {
	Items      []services.PlaylistItem
	ListErr    error
	InsertErrs map[string]error

	mu       sync.Mutex
	inserted []string
	attempts []string
}

var _ services.PlaylistService = (*MockService)(nil)

// NewMockService returns a service whose source playlist holds the given video IDs in order.
func NewMockService(videoIDs ...string) *MockService {
	items := make([]services.PlaylistItem, len(videoIDs))
	for i, id := range videoIDs {
		items[i] = services.PlaylistItem{ID: "item-" + id, VideoID: id, Position: i}
	}
	return &MockService{Items: items, InsertErrs: map[string]error{}}
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) ListPlaylistItems(ctx context.Context, playlistID string) ([]services.PlaylistItem, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Items, nil
}

func (m *MockService) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts = append(m.attempts, videoID)
	if err := m.InsertErrs[videoID]; err != nil {
		return err
	}
	m.inserted = append(m.inserted, videoID)
	return nil
}

// Attempts returns every video ID passed to InsertPlaylistItem, in call order.
func (m *MockService) Attempts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.attempts...)
}

// Inserted returns the video IDs whose insertion succeeded.
func (m *MockService) Inserted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.inserted...)
}

// MemoryStore is an in-memory checkpoint store that records every write.
type MemoryStore struct {
	ReadErr  error
	WriteErr error
	ClearErr error

	mu      sync.Mutex
	id      string
	ok      bool
	writes  []string
	cleared int
}

// NewMemoryStore returns a store seeded with id; an empty id means no checkpoint.
func NewMemoryStore(id string) *MemoryStore {
	return &MemoryStore{id: id, ok: id != ""}
}

func (s *MemoryStore) Read(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return "", false, s.ReadErr
	}
	return s.id, s.ok, nil
}

func (s *MemoryStore) Write(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.id, s.ok = id, true
	s.writes = append(s.writes, id)
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.id, s.ok = "", false
	s.cleared++
	return nil
}

// Current returns the stored identifier and whether one is present.
func (s *MemoryStore) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, s.ok
}

// Writes returns every identifier written, in order.
func (s *MemoryStore) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

// Cleared reports how many times Clear succeeded.
func (s *MemoryStore) Cleared() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("File should not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
