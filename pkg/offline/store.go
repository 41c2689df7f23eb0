// Package offline keeps a Go client usable without connectivity: reads fall
// back to cached responses and writes are queued until Flush replays them.
package offline

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StorageKey names the entry holding the cache and write queue.
const StorageKey = "finance-io-offline-data"

type CachedResponse struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	StoredAt   time.Time   `json:"stored_at"`
}

// QueuedRequest is a write that could not reach the server.
// ID doubles as the Idempotency-Key sent on every attempt.
type QueuedRequest struct {
	ID       string      `json:"id"`
	Method   string      `json:"method"`
	URL      string      `json:"url"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	QueuedAt time.Time   `json:"queued_at"`
}

type Data struct {
	Cache map[string]CachedResponse `json:"cache"`
	Queue []QueuedRequest           `json:"queue"`
}

// FileStore is a JSON key-value file; only StorageKey is used.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is ~/.finance-io/offline.json, or the working directory
// when no home directory is known.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "finance-io-offline.json"
	}
	return filepath.Join(home, ".finance-io", "offline.json")
}

func (s *FileStore) Load() (Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Update applies fn to the stored data and writes it back unless fn fails.
func (s *FileStore) Update(fn func(*Data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(&d); err != nil {
		return err
	}
	return s.save(d)
}

func (s *FileStore) load() (Data, error) {
	d := Data{Cache: map[string]CachedResponse{}}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return d, fmt.Errorf("error reading offline store: %w", err)
	}

	kv := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &kv); err != nil {
			return d, fmt.Errorf("error decoding offline store: %w", err)
		}
	}
	if entry, ok := kv[StorageKey]; ok {
		if err := json.Unmarshal(entry, &d); err != nil {
			return d, fmt.Errorf("error decoding %s: %w", StorageKey, err)
		}
	}
	if d.Cache == nil {
		d.Cache = map[string]CachedResponse{}
	}
	return d, nil
}

// save rewrites the file atomically, keeping unrelated keys intact.
func (s *FileStore) save(d Data) error {
	kv := map[string]json.RawMessage{}
	if raw, err := os.ReadFile(s.path); err == nil && len(raw) > 0 {
		_ = json.Unmarshal(raw, &kv)
	}

	entry, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("error encoding offline data: %w", err)
	}
	kv[StorageKey] = entry

	out, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding offline store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("error creating offline store dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("error writing offline store: %w", err)
	}
	return os.Rename(tmp, s.path)
}
