package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"yt-clipper/internal/logging"
)

// State is the persisted batch record. Counter is the next index to
// hand out (always >= 1); LastReset is the epoch time of the most
// recent reset (0 before the first one, so pre-existing files count as
// part of the current batch).
type State struct {
	Counter   int     `json:"counter"`
	LastReset float64 `json:"last_reset"`
}

// Store owns the batch state file. It is safe for concurrent use; the
// lock spans every read-modify-write so reserved indices are strictly
// increasing and gap-free.
type Store struct {
	mu   sync.Mutex
	path string

	now func() time.Time
}

// NewStore creates a store backed by the given state file. The file is
// created lazily on the first write.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

func defaultState() State {
	return State{Counter: 1, LastReset: 0}
}

// read loads the persisted state, substituting the default on any
// failure. Corruption is logged but never propagated.
func (s *Store) read() State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn("batch state unreadable, using defaults: %v", err)
		}
		return defaultState()
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		logging.Warn("batch state corrupt, using defaults: %v", err)
		return defaultState()
	}
	if st.Counter < 1 {
		st.Counter = 1
	}
	if st.LastReset < 0 {
		st.LastReset = 0
	}
	return st
}

// write persists the state atomically: same-directory temp file, fsync,
// then rename over the target.
func (s *Store) write(st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

// Reserve returns the current counter and persists counter+1. It never
// fails the caller: if the persist step errors, the index is still
// returned and the problem is logged, matching the read path's
// tolerance for a broken state file.
func (s *Store) Reserve() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.read()
	idx := st.Counter
	st.Counter = idx + 1
	if err := s.write(st); err != nil {
		logging.Error("failed to persist batch counter: %v", err)
	}
	return idx
}

// Reset sets the counter back to 1 and stamps LastReset with the
// current time, returning the new state.
func (s *Store) Reset() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Counter:   1,
		LastReset: float64(s.now().UnixNano()) / float64(time.Second),
	}
	if err := s.write(st); err != nil {
		logging.Error("failed to persist batch reset: %v", err)
	}
	return st
}

// Status returns a snapshot of the persisted state using the same
// corruption-tolerant read path as Reserve.
func (s *Store) Status() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}
