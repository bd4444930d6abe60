package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bnema/segbench/internal/domain"
	"github.com/bnema/segbench/internal/port"
)

const fileName = "runs.json"

// Store keeps run history in a single JSON file, rewritten atomically on every save.
type Store struct {
	mu   sync.RWMutex
	path string
	runs map[string]*domain.Run
}

func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}

	store := &Store{
		path: filepath.Join(dataDir, fileName),
		runs: make(map[string]*domain.Run),
	}

	if err := store.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return store, nil
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	if len(data) == 0 {
		return nil
	}

	var runList []*domain.Run
	if err := json.Unmarshal(data, &runList); err != nil {
		return err
	}

	for _, r := range runList {
		s.runs[r.ID] = r
	}

	return nil
}

func (s *Store) save() error {
	tmpPath := s.path + ".tmp"

	data, err := json.MarshalIndent(s.sorted(), "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}

	return os.Rename(tmpPath, s.path)
}

// sorted returns every run, newest first. Callers hold the lock.
func (s *Store) sorted() []*domain.Run {
	runList := make([]*domain.Run, 0, len(s.runs))
	for _, r := range s.runs {
		runList = append(runList, r)
	}
	sort.Slice(runList, func(i, j int) bool {
		return runList[i].StartedAt.After(runList[j].StartedAt)
	})
	return runList
}

// Save stores a snapshot of r; later changes to r need another Save.
func (s *Store) Save(r *domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := *r
	snapshot.Mismatches = append([]int(nil), r.Mismatches...)
	s.runs[r.ID] = &snapshot
	return s.save()
}

func (s *Store) Get(id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return r, nil
}

func (s *Store) List(limit int) ([]*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runList := s.sorted()
	if limit > 0 && len(runList) > limit {
		runList = runList[:limit]
	}
	return runList, nil
}

func (s *Store) Close() error {
	return nil
}

var _ port.RunStore = (*Store)(nil)
