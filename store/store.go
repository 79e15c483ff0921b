package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// Entity is any record keyed by a unique string id.
type Entity interface {
	EntityID() string
}

var idSuffixRE = regexp.MustCompile(`-(\d+)$`)

// Store is a file-backed collection for one entity family. All state lives
// in memory; every mutation rewrites the whole JSON document through an
// atomic temp-file rename. Reads and writes fail open: a broken file loads
// as empty, a failed write is logged and the in-memory state stays
// authoritative for the rest of the process lifetime.
type Store[T Entity] struct {
	mu       sync.Mutex
	filePath string
	seedPath string
	log      *zap.Logger

	items    map[string]T
	order    []string
	nextID   int
	degraded bool
}

// New creates a store for the given live document. seedPath may be empty
// when the family has no read-only baseline.
func New[T Entity](filePath, seedPath string, log *zap.Logger) *Store[T] {
	return &Store[T]{
		filePath: filePath,
		seedPath: seedPath,
		log:      log,
		items:    make(map[string]T),
		nextID:   1,
	}
}

// Load merges the seed document under the persisted document. Persisted
// values replace seed values wholesale for a duplicate id, but keep the
// seed's position in the collection order. The next-id counter is
// recomputed from the maximum numeric suffix found, so ids survive a
// process restart without colliding.
func (s *Store[T]) Load() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]T)
	s.order = nil

	seed := s.readFile(s.seedPath)
	if len(seed) > 0 {
		s.log.Info("loaded seed entities",
			zap.String("file", s.seedPath), zap.Int("count", len(seed)))
	}
	for _, e := range seed {
		s.insertLocked(e)
	}

	persisted := s.readFile(s.filePath)
	if len(persisted) > 0 {
		s.log.Info("loaded persisted entities",
			zap.String("file", s.filePath), zap.Int("count", len(persisted)))
	}
	for _, e := range persisted {
		s.insertLocked(e)
	}

	s.nextID = s.maxSuffixLocked() + 1
}

func (s *Store[T]) insertLocked(e T) {
	id := e.EntityID()
	if id == "" {
		return
	}
	if _, ok := s.items[id]; !ok {
		s.order = append(s.order, id)
	}
	s.items[id] = e
}

func (s *Store[T]) maxSuffixLocked() int {
	max := 0
	for _, id := range s.order {
		m := idSuffixRE.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max
}

// readFile returns the entities in a JSON document, or nil when the file is
// missing or unreadable. Never fatal.
func (s *Store[T]) readFile(path string) []T {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Error("failed to read entity file",
				zap.String("file", path), zap.Error(err))
		}
		return nil
	}
	var entities []T
	if err := json.Unmarshal(data, &entities); err != nil {
		s.log.Error("failed to parse entity file",
			zap.String("file", path), zap.Error(err))
		return nil
	}
	return entities
}

// GetAll returns every entity in collection order.
func (s *Store[T]) GetAll() []T {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}

// GetByID returns the entity for id, reporting whether it exists.
func (s *Store[T]) GetByID(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	return e, ok
}

// Create inserts or overwrites by id and persists the collection.
func (s *Store[T]) Create(e T) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertLocked(e)
	s.persistLocked()
	return e
}

// Update applies mutate to the entity under the store lock and persists the
// result. Callers apply only the fields present in their patch; absent
// fields stay untouched. Returns false when the id does not exist.
func (s *Store[T]) Update(id string, mutate func(*T)) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	mutate(&e)
	s.items[id] = e
	s.persistLocked()
	return e, true
}

// Delete removes by id, persisting only when something was removed.
func (s *Store[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.persistLocked()
	return true
}

// NextID hands out the next numeric id suffix for this family. The counter
// is monotonic in memory and never re-derived from storage after Load.
func (s *Store[T]) NextID() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	return id
}

// Degraded reports whether a persistence write has failed since startup.
// Mutating operations still report success to callers when this is set; the
// in-memory state is authoritative.
func (s *Store[T]) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.degraded
}

// persistLocked serializes the collection and replaces the live document via
// temp file + rename. Failures are logged and swallowed.
func (s *Store[T]) persistLocked() {
	entities := make([]T, 0, len(s.order))
	for _, id := range s.order {
		entities = append(entities, s.items[id])
	}

	data, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		s.writeFailedLocked(err)
		return
	}

	if dir := filepath.Dir(s.filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			s.writeFailedLocked(err)
			return
		}
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.writeFailedLocked(err)
		return
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		s.writeFailedLocked(err)
		return
	}
	s.log.Debug("persisted entities",
		zap.String("file", s.filePath), zap.Int("count", len(entities)))
}

func (s *Store[T]) writeFailedLocked(err error) {
	s.degraded = true
	s.log.Error("failed to persist entities, continuing with in-memory state",
		zap.String("file", s.filePath), zap.Error(err))
}
