// Package docstore keeps documents in memory for the HTTP server.
package docstore

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("document not found")
	ErrEmptyID  = errors.New("document id is empty")
)

// Doc is one stored document.
type Doc struct {
	ID       string
	Markdown string
	Created  time.Time
	Updated  time.Time
}

// Store is a concurrency-safe in-memory document store.
type Store struct {
	mu   sync.RWMutex
	docs map[string]Doc
	now  func() time.Time
}

// New creates an empty Store.
func New() *Store {
	return &Store{docs: make(map[string]Doc), now: time.Now}
}

// Create stores markdown under a new random ID.
func (s *Store) Create(markdown string) Doc {
	now := s.now()
	d := Doc{ID: uuid.New().String(), Markdown: markdown, Created: now, Updated: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.ID] = d
	return d
}

// Put creates or replaces the document with id.
func (s *Store) Put(id, markdown string) (Doc, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Doc{}, ErrEmptyID
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.docs[id]
	if !ok {
		d = Doc{ID: id, Created: now}
	}
	d.Markdown = markdown
	d.Updated = now
	s.docs[id] = d
	return d, nil
}

// Get returns the document with id.
func (s *Store) Get(id string) (Doc, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Doc{}, ErrEmptyID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return Doc{}, ErrNotFound
	}
	return d, nil
}

// List returns every document, oldest first.
func (s *Store) List() []Doc {
	s.mu.RLock()
	out := make([]Doc, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Doc) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
