// Package store persists editor documents and serves them over HTTP.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no document has the requested id
var ErrNotFound = errors.New("document not found")

// Document is a stored editor document. Content holds the editor's JSON
// content unchanged.
type Document struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store saves and loads documents
type Store interface {
	// Save creates the document when its id is empty and updates it
	// otherwise. It returns the stored document with timestamps set.
	Save(ctx context.Context, d Document) (Document, error)
	Load(ctx context.Context, id string) (Document, error)
}

// now is replaced in tests
var now = func() time.Time { return time.Now().UTC() }

// stamp fills id and timestamps for a save over prev
func stamp(d Document, prev *Document) Document {
	t := now()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if prev != nil {
		d.CreatedAt = prev.CreatedAt
	} else {
		d.CreatedAt = t
	}
	d.UpdatedAt = t
	if len(d.Content) == 0 {
		d.Content = json.RawMessage("null")
	}
	return d
}

// MemoryStore keeps documents in memory
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

func (s *MemoryStore) Save(ctx context.Context, d Document) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var prev *Document
	if d.ID != "" {
		p, ok := s.docs[d.ID]
		if !ok {
			return Document{}, ErrNotFound
		}
		prev = &p
	}
	d = stamp(d, prev)
	s.docs[d.ID] = d
	return d, nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return d, nil
}
