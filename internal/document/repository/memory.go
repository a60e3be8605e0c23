package repository

import (
	"context"
	"sync"

	"github.com/gogotex/docstore/internal/document"
)

var _ Repository = (*MemoryRepo)(nil)

// MemoryRepo guards a document.Manager with a RWMutex so it can be shared
// between request goroutines. It is the default backend.
type MemoryRepo struct {
	mu  sync.RWMutex
	mgr *document.Manager
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{mgr: document.NewManager()}
}

func (m *MemoryRepo) Name() string { return "memory" }

func (m *MemoryRepo) Save(_ context.Context, d *document.Document) (*document.Document, error) {
	if d == nil {
		return nil, ErrNilDocument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mgr.Save(d), nil
}

func (m *MemoryRepo) FindByID(_ context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.mgr.FindByID(id); ok {
		return d, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) Search(_ context.Context, req document.SearchRequest) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mgr.Search(req), nil
}

func (m *MemoryRepo) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(m.mgr.Len()), nil
}
