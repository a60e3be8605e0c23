package document

import "strconv"

// Manager keeps documents in memory, keyed by id.
//
// Every document that goes in or comes out is copied, so callers never share
// memory with the stored state. Manager does no locking; callers that need
// concurrent access wrap it (see repository.MemoryRepo).
type Manager struct {
	docs   map[string]*Document
	nextID int64
}

// NewManager returns an empty Manager whose first generated id is "1".
func NewManager() *Manager {
	return &Manager{docs: make(map[string]*Document), nextID: 1}
}

// Save upserts d. When d has no id a new one is generated and written back
// onto d. Created is never touched. The returned value is d itself.
func (m *Manager) Save(d *Document) *Document {
	if d == nil {
		return nil
	}
	if d.ID == "" {
		stored := d.Clone()
		stored.ID = m.generateID()
		m.docs[stored.ID] = stored
		d.ID = stored.ID
		return d
	}
	m.docs[d.ID] = d.Clone()
	return d
}

// FindByID returns a copy of the document stored under id.
func (m *Manager) FindByID(id string) (*Document, bool) {
	d, ok := m.docs[id]
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// Search returns copies of all documents matching req, in no particular order.
func (m *Manager) Search(req SearchRequest) []*Document {
	out := make([]*Document, 0)
	for _, d := range m.docs {
		if req.Matches(d) {
			out = append(out, d.Clone())
		}
	}
	return out
}

// Len returns the number of stored documents.
func (m *Manager) Len() int {
	return len(m.docs)
}

func (m *Manager) generateID() string {
	id := strconv.FormatInt(m.nextID, 10)
	m.nextID++
	return id
}
