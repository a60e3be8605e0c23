package repository

import (
	"context"
	"errors"

	"github.com/gogotex/docstore/internal/document"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrNilDocument = errors.New("nil document")
)

// Repository is the storage contract shared by the memory, Mongo and Redis
// backends. Save follows upsert semantics and writes a generated id back onto
// the argument; FindByID returns ErrNotFound for unknown ids.
type Repository interface {
	Save(ctx context.Context, d *document.Document) (*document.Document, error)
	FindByID(ctx context.Context, id string) (*document.Document, error)
	Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error)
	Count(ctx context.Context) (int64, error)
	Name() string
}
