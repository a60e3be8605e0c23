package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogotex/docstore/internal/document"
	"github.com/gogotex/docstore/internal/document/repository"
	"github.com/gogotex/docstore/pkg/logger"
	"github.com/gogotex/docstore/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidDocument = errors.New("invalid document")
)

// Service defines the document operations used by the handler layer.
type Service interface {
	Save(ctx context.Context, d *document.Document) (*document.Document, error)
	Get(ctx context.Context, id string) (*document.Document, error)
	Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error)
	Count(ctx context.Context) (int64, error)
	Backend() string
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService() Service {
	return New(repository.NewMemoryRepo())
}

// NewMongoService returns a Service backed by a MongoDB collection.
// Caller is responsible for creating the collection (and client) and passing it in.
func NewMongoService(col *mongo.Collection) Service {
	return New(repository.NewMongoRepo(col))
}

// NewRedisService returns a Service backed by Redis keys under prefix.
func NewRedisService(client *redis.Client, prefix string) Service {
	return New(repository.NewRedisRepo(client, prefix))
}

// New wraps any repository with logging and metrics.
func New(repo repository.Repository) Service {
	return &documentService{repo: repo}
}

type documentService struct {
	repo repository.Repository
}

func (s *documentService) Backend() string { return s.repo.Name() }

func (s *documentService) Save(ctx context.Context, d *document.Document) (*document.Document, error) {
	if d == nil {
		return nil, ErrInvalidDocument
	}
	outcome := "upserted"
	if d.ID == "" {
		outcome = "created"
	}
	saved, err := s.repo.Save(ctx, d)
	if err != nil {
		s.fail("save", err)
		if errors.Is(err, repository.ErrNilDocument) {
			return nil, ErrInvalidDocument
		}
		return nil, fmt.Errorf("save document: %w", err)
	}
	metrics.DocumentsSaved.WithLabelValues(s.repo.Name(), outcome).Inc()
	logger.Debugf("document %s %s (backend=%s)", saved.ID, outcome, s.repo.Name())
	return saved, nil
}

func (s *documentService) Get(ctx context.Context, id string) (*document.Document, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.DocumentLookups.WithLabelValues(s.repo.Name(), "miss").Inc()
			return nil, ErrNotFound
		}
		s.fail("get", err)
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	metrics.DocumentLookups.WithLabelValues(s.repo.Name(), "hit").Inc()
	return d, nil
}

func (s *documentService) Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error) {
	docs, err := s.repo.Search(ctx, req)
	if err != nil {
		s.fail("search", err)
		return nil, fmt.Errorf("search documents: %w", err)
	}
	metrics.SearchResults.WithLabelValues(s.repo.Name()).Observe(float64(len(docs)))
	logger.Debugf("search matched %d documents (backend=%s)", len(docs), s.repo.Name())
	return docs, nil
}

func (s *documentService) Count(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		s.fail("count", err)
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func (s *documentService) fail(op string, err error) {
	metrics.BackendErrors.WithLabelValues(s.repo.Name(), op).Inc()
	logger.Errorf("%s failed (backend=%s): %v", op, s.repo.Name(), err)
}
