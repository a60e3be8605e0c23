package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gogotex/docstore/internal/document"
	"github.com/redis/go-redis/v9"
)

var _ Repository = (*RedisRepo)(nil)

// hash fields of a stored document
const (
	fieldTitle      = "title"
	fieldContent    = "content"
	fieldAuthorID   = "author_id"
	fieldAuthorName = "author_name"
	fieldCreated    = "created"
)

// RedisRepo stores each document as a hash under "<prefix>doc:<id>".
// The set "<prefix>ids" tracks stored ids and "<prefix>seq" is the id counter.
// Hash values are raw bytes, so strings come back exactly as saved.
// Search loads every document and filters in process, like the memory store.
type RedisRepo struct {
	client *redis.Client
	prefix string
}

// NewRedisRepo creates a Redis-backed repository. Prefix may be empty.
func NewRedisRepo(client *redis.Client, prefix string) *RedisRepo {
	if prefix == "" {
		prefix = "docstore:"
	}
	return &RedisRepo{client: client, prefix: prefix}
}

func (r *RedisRepo) Name() string { return "redis" }

func (r *RedisRepo) docKey(id string) string { return r.prefix + "doc:" + id }
func (r *RedisRepo) idsKey() string          { return r.prefix + "ids" }
func (r *RedisRepo) seqKey() string          { return r.prefix + "seq" }

func (r *RedisRepo) Save(ctx context.Context, d *document.Document) (*document.Document, error) {
	if d == nil {
		return nil, ErrNilDocument
	}
	stored := d.Clone()
	if stored.ID == "" {
		// INCR on a missing key yields 1
		n, err := r.client.Incr(ctx, r.seqKey()).Result()
		if err != nil {
			return nil, fmt.Errorf("next document id: %w", err)
		}
		stored.ID = strconv.FormatInt(n, 10)
	}
	fields, err := toHash(stored)
	if err != nil {
		return nil, err
	}
	key := r.docKey(stored.ID)
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		// drop fields of the previous version, e.g. a removed author
		p.Del(ctx, key)
		p.HSet(ctx, key, fields)
		p.SAdd(ctx, r.idsKey(), stored.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("save document %s: %w", stored.ID, err)
	}
	d.ID = stored.ID
	return d, nil
}

func (r *RedisRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
	h, err := r.client.HGetAll(ctx, r.docKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, ErrNotFound
	}
	return fromHash(id, h)
}

func (r *RedisRepo) Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error) {
	out := []*document.Document{}
	ids, err := r.client.SMembers(ctx, r.idsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list document ids: %w", err)
	}
	if len(ids) == 0 {
		return out, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = p.HGetAll(ctx, r.docKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	for i, cmd := range cmds {
		h := cmd.Val()
		if len(h) == 0 {
			continue
		}
		d, err := fromHash(ids[i], h)
		if err != nil {
			return nil, err
		}
		if req.Matches(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *RedisRepo) Count(ctx context.Context) (int64, error) {
	return r.client.SCard(ctx, r.idsKey()).Result()
}

// toHash flattens d into hash fields. Author fields are written only for a
// non-nil author and created only for a non-zero time, so their absence
// round-trips as nil and zero.
func toHash(d *document.Document) (map[string]interface{}, error) {
	fields := map[string]interface{}{
		fieldTitle:   d.Title,
		fieldContent: d.Content,
	}
	if d.Author != nil {
		fields[fieldAuthorID] = d.Author.ID
		fields[fieldAuthorName] = d.Author.Name
	}
	if !d.Created.IsZero() {
		b, err := d.Created.MarshalText()
		if err != nil {
			return nil, fmt.Errorf("encode created of %s: %w", d.ID, err)
		}
		fields[fieldCreated] = string(b)
	}
	return fields, nil
}

func fromHash(id string, h map[string]string) (*document.Document, error) {
	d := &document.Document{
		ID:      id,
		Title:   h[fieldTitle],
		Content: h[fieldContent],
	}
	if authorID, ok := h[fieldAuthorID]; ok {
		d.Author = &document.Author{ID: authorID, Name: h[fieldAuthorName]}
	}
	if v, ok := h[fieldCreated]; ok {
		var t time.Time
		if err := t.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("decode created of %s: %w", id, err)
		}
		d.Created = t
	}
	return d, nil
}
