package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/gogotex/docstore/internal/document"
	"github.com/gogotex/docstore/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ Repository = (*MongoRepo)(nil)

// indexTimeout bounds index creation in NewMongoRepo.
var indexTimeout = 10 * time.Second

// MongoRepo stores documents in a Mongo collection keyed by _id.
// Generated ids come from a sequence document in the "counters" collection of
// the same database, so they keep the "1", "2", ... shape of the memory store.
type MongoRepo struct {
	col      *mongo.Collection
	counters *mongo.Collection
	seqKey   string
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	// title prefix searches are anchored regexes and can use this index
	idx := mongo.IndexModel{Keys: bson.D{{Key: "title", Value: 1}}}
	ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
	defer cancel()
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		logger.Warnf("create title index on %s: %v", col.Name(), err)
	}
	return &MongoRepo{
		col:      col,
		counters: col.Database().Collection("counters"),
		seqKey:   col.Name(),
	}
}

func (m *MongoRepo) Name() string { return "mongo" }

func (m *MongoRepo) Save(ctx context.Context, d *document.Document) (*document.Document, error) {
	if d == nil {
		return nil, ErrNilDocument
	}
	stored := d.Clone()
	if stored.ID == "" {
		id, err := m.nextID(ctx)
		if err != nil {
			return nil, err
		}
		stored.ID = id
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.col.ReplaceOne(ctx, bson.M{"_id": stored.ID}, stored, opts); err != nil {
		return nil, fmt.Errorf("save document %s: %w", stored.ID, err)
	}
	d.ID = stored.ID
	return d, nil
}

func (m *MongoRepo) FindByID(ctx context.Context, id string) (*document.Document, error) {
	var d document.Document
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (m *MongoRepo) Search(ctx context.Context, req document.SearchRequest) ([]*document.Document, error) {
	out := []*document.Document{}
	filter, ok := SearchFilter(req)
	if !ok {
		return out, nil
	}
	cur, err := m.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Count(ctx context.Context) (int64, error) {
	return m.col.CountDocuments(ctx, bson.D{})
}

func (m *MongoRepo) nextID(ctx context.Context) (string, error) {
	var seq struct {
		Value int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": m.seqKey},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&seq)
	if err != nil {
		return "", fmt.Errorf("next document id: %w", err)
	}
	return strconv.FormatInt(seq.Value, 10), nil
}

// SearchFilter translates req into a Mongo filter with the same semantics as
// SearchRequest.Matches. It returns false when the request can match nothing
// (a present but empty list), since Mongo rejects an empty $or.
func SearchFilter(req document.SearchRequest) (bson.D, bool) {
	if req.IsEmpty() {
		return bson.D{}, true
	}
	var clauses bson.A
	if req.TitlePrefixes != nil {
		if len(req.TitlePrefixes) == 0 {
			return nil, false
		}
		clauses = append(clauses, anyRegex("title", req.TitlePrefixes, "^"))
	}
	if req.ContainsContents != nil {
		if len(req.ContainsContents) == 0 {
			return nil, false
		}
		clauses = append(clauses, anyRegex("content", req.ContainsContents, ""))
	}
	if req.AuthorIDs != nil {
		if len(req.AuthorIDs) == 0 {
			return nil, false
		}
		clauses = append(clauses, bson.M{"author.id": bson.M{"$in": req.AuthorIDs}})
	}
	if req.CreatedFrom != nil {
		clauses = append(clauses, bson.M{"created": bson.M{"$gte": *req.CreatedFrom}})
	}
	if req.CreatedTo != nil {
		clauses = append(clauses, bson.M{"created": bson.M{"$lte": *req.CreatedTo}})
	}
	return bson.D{{Key: "$and", Value: clauses}}, true
}

func anyRegex(field string, values []string, anchor string) bson.M {
	alts := make(bson.A, 0, len(values))
	for _, v := range values {
		alts = append(alts, bson.M{field: primitive.Regex{Pattern: anchor + regexp.QuoteMeta(v)}})
	}
	return bson.M{"$or": alts}
}
