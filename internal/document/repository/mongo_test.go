package repository

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/gogotex/docstore/internal/database"
	"github.com/gogotex/docstore/internal/document"
	"github.com/gogotex/docstore/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestSearchFilter_Empty(t *testing.T) {
	f, ok := SearchFilter(document.SearchRequest{})
	require.True(t, ok)
	assert.Equal(t, bson.D{}, f)
}

func TestSearchFilter_SingleBound(t *testing.T) {
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f, ok := SearchFilter(document.SearchRequest{CreatedTo: &to})
	require.True(t, ok)
	want := bson.D{{Key: "$and", Value: bson.A{bson.M{"created": bson.M{"$lte": to}}}}}
	assert.Equal(t, want, f)
}

func TestSearchFilter_EmptyListMatchesNothing(t *testing.T) {
	for _, req := range []document.SearchRequest{
		{TitlePrefixes: []string{}},
		{ContainsContents: []string{}},
		{AuthorIDs: []string{}},
	} {
		_, ok := SearchFilter(req)
		assert.False(t, ok)
	}
}

func TestSearchFilter_AllDimensions(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(time.Hour)
	f, ok := SearchFilter(document.SearchRequest{
		TitlePrefixes:    []string{"a.b"},
		ContainsContents: []string{"x(y"},
		AuthorIDs:        []string{"a1", "a2"},
		CreatedFrom:      &from,
		CreatedTo:        &to,
	})
	require.True(t, ok)
	require.Len(t, f, 1)
	assert.Equal(t, "$and", f[0].Key)

	clauses, ok := f[0].Value.(bson.A)
	require.True(t, ok)
	require.Len(t, clauses, 5)
	assert.Equal(t, bson.M{"$or": bson.A{bson.M{"title": primitive.Regex{Pattern: `^a\.b`}}}}, clauses[0])
	assert.Equal(t, bson.M{"$or": bson.A{bson.M{"content": primitive.Regex{Pattern: `x\(y`}}}}, clauses[1])
	assert.Equal(t, bson.M{"author.id": bson.M{"$in": []string{"a1", "a2"}}}, clauses[2])
	assert.Equal(t, bson.M{"created": bson.M{"$gte": from}}, clauses[3])
	assert.Equal(t, bson.M{"created": bson.M{"$lte": to}}, clauses[4])
}

func TestNewMongoRepo_UnreachableServerDoesNotHang(t *testing.T) {
	old := indexTimeout
	indexTimeout = 200 * time.Millisecond
	t.Cleanup(func() { indexTimeout = old })

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	// nothing listens on port 1; Connect is lazy and does not fail here
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(context.Background()) }()

	start := time.Now()
	repo := NewMongoRepo(client.Database("docstore_test").Collection("documents"))
	require.NotNil(t, repo)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Contains(t, buf.String(), "create title index on documents")
}

// Runs only against a live server: MONGODB_URI=mongodb://localhost:27017 go test ./...
func TestMongoRepo(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, uri, 5*time.Second)
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(ctx) }()

	db := client.Database(fmt.Sprintf("docstore_test_%d", time.Now().UnixNano()))
	defer func() { _ = db.Drop(ctx) }()

	runRepositorySuite(t, NewMongoRepo(db.Collection("documents")))
}
