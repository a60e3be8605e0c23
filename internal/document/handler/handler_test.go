package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docstore/internal/document"
	"github.com/gogotex/docstore/internal/document/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	g := gin.New()
	RegisterDocumentRoutes(g, service.NewMemoryService())
	return g
}

func do(g *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	g.ServeHTTP(w, req)
	return w
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()
	var docs []document.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	sort.Strings(out)
	return out
}

func TestDocumentHandler_SaveAndGet(t *testing.T) {
	g := newRouter()

	// create
	w := do(g, http.MethodPost, "/api/documents", `{"title":"Hello World","content":"hi","author":{"id":"a1","name":"Ann"},"created":"2024-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created document.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "1", created.ID)
	require.Equal(t, "2024-01-01T00:00:00Z", created.Created.Format("2006-01-02T15:04:05Z07:00"))

	// get
	w = do(g, http.MethodGet, "/api/documents/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got document.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Hello World", got.Title)
	assert.Equal(t, "Ann", got.Author.Name)

	// upsert via PUT replaces the document
	w = do(g, http.MethodPut, "/api/documents/1", `{"title":"Replaced"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(g, http.MethodGet, "/api/documents/1", "")
	var replaced document.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &replaced))
	assert.Equal(t, "Replaced", replaced.Title)
	assert.Nil(t, replaced.Author)

	// POST with an explicit id is an upsert, not a create
	w = do(g, http.MethodPost, "/api/documents", `{"id":"custom","title":"mine"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// missing
	w = do(g, http.MethodGet, "/api/documents/nonexistent", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// malformed body
	w = do(g, http.MethodPost, "/api/documents", `{"title":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_Search(t *testing.T) {
	g := newRouter()
	require.Equal(t, http.StatusCreated, do(g, http.MethodPost, "/api/documents",
		`{"title":"Hello World","content":"the quick brown fox","author":{"id":"a1"},"created":"2024-01-01T00:00:00Z"}`).Code)
	require.Equal(t, http.StatusCreated, do(g, http.MethodPost, "/api/documents",
		`{"title":"Goodbye","content":"lazy dog","author":{"id":"a2"},"created":"2024-01-02T00:00:00Z"}`).Code)

	w := do(g, http.MethodPost, "/api/documents/search", `{"titlePrefixes":["Hello"],"createdFrom":"2024-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"1"}, decodeList(t, w))

	w = do(g, http.MethodPost, "/api/documents/search", `{"authorIds":["a1","a2"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"1", "2"}, decodeList(t, w))

	w = do(g, http.MethodPost, "/api/documents/search", `{}`)
	assert.Equal(t, []string{"1", "2"}, decodeList(t, w))

	// an explicitly empty list matches nothing
	w = do(g, http.MethodPost, "/api/documents/search", `{"containsContents":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(g, http.MethodPost, "/api/documents/search", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_QuerySearch(t *testing.T) {
	g := newRouter()
	do(g, http.MethodPost, "/api/documents", `{"title":"Hello World","content":"the quick brown fox","author":{"id":"a1"},"created":"2024-01-01T00:00:00Z"}`)
	do(g, http.MethodPost, "/api/documents", `{"title":"Goodbye","content":"lazy dog","author":{"id":"a2"},"created":"2024-01-02T00:00:00Z"}`)

	w := do(g, http.MethodGet, "/api/documents", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"1", "2"}, decodeList(t, w))

	q := url.Values{}
	q.Add("contains", "quick")
	q.Add("contains", "zzz")
	w = do(g, http.MethodGet, "/api/documents?"+q.Encode(), "")
	assert.Equal(t, []string{"1"}, decodeList(t, w))

	q = url.Values{}
	q.Set("createdTo", "2024-01-01T00:00:00Z")
	q.Add("authorId", "a1")
	q.Add("authorId", "a2")
	w = do(g, http.MethodGet, "/api/documents?"+q.Encode(), "")
	assert.Equal(t, []string{"1"}, decodeList(t, w))

	q = url.Values{}
	q.Set("titlePrefix", "Good")
	q.Set("createdFrom", "2024-01-02T00:00:00Z")
	w = do(g, http.MethodGet, "/api/documents?"+q.Encode(), "")
	assert.Equal(t, []string{"2"}, decodeList(t, w))

	w = do(g, http.MethodGet, "/api/documents?createdFrom=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
