package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docstore/internal/document"
	"github.com/gogotex/docstore/internal/document/service"
)

func RegisterDocumentRoutes(r gin.IRouter, svc service.Service) {
	h := &documentHandler{svc: svc}
	g := r.Group("/api/documents")
	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/search", h.search)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.put)
}

type documentHandler struct {
	svc service.Service
}

// create saves the body. A body without id gets one assigned (201); a body
// carrying an id is upserted (200).
func (h *documentHandler) create(c *gin.Context) {
	var d document.Document
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if d.ID == "" {
		status = http.StatusCreated
	}
	saved, err := h.svc.Save(c.Request.Context(), &d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, saved)
}

func (h *documentHandler) put(c *gin.Context) {
	var d document.Document
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d.ID = c.Param("id")
	saved, err := h.svc.Save(c.Request.Context(), &d)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *documentHandler) get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *documentHandler) search(c *gin.Context) {
	var req document.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runSearch(c, req)
}

// list is the query-string form of search:
// ?titlePrefix=a&titlePrefix=b&contains=x&authorId=1&createdFrom=<RFC3339>&createdTo=<RFC3339>
func (h *documentHandler) list(c *gin.Context) {
	req, err := searchFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runSearch(c, req)
}

func (h *documentHandler) runSearch(c *gin.Context, req document.SearchRequest) {
	docs, err := h.svc.Search(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func searchFromQuery(c *gin.Context) (document.SearchRequest, error) {
	var req document.SearchRequest
	if v, ok := c.GetQueryArray("titlePrefix"); ok {
		req.TitlePrefixes = v
	}
	if v, ok := c.GetQueryArray("contains"); ok {
		req.ContainsContents = v
	}
	if v, ok := c.GetQueryArray("authorId"); ok {
		req.AuthorIDs = v
	}
	var err error
	if req.CreatedFrom, err = queryTime(c, "createdFrom"); err != nil {
		return req, err
	}
	if req.CreatedTo, err = queryTime(c, "createdTo"); err != nil {
		return req, err
	}
	return req, nil
}

func queryTime(c *gin.Context, key string) (*time.Time, error) {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil, errors.New(key + ": expected an RFC3339 timestamp")
	}
	return &t, nil
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrInvalidDocument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
