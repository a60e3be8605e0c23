package document

import "time"

// Author identifies who wrote a document.
type Author struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

// Document is the stored record. An empty ID means the document has not been
// saved yet; a nil Author and a zero Created are both treated as unset.
type Document struct {
	ID      string    `json:"id,omitempty" bson:"_id,omitempty"`
	Title   string    `json:"title" bson:"title"`
	Content string    `json:"content" bson:"content"`
	Author  *Author   `json:"author,omitempty" bson:"author,omitempty"`
	Created time.Time `json:"created" bson:"created,omitempty"`
}

// SearchRequest describes a search. A nil field places no constraint on its
// dimension; a non-nil empty slice matches nothing.
type SearchRequest struct {
	TitlePrefixes    []string   `json:"titlePrefixes,omitempty"`
	ContainsContents []string   `json:"containsContents,omitempty"`
	AuthorIDs        []string   `json:"authorIds,omitempty"`
	CreatedFrom      *time.Time `json:"createdFrom,omitempty"`
	CreatedTo        *time.Time `json:"createdTo,omitempty"`
}

// Clone returns an independent copy of a.
func (a *Author) Clone() *Author {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Clone returns a copy of d that shares no memory with it.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := *d
	c.Author = d.Author.Clone()
	return &c
}

// AuthorID returns the id of the document's author, or false when the
// document has none.
func (d *Document) AuthorID() (string, bool) {
	if d.Author == nil {
		return "", false
	}
	return d.Author.ID, true
}
