package document

import (
	"slices"
	"strings"
)

// Matches reports whether d satisfies every dimension of the request.
// Within a dimension any listed alternative is enough.
func (r SearchRequest) Matches(d *Document) bool {
	if d == nil {
		return false
	}
	return r.matchesTitle(d) &&
		r.matchesContent(d) &&
		r.matchesAuthor(d) &&
		r.matchesCreatedFrom(d) &&
		r.matchesCreatedTo(d)
}

// IsEmpty reports whether the request constrains nothing.
func (r SearchRequest) IsEmpty() bool {
	return r.TitlePrefixes == nil &&
		r.ContainsContents == nil &&
		r.AuthorIDs == nil &&
		r.CreatedFrom == nil &&
		r.CreatedTo == nil
}

func (r SearchRequest) matchesTitle(d *Document) bool {
	if r.TitlePrefixes == nil {
		return true
	}
	return slices.ContainsFunc(r.TitlePrefixes, func(p string) bool {
		return strings.HasPrefix(d.Title, p)
	})
}

func (r SearchRequest) matchesContent(d *Document) bool {
	if r.ContainsContents == nil {
		return true
	}
	return slices.ContainsFunc(r.ContainsContents, func(s string) bool {
		return strings.Contains(d.Content, s)
	})
}

// a document without an author never matches an author filter
func (r SearchRequest) matchesAuthor(d *Document) bool {
	if r.AuthorIDs == nil {
		return true
	}
	id, ok := d.AuthorID()
	return ok && slices.Contains(r.AuthorIDs, id)
}

func (r SearchRequest) matchesCreatedFrom(d *Document) bool {
	if r.CreatedFrom == nil {
		return true
	}
	return !d.Created.IsZero() && !d.Created.Before(*r.CreatedFrom)
}

func (r SearchRequest) matchesCreatedTo(d *Document) bool {
	if r.CreatedTo == nil {
		return true
	}
	return !d.Created.IsZero() && !d.Created.After(*r.CreatedTo)
}
