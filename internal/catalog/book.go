// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

/*
Package catalog implements the persistent book catalog and its
administrative operations.

It owns the durable list of books and pages, enforces schema and
uniqueness invariants, and exposes both the public read-only listing and
the authenticated mutation API.

Architecture:

  - book.go: Domain entities (Book, Page) with field-level schema validation.
  - store.go / store_file.go: Durable storage contract and the JSON-document store.
  - service.go: Business operations (CRUD, import/export, normalization).
  - http.go: Transport layer (public + admin routes).
*/
package catalog

import (
	"fmt"

	"github.com/mkowalczyk/grimoire/internal/platform/validate"
)

// # Content Kinds

// Page content kinds. The kind tells the presentation layer how to render
// an unlocked page; it never affects storage or access control.
const (
	KindHTML  = "html"
	KindCSV   = "csv"
	KindXLSX  = "xlsx"
	KindImage = "image"
	KindPDF   = "pdf"
)

// Kinds lists every valid page content kind.
var Kinds = []string{KindHTML, KindCSV, KindXLSX, KindImage, KindPDF}

// # Field Identifiers

const (
	FieldSlug     = "slug"
	FieldName     = "name"
	FieldPageID   = "id"
	FieldTitle    = "title"
	FieldSrc      = "src"
	FieldKind     = "kind"
	FieldPassword = "password"
)

// # Entities

// Page is one password-gated content unit within a book.
//
// The password is a plain-text shared secret: it gates content
// visibility, it is not an account credential.
type Page struct {
	// ID is unique within the owning book and stable across edits; it is
	// used for navigation routes and unlock tracking.
	ID    string `json:"id"`
	Title string `json:"title"`

	// Src is either a host-relative path (leading "/") or an absolute URL.
	Src string `json:"src"`

	// Kind is one of [Kinds]; empty means html (see [Page.RenderKind]).
	Kind string `json:"kind,omitempty"`

	Password string `json:"password"`
}

// RenderKind returns the effective content kind, defaulting to html.
func (p *Page) RenderKind() string {
	if p.Kind == "" {
		return KindHTML
	}
	return p.Kind
}

// Validate performs field-level schema checks on the page.
//
// The prefix is prepended to field names so book-level validation can
// report "pages[2].src" rather than a bare "src".
func (p *Page) Validate(prefix string) error {
	v := &validate.Validator{}
	v.Required(prefix+FieldPageID, p.ID)
	v.Required(prefix+FieldSrc, p.Src)
	v.SourceRef(prefix+FieldSrc, p.Src)
	v.Required(prefix+FieldPassword, p.Password)
	if p.Kind != "" {
		v.OneOf(prefix+FieldKind, p.Kind, Kinds...)
	}
	return v.Err()
}

// Book is a named, slug-addressed, ordered collection of pages.
//
// Page order is significant: it defines the next/previous adjacency used
// for navigation and is never implicitly reordered.
type Book struct {
	// Slug is the globally unique, URL-safe external key.
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Pages []Page `json:"pages"`
}

// Validate performs field-level schema checks on the book and all its pages.
//
// Cross-record invariants (catalog-wide slug uniqueness, in-book page id
// uniqueness) are the service layer's responsibility.
func (b *Book) Validate() error {
	v := &validate.Validator{}
	v.Required(FieldSlug, b.Slug)
	v.Slug(FieldSlug, b.Slug)
	v.Required(FieldName, b.Name)
	if err := v.Err(); err != nil {
		return err
	}

	for i := range b.Pages {
		prefix := pagePrefix(i)
		if err := b.Pages[i].Validate(prefix); err != nil {
			return err
		}
	}
	return nil
}

// # Navigation Helpers

// FindPage returns the page with the given id, or nil if absent.
func (b *Book) FindPage(id string) *Page {
	for i := range b.Pages {
		if b.Pages[i].ID == id {
			return &b.Pages[i]
		}
	}
	return nil
}

// PageIndex returns the position of the page with the given id, or -1.
func (b *Book) PageIndex(id string) int {
	for i := range b.Pages {
		if b.Pages[i].ID == id {
			return i
		}
	}
	return -1
}

// Page resolves a page for display: the page with the given id, or the
// book's first page when the id is empty or unknown. Returns nil only for
// a book with no pages.
func (b *Book) Page(id string) *Page {
	if id != "" {
		if page := b.FindPage(id); page != nil {
			return page
		}
	}
	if len(b.Pages) == 0 {
		return nil
	}
	return &b.Pages[0]
}

// NextPage returns the page after the given id in display order, or nil
// when the id is unknown or already last.
func (b *Book) NextPage(id string) *Page {
	idx := b.PageIndex(id)
	if idx >= 0 && idx+1 < len(b.Pages) {
		return &b.Pages[idx+1]
	}
	return nil
}

// PrevPage returns the page before the given id in display order, or nil
// when the id is unknown or already first.
func (b *Book) PrevPage(id string) *Page {
	idx := b.PageIndex(id)
	if idx > 0 {
		return &b.Pages[idx-1]
	}
	return nil
}

// pagePrefix formats the field prefix for the i-th page of a book.
func pagePrefix(i int) string {
	return fmt.Sprintf("pages[%d].", i)
}
