// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/mkowalczyk/grimoire/internal/platform/request"
	"github.com/mkowalczyk/grimoire/internal/platform/respond"
	"github.com/mkowalczyk/grimoire/internal/platform/validate"
)

// # Handler Implementation

// Handler implements the HTTP layer for the book catalog.
//
// # Routing Strategy
//
//   - Public: the read-only catalog listing, no authentication.
//   - Admin: every mutation plus the verbatim admin listing, mounted behind
//     the auth gate by the server composition root.
type Handler struct {
	service *Service
}

// NewHandler constructs a new catalog [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes attaches the unauthenticated catalog endpoints.
func (handler *Handler) RegisterPublicRoutes(api chi.Router) {
	api.Get("/books", handler.ListPublic)
}

// RegisterAdminRoutes attaches the catalog mutation endpoints. The passed
// router must already enforce authentication.
func (handler *Handler) RegisterAdminRoutes(admin chi.Router) {
	admin.Get("/books", handler.List)
	admin.Post("/books", handler.CreateBook)
	admin.Put("/books/{slug}", handler.UpdateBook)
	admin.Delete("/books/{slug}", handler.DeleteBook)
	admin.Post("/books/{slug}/pages", handler.UpsertPage)
	admin.Delete("/books/{slug}/pages/{id}", handler.DeletePage)
	admin.Post("/import", handler.Import)
	admin.Get("/export", handler.Export)
	admin.Post("/normalize-src", handler.NormalizeSources)
}

// # Public Listing

/*
GET /api/books.

Description: Returns the full catalog for visitors. Never fails: absent or
unreadable storage yields an empty catalog (logged server-side).

Response:
  - 200: []Book
*/
func (handler *Handler) ListPublic(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, handler.service.ListPublic(request.Context()))
}

// # Admin Listing

/*
GET /api/admin/books.

Response:
  - 200: []Book
  - 500: CORRUPT_STORE: Storage unreadable
*/
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	books, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, books)
}

// # Book Mutations

/*
POST /api/admin/books.

Description: Creates a new book. An empty slug is derived from the name.

Request:
  - body: Book

Response:
  - 201: Book: Created record
  - 400: VALIDATION_ERROR: Invalid payload
  - 409: CONFLICT: Slug already exists
*/
func (handler *Handler) CreateBook(writer http.ResponseWriter, request *http.Request) {
	var book Book
	if err := requestutil.DecodeJSON(request, &book); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.CreateBook(request.Context(), &book); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, book)
}

/*
PUT /api/admin/books/{slug}.

Description: Replaces the addressed book, including its full page list.

Request:
  - slug: string (path)
  - body: Book (body.slug must equal the path slug)

Response:
  - 200: Book: Updated record
  - 400: VALIDATION_ERROR / SLUG_MISMATCH
  - 404: NOT_FOUND: Unknown slug
*/
func (handler *Handler) UpdateBook(writer http.ResponseWriter, request *http.Request) {
	pathSlug := requestutil.Param(request, "slug")

	var book Book
	if err := requestutil.DecodeJSON(request, &book); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.UpdateBook(request.Context(), pathSlug, &book); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

/*
DELETE /api/admin/books/{slug}.

Response:
  - 204: Removed (cascades to all pages)
  - 404: NOT_FOUND: Unknown slug
*/
func (handler *Handler) DeleteBook(writer http.ResponseWriter, request *http.Request) {
	pathSlug := requestutil.Param(request, "slug")

	if err := handler.service.DeleteBook(request.Context(), pathSlug); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Page Mutations

/*
POST /api/admin/books/{slug}/pages.

Description: Upserts a page keyed by (book slug, page id). Insertion
appends at the end of the sequence; replacement keeps the position.

Request:
  - slug: string (path)
  - body: Page

Response:
  - 201: Page: Created (id was unseen)
  - 200: Page: Updated in place
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND: Unknown book
*/
func (handler *Handler) UpsertPage(writer http.ResponseWriter, request *http.Request) {
	pathSlug := requestutil.Param(request, "slug")

	var page Page
	if err := requestutil.DecodeJSON(request, &page); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.UpsertPage(request.Context(), pathSlug, &page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if created {
		respond.Created(writer, page)
		return
	}
	respond.OK(writer, page)
}

/*
DELETE /api/admin/books/{slug}/pages/{id}.

Response:
  - 204: Removed
  - 404: NOT_FOUND: Unknown book or page id
*/
func (handler *Handler) DeletePage(writer http.ResponseWriter, request *http.Request) {
	pathSlug := requestutil.Param(request, "slug")
	pageID := requestutil.Param(request, "id")

	if err := handler.service.DeletePage(request.Context(), pathSlug, pageID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Bulk Operations

// importResponse reports the outcome of a catalog import.
type importResponse struct {
	Count int `json:"count"`
}

/*
POST /api/admin/import.

Description: Replaces the entire catalog. Accepts either a bare array of
books or an object of the form {"books": [...]}.

Response:
  - 200: importResponse: Number of books imported
  - 400: VALIDATION_ERROR: Malformed payload or duplicate slugs
*/
func (handler *Handler) Import(writer http.ResponseWriter, request *http.Request) {
	var raw json.RawMessage
	if err := requestutil.DecodeJSON(request, &raw); err != nil {
		respond.Error(writer, request, err)
		return
	}

	books, err := decodeImportPayload(raw)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	count, err := handler.service.Import(request.Context(), books)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, importResponse{Count: count})
}

/*
GET /api/admin/export.

Description: Returns the full catalog verbatim as a downloadable document.
The payload is a bare book array (no envelope) so it can be fed back to
the import endpoint unchanged.

Response:
  - 200: []Book
  - 500: CORRUPT_STORE: Storage unreadable
*/
func (handler *Handler) Export(writer http.ResponseWriter, request *http.Request) {
	books, err := handler.service.Export(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Content-Disposition", `attachment; filename="books.json"`)
	respond.JSON(writer, http.StatusOK, books)
}

// # Maintenance

// normalizeRequest selects between dry-run and committing normalization.
type normalizeRequest struct {
	DryRun bool `json:"dryRun"`
}

// normalizeResponse reports how many page sources changed (or would).
type normalizeResponse struct {
	DryRun  bool `json:"dryRun"`
	Changed int  `json:"changed"`
}

/*
POST /api/admin/normalize-src.

Description: Rewrites self-referential absolute URLs catalog-wide. With
dryRun=true only the count is reported and nothing is persisted.

Request:
  - body: normalizeRequest

Response:
  - 200: normalizeResponse
*/
func (handler *Handler) NormalizeSources(writer http.ResponseWriter, request *http.Request) {
	var input normalizeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	changed, err := handler.service.NormalizeSources(request.Context(), input.DryRun)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, normalizeResponse{DryRun: input.DryRun, Changed: changed})
}

// decodeImportPayload accepts both supported import forms.
func decodeImportPayload(raw json.RawMessage) ([]Book, error) {
	var books []Book
	if err := json.Unmarshal(raw, &books); err == nil && books != nil {
		return books, nil
	}

	var wrapped struct {
		Books []Book `json:"books"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Books != nil {
		return wrapped.Books, nil
	}

	return nil, validate.RequiredError("books", "Expected an array of books or {\"books\": [...]}")
}
