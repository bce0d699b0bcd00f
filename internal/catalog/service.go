// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkowalczyk/grimoire/internal/platform/apperr"
	"github.com/mkowalczyk/grimoire/pkg/slug"
	"github.com/mkowalczyk/grimoire/pkg/srcref"
)

// # Service Layer

// Service orchestrates the business logic of the book catalog.
//
// Every mutation follows the same shape: validate input, normalize page
// sources, enforce cross-record uniqueness, then hand one atomic
// read-modify-write to the repository. Validation always happens before
// any durable mutation, so no call can leave a partial write behind.
type Service struct {
	repo       Repository
	normalizer srcref.Normalizer
	logger     *slog.Logger
}

// NewService constructs a new catalog [Service].
func NewService(repo Repository, normalizer srcref.Normalizer, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		normalizer: normalizer,
		logger:     logger,
	}
}

// # Read Operations

/*
ListPublic returns the catalog for the unauthenticated listing endpoint.

The public boundary treats "no data yet" and "unreadable data" the same:
both yield an empty catalog. Corrupt storage is logged server-side but
never surfaces to anonymous visitors.
*/
func (service *Service) ListPublic(ctx context.Context) []Book {
	books, err := service.repo.ReadAll(ctx)
	if err != nil {
		service.logger.Error("catalog_public_read_failed", slog.Any("error", err))
		return []Book{}
	}
	return books
}

/*
List returns the full catalog for administrative use.

Unlike [Service.ListPublic], corrupt storage surfaces as CORRUPT_STORE so
the administrator can see that something is wrong.
*/
func (service *Service) List(ctx context.Context) ([]Book, error) {
	return service.repo.ReadAll(ctx)
}

/*
GetBook returns the book with the given slug.

Returns:
  - *Book: The matched book
  - error: NOT_FOUND if no book has that slug
*/
func (service *Service) GetBook(ctx context.Context, bookSlug string) (*Book, error) {
	books, err := service.repo.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range books {
		if books[i].Slug == bookSlug {
			return &books[i], nil
		}
	}
	return nil, apperr.NotFound("Book")
}

/*
Export returns the full current catalog verbatim, for client-side download.
*/
func (service *Service) Export(ctx context.Context) ([]Book, error) {
	return service.repo.ReadAll(ctx)
}

// # Book Mutations

/*
CreateBook appends a new book to the catalog.

Description: When the slug is empty it is derived from the display name,
so admins can create books without inventing slugs by hand. Page sources
are normalized before validation.

Returns:
  - error: VALIDATION_ERROR, CONFLICT (duplicate slug), or storage errors
*/
func (service *Service) CreateBook(ctx context.Context, book *Book) error {
	if book.Slug == "" {
		book.Slug = slug.From(book.Name)
	}
	service.normalizePages(book)
	if book.Pages == nil {
		book.Pages = []Page{}
	}

	if err := book.Validate(); err != nil {
		return err
	}
	if err := validatePageIDs(book); err != nil {
		return err
	}

	err := service.repo.Update(ctx, func(books []Book) ([]Book, error) {
		if slugExists(books, book.Slug) {
			return nil, apperr.Conflict(fmt.Sprintf("Book slug %q already exists", book.Slug))
		}
		return append(books, *book), nil
	})
	if err != nil {
		return err
	}

	service.logger.Info("book_created",
		slog.String("slug", book.Slug),
		slog.Int("pages", len(book.Pages)),
	)
	return nil
}

/*
UpdateBook replaces the book addressed by pathSlug with the given record,
including its full page list.

Returns:
  - error: SLUG_MISMATCH when the payload slug differs from the path slug,
    NOT_FOUND when no book has that slug, VALIDATION_ERROR, or storage errors
*/
func (service *Service) UpdateBook(ctx context.Context, pathSlug string, book *Book) error {
	if book.Slug != pathSlug {
		return apperr.SlugMismatch("Payload slug does not match the requested book")
	}

	service.normalizePages(book)
	if book.Pages == nil {
		book.Pages = []Page{}
	}

	if err := book.Validate(); err != nil {
		return err
	}
	if err := validatePageIDs(book); err != nil {
		return err
	}

	err := service.repo.Update(ctx, func(books []Book) ([]Book, error) {
		idx := indexOfSlug(books, pathSlug)
		if idx == -1 {
			return nil, apperr.NotFound("Book")
		}
		books[idx] = *book
		return books, nil
	})
	if err != nil {
		return err
	}

	service.logger.Info("book_updated", slog.String("slug", book.Slug))
	return nil
}

/*
DeleteBook removes a book and, by cascade, all its pages.

Returns:
  - error: NOT_FOUND when no book has that slug, or storage errors
*/
func (service *Service) DeleteBook(ctx context.Context, bookSlug string) error {
	err := service.repo.Update(ctx, func(books []Book) ([]Book, error) {
		idx := indexOfSlug(books, bookSlug)
		if idx == -1 {
			return nil, apperr.NotFound("Book")
		}
		return append(books[:idx], books[idx+1:]...), nil
	})
	if err != nil {
		return err
	}

	service.logger.Info("book_deleted", slog.String("slug", bookSlug))
	return nil
}

// # Page Mutations

/*
UpsertPage inserts or replaces a page, keyed by (book slug, page id).

Description: An unseen id appends the page at the end of the book's
sequence; a seen id replaces the page in place, keeping its position.
The page src is normalized before validation.

Returns:
  - bool: true when the page was created, false when it was updated
  - error: NOT_FOUND when the book is absent, VALIDATION_ERROR, or storage errors
*/
func (service *Service) UpsertPage(ctx context.Context, bookSlug string, page *Page) (bool, error) {
	page.Src = service.normalizer.Normalize(page.Src)

	if err := page.Validate(""); err != nil {
		return false, err
	}

	created := false
	err := service.repo.Update(ctx, func(books []Book) ([]Book, error) {
		idx := indexOfSlug(books, bookSlug)
		if idx == -1 {
			return nil, apperr.NotFound("Book")
		}

		pageIdx := books[idx].PageIndex(page.ID)
		if pageIdx == -1 {
			books[idx].Pages = append(books[idx].Pages, *page)
			created = true
		} else {
			books[idx].Pages[pageIdx] = *page
		}
		return books, nil
	})
	if err != nil {
		return false, err
	}

	service.logger.Info("page_upserted",
		slog.String("slug", bookSlug),
		slog.String("page_id", page.ID),
		slog.Bool("created", created),
	)
	return created, nil
}

/*
DeletePage removes the page with the given id from a book.

Returns:
  - error: NOT_FOUND when the book is absent or the id is not present in it
*/
func (service *Service) DeletePage(ctx context.Context, bookSlug, pageID string) error {
	err := service.repo.Update(ctx, func(books []Book) ([]Book, error) {
		idx := indexOfSlug(books, bookSlug)
		if idx == -1 {
			return nil, apperr.NotFound("Book")
		}

		pageIdx := books[idx].PageIndex(pageID)
		if pageIdx == -1 {
			return nil, apperr.NotFound("Page")
		}

		books[idx].Pages = append(books[idx].Pages[:pageIdx], books[idx].Pages[pageIdx+1:]...)
		return books, nil
	})
	if err != nil {
		return err
	}

	service.logger.Info("page_deleted",
		slog.String("slug", bookSlug),
		slog.String("page_id", pageID),
	)
	return nil
}

// # Bulk Operations

/*
Import replaces the entire catalog unconditionally.

Description: Intended for bulk restore/migration, so it bypasses the
per-book CONFLICT rule. Every record is validated and normalized first,
and the payload itself must not contain duplicate slugs: the uniqueness
invariant holds at all times, even through bulk replacement.

Returns:
  - int: Number of books imported
  - error: VALIDATION_ERROR or storage errors
*/
func (service *Service) Import(ctx context.Context, books []Book) (int, error) {
	if books == nil {
		books = []Book{}
	}

	seen := make(map[string]struct{}, len(books))
	for i := range books {
		service.normalizePages(&books[i])
		if books[i].Pages == nil {
			books[i].Pages = []Page{}
		}
		if err := books[i].Validate(); err != nil {
			return 0, err
		}
		if err := validatePageIDs(&books[i]); err != nil {
			return 0, err
		}
		if _, dup := seen[books[i].Slug]; dup {
			return 0, apperr.ValidationError(fmt.Sprintf("Duplicate slug %q in import payload", books[i].Slug))
		}
		seen[books[i].Slug] = struct{}{}
	}

	err := service.repo.Update(ctx, func([]Book) ([]Book, error) {
		return books, nil
	})
	if err != nil {
		return 0, err
	}

	service.logger.Info("catalog_imported", slog.Int("books", len(books)))
	return len(books), nil
}

/*
NormalizeSources rewrites self-referential absolute URLs across the whole
catalog into host-relative references.

Description: Maintenance operation. In dry-run mode it only counts the
page sources that would change; in committing mode it persists the
rewritten catalog.

Returns:
  - int: Number of page sources changed (or that would change)
  - error: Storage errors
*/
func (service *Service) NormalizeSources(ctx context.Context, dryRun bool) (int, error) {
	changed := 0

	if dryRun {
		books, err := service.repo.ReadAll(ctx)
		if err != nil {
			return 0, err
		}
		for i := range books {
			for j := range books[i].Pages {
				if service.normalizer.WouldChange(books[i].Pages[j].Src) {
					changed++
				}
			}
		}
		return changed, nil
	}

	err := service.repo.Update(ctx, func(books []Book) ([]Book, error) {
		for i := range books {
			for j := range books[i].Pages {
				before := books[i].Pages[j].Src
				after := service.normalizer.Normalize(before)
				if before != after {
					books[i].Pages[j].Src = after
					changed++
				}
			}
		}
		return books, nil
	})
	if err != nil {
		return 0, err
	}

	service.logger.Info("catalog_sources_normalized", slog.Int("changed", changed))
	return changed, nil
}

// # Invariant Helpers

// normalizePages rewrites every page src of a book through the normalizer.
func (service *Service) normalizePages(book *Book) {
	for i := range book.Pages {
		book.Pages[i].Src = service.normalizer.Normalize(book.Pages[i].Src)
	}
}

// validatePageIDs enforces in-book page id uniqueness.
func validatePageIDs(book *Book) error {
	seen := make(map[string]struct{}, len(book.Pages))
	for i := range book.Pages {
		id := book.Pages[i].ID
		if _, dup := seen[id]; dup {
			return apperr.ValidationError(fmt.Sprintf("Duplicate page id %q in book %q", id, book.Slug))
		}
		seen[id] = struct{}{}
	}
	return nil
}

// slugExists reports whether any book in the catalog carries the slug.
func slugExists(books []Book, bookSlug string) bool {
	return indexOfSlug(books, bookSlug) != -1
}

// indexOfSlug returns the position of the book with the slug, or -1.
func indexOfSlug(books []Book, bookSlug string) int {
	for i := range books {
		if books[i].Slug == bookSlug {
			return i
		}
	}
	return -1
}
