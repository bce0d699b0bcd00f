// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

package catalog

import "context"

// # Catalog Data Access

// Repository defines the data access contract for the book catalog.
//
// There is deliberately no row-level primitive: every mutation is
// expressed as "read full catalog, compute new full catalog, write full
// catalog", which makes each call trivially atomic as long as the
// underlying write is a durable swap.
type Repository interface {

	/*
		ReadAll loads, parses, and schema-validates the full catalog.

		Returns:
		  - []Book: The full catalog; empty (not an error) when no storage exists yet
		  - error: CORRUPT_STORE on unreadable or malformed content
	*/
	ReadAll(ctx context.Context) ([]Book, error)

	/*
		WriteAll schema-validates every record, then atomically replaces the
		durable catalog content.

		Field-level schema only: cross-record slug/id uniqueness is the
		service layer's responsibility and is NOT checked here.

		Returns:
		  - error: VALIDATION_ERROR on schema violation, storage failures otherwise
	*/
	WriteAll(ctx context.Context, books []Book) error

	/*
		Update runs a read-modify-write cycle as one critical section.

		The mutator receives the current catalog and returns the replacement.
		Returning an error from the mutator aborts the cycle without writing.
		Concurrent Update calls serialize; concurrent ReadAll calls never
		block longer than one file read.
	*/
	Update(ctx context.Context, mutate func(books []Book) ([]Book, error)) error
}
