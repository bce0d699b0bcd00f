// Copyright (c) 2026 Grimoire. All rights reserved.
// Author: m.kowalczyk.dev@gmail.com

package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkowalczyk/grimoire/internal/platform/apperr"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "books.json"))
	require.NoError(t, err)
	return store
}

/*
TestReadAll_MissingFile checks that an absent data file means an empty
catalog, not an error.
*/
func TestReadAll_MissingFile(t *testing.T) {
	store := newTestStore(t)

	books, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
}

/*
TestWriteReadRoundTrip checks that a written catalog reads back unchanged,
including page order.
*/
func TestWriteReadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := []Book{*testBook(), {Slug: "empty-book", Name: "Empty Book", Pages: []Page{}}}
	require.NoError(t, store.WriteAll(ctx, in))

	out, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// Writing the read-back catalog again must be a no-op in content terms.
	require.NoError(t, store.WriteAll(ctx, out))
	again, err := store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

/*
TestReadAll_CorruptFile checks that malformed JSON and schema-invalid
records both surface as CORRUPT_STORE.
*/
func TestReadAll_CorruptFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed_json", `{"this is": not json`},
		{"wrong_shape", `{"books": "nope"}`},
		{"invalid_record", `[{"slug": "Bad Slug!", "name": "X", "pages": []}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "books.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			store, err := NewFileStore(path)
			require.NoError(t, err)

			_, err = store.ReadAll(context.Background())
			require.Error(t, err)
			assert.True(t, apperr.IsCode(err, "CORRUPT_STORE"))
		})
	}
}

/*
TestWriteAll_RejectsInvalid checks that schema validation runs before any
bytes touch disk, leaving the previous document intact.
*/
func TestWriteAll_RejectsInvalid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.WriteAll(ctx, []Book{*testBook()}))

	bad := []Book{{Slug: "", Name: "No Slug"}}
	require.Error(t, store.WriteAll(ctx, bad))

	// Previous state survives the rejected write.
	books, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "necronomicon", books[0].Slug)
}

/*
TestUpdate checks the read-modify-write cycle, including that a failing
mutation leaves storage untouched.
*/
func TestUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, func(books []Book) ([]Book, error) {
		return append(books, *testBook()), nil
	}))

	books, err := store.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)

	require.Error(t, store.Update(ctx, func(books []Book) ([]Book, error) {
		return nil, apperr.Conflict("no")
	}))

	books, err = store.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

/*
TestPing checks the readiness probe surface of the store.
*/
func TestPing(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))

	path := filepath.Join(t.TempDir(), "books.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	broken, err := NewFileStore(path)
	require.NoError(t, err)
	assert.Error(t, broken.Ping(context.Background()))
}
